package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"gocloud.dev/pubsub"

	"github.com/ossf/passive-analysis/internal/utils"
	"github.com/ossf/passive-analysis/pkg/api/finding"
	"github.com/ossf/passive-analysis/pkg/api/notification"
)

// PublishScanCompletion sends a ScanComplete message for r to topic. key is
// where r was saved, and may be empty if it was not saved.
func PublishScanCompletion(ctx context.Context, topic *pubsub.Topic, r *finding.Record, key string) error {
	kinds := utils.RemoveDuplicates(utils.Transform(r.Findings, func(f finding.Finding) finding.Kind { return f.Kind }))
	msg, err := json.Marshal(notification.ScanComplete{
		URL:       r.URL,
		ResultKey: key,
		Findings:  len(r.Findings),
		Kinds:     kinds,
	})
	if err != nil {
		return fmt.Errorf("failed to encode completion notification: %w", err)
	}
	err = topic.Send(ctx, &pubsub.Message{
		Body:     msg,
		Metadata: map[string]string{"url": r.URL},
	})
	if err != nil {
		return fmt.Errorf("failed to send completion notification: %w", err)
	}
	return nil
}
