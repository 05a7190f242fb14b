package notification

import (
	"context"
	"reflect"
	"testing"

	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/mempubsub"

	"github.com/ossf/passive-analysis/pkg/api/finding"
	"github.com/ossf/passive-analysis/pkg/api/notification"
)

func TestPublishScanCompletion(t *testing.T) {
	ctx := context.Background()
	topic, err := pubsub.OpenTopic(ctx, "mem://completion")
	if err != nil {
		t.Fatalf("OpenTopic() = %v", err)
	}
	defer topic.Shutdown(ctx)
	sub, err := pubsub.OpenSubscription(ctx, "mem://completion")
	if err != nil {
		t.Fatalf("OpenSubscription() = %v", err)
	}
	defer sub.Shutdown(ctx)

	r := finding.CreateRecord("https://example.com/", []finding.Finding{
		finding.New(finding.ViewStateDisclosure, "a", ""),
		finding.New(finding.ViewStateWithoutMAC, "a", ""),
		finding.New(finding.ViewStateDisclosure, "b", ""),
	})
	if err := PublishScanCompletion(ctx, topic, r, "results/1.json"); err != nil {
		t.Fatalf("PublishScanCompletion() = %v", err)
	}

	msg, err := sub.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() = %v", err)
	}
	msg.Ack()

	got, err := notification.ParseJSON(msg.Body)
	if err != nil {
		t.Fatalf("ParseJSON() = %v", err)
	}
	want := notification.ScanComplete{
		URL:       "https://example.com/",
		ResultKey: "results/1.json",
		Findings:  3,
		Kinds:     []finding.Kind{finding.ViewStateDisclosure, finding.ViewStateWithoutMAC},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("notification = %+v, want %+v", got, want)
	}
	if msg.Metadata["url"] != r.URL {
		t.Errorf("metadata url = %q, want %q", msg.Metadata["url"], r.URL)
	}
}

func TestParseJSONInvalid(t *testing.T) {
	if _, err := notification.ParseJSON([]byte("{")); err == nil {
		t.Error("ParseJSON() error = nil, want error")
	}
}
