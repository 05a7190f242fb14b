package pubsubextender

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	api "cloud.google.com/go/pubsub/apiv1"
	pb "cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/gcppubsub"
)

const (
	gcpMinAckDeadline = 10 * time.Second
	gcpMaxAckDeadline = 600 * time.Second
)

var subscriptionPathRE = regexp.MustCompile("^projects/.+/subscriptions/.+$")

type gcpDriver struct {
	client *api.SubscriberClient
	path   string
}

// subscriptionPath returns the full resource name of the subscription in u.
// Both gcppubsub://projects/<p>/subscriptions/<s> and gcppubsub://<p>/<s>
// are accepted.
func subscriptionPath(u *url.URL) string {
	p := path.Join(u.Host, u.Path)
	if subscriptionPathRE.MatchString(p) {
		return p
	}
	return fmt.Sprintf("projects/%s/subscriptions/%s", u.Host, strings.TrimPrefix(u.Path, "/"))
}

// clampDeadline limits d to the range of ack deadlines GCP accepts.
func clampDeadline(d time.Duration) time.Duration {
	return min(max(d, gcpMinAckDeadline), gcpMaxAckDeadline)
}

func newGCPDriver(u *url.URL, sub *pubsub.Subscription) (driver, error) {
	if u.Scheme != gcppubsub.Scheme {
		return nil, errors.New("unsupported scheme")
	}

	var c *api.SubscriberClient
	if !sub.As(&c) {
		return nil, errors.New("not a GCP subscription")
	}
	return &gcpDriver{client: c, path: subscriptionPath(u)}, nil
}

// ExtendMessageDeadline implements the driver interface.
func (d *gcpDriver) ExtendMessageDeadline(ctx context.Context, msg *pubsub.Message, deadline time.Duration) error {
	var rm *pb.ReceivedMessage
	if !msg.As(&rm) {
		return errors.New("not a gcp message")
	}

	if err := d.client.ModifyAckDeadline(ctx, &pb.ModifyAckDeadlineRequest{
		Subscription:       d.path,
		AckIds:             []string{rm.AckId},
		AckDeadlineSeconds: int32(clampDeadline(deadline) / time.Second),
	}); err != nil {
		return fmt.Errorf("failed to extend message deadline: %w", err)
	}
	return nil
}

// GetSubscriptionDeadline implements the driver interface.
func (d *gcpDriver) GetSubscriptionDeadline(ctx context.Context) (time.Duration, error) {
	resp, err := d.client.GetSubscription(ctx, &pb.GetSubscriptionRequest{Subscription: d.path})
	if err != nil {
		return 0, err
	}
	return time.Duration(resp.GetAckDeadlineSeconds()) * time.Second, nil
}
