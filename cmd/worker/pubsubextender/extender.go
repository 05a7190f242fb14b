// Package pubsubextender extends the acknowledgement deadline of pubsub
// messages so they are not redelivered while a slow scan is in progress.
package pubsubextender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/gcppubsub"

	"github.com/ossf/passive-analysis/internal/featureflags"
	"github.com/ossf/passive-analysis/internal/metrics"
)

const (
	defaultGracePeriod = 60 * time.Second
	defaultDeadline    = 300 * time.Second
)

var ErrInvalidGracePeriod = errors.New("invalid grace period")

type driver interface {
	// ExtendMessageDeadline asks the pubsub service to move the deadline of
	// msg to deadline from now.
	ExtendMessageDeadline(ctx context.Context, msg *pubsub.Message, deadline time.Duration) error

	// GetSubscriptionDeadline returns the deadline configured on the
	// subscription, or 0 if it is unknown.
	GetSubscriptionDeadline(ctx context.Context) (time.Duration, error)
}

// noopDriver is used for every pubsub service that cannot extend deadlines.
type noopDriver struct{}

func (noopDriver) ExtendMessageDeadline(context.Context, *pubsub.Message, time.Duration) error {
	return nil
}

func (noopDriver) GetSubscriptionDeadline(context.Context) (time.Duration, error) {
	return 0, nil
}

type Extender struct {
	driver      driver
	Deadline    time.Duration
	GracePeriod time.Duration
}

func getDriver(u *url.URL, sub *pubsub.Subscription) (driver, error) {
	if !featureflags.PubSubExtender.Enabled() || u.Scheme != gcppubsub.Scheme {
		return noopDriver{}, nil
	}
	return newGCPDriver(u, sub)
}

// New returns an Extender for the subscription sub, which was opened from
// subURL. Deadlines are extended by the deadline configured on the
// subscription, or defaultDeadline if it has none.
func New(ctx context.Context, subURL string, sub *pubsub.Subscription) (*Extender, error) {
	u, err := url.Parse(subURL)
	if err != nil {
		return nil, err
	}

	d, err := getDriver(u, sub)
	if err != nil {
		return nil, err
	}

	deadline, err := d.GetSubscriptionDeadline(ctx)
	if err != nil {
		return nil, err
	}
	if deadline == 0 {
		deadline = defaultDeadline
	}

	return &Extender{
		driver:      d,
		Deadline:    deadline,
		GracePeriod: defaultGracePeriod,
	}, nil
}

// Lease keeps a single message alive until it is released.
type Lease struct {
	cancel     context.CancelFunc
	exited     chan struct{}
	err        error
	extensions atomic.Int64
	release    sync.Once
}

// Extend starts extending the deadline of msg every Deadline-GracePeriod,
// until the returned Lease is released or the first extension fails.
func (e *Extender) Extend(ctx context.Context, msg *pubsub.Message) (*Lease, error) {
	freq := e.Deadline - e.GracePeriod
	if freq <= 0 {
		return nil, fmt.Errorf("%w: deadline %v is not larger than grace period %v", ErrInvalidGracePeriod, e.Deadline, e.GracePeriod)
	}

	ctx, cancel := context.WithCancel(ctx)
	l := &Lease{cancel: cancel, exited: make(chan struct{})}
	go func() {
		defer close(l.exited)
		ticker := time.NewTicker(freq)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if err := e.driver.ExtendMessageDeadline(ctx, msg, e.Deadline); err != nil {
				if ctx.Err() == nil {
					l.err = err
				}
				return
			}
			l.extensions.Add(1)
			metrics.DeadlineExtensions.Inc()
			slog.DebugContext(ctx, "Extended message deadline",
				"message_id", msg.LoggableID,
				"deadline", e.Deadline)
		}
	}()
	return l, nil
}

// Extensions returns how many times the deadline has been extended so far.
func (l *Lease) Extensions() int64 {
	return l.extensions.Load()
}

// Release stops extending the deadline and returns the error that stopped
// it early, if any. Calling Release more than once has no further effect and
// returns nil.
func (l *Lease) Release() error {
	err := error(nil)
	l.release.Do(func() {
		l.cancel()
		<-l.exited
		err = l.err
	})
	return err
}
