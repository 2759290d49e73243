package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/meetpipe/meeting-gateway/internal/metrics"
	"github.com/meetpipe/meeting-gateway/internal/repository"
)

// EventProducer is the slice of the Kafka producer the relay needs.
// A nil error means the broker acknowledged the write.
type EventProducer interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

// Relay polls the outbox table and delivers every row to Kafka at least once.
// A row is marked processed only after a confirmed publish; anything else is
// left in place and retried on the next tick. Run one active relay per
// deployment: there is no row claiming, so concurrent relays double-send.
type Relay struct {
	Outbox   repository.OutboxRepository
	Producer EventProducer
	Router   *Router

	PollInterval  time.Duration // default 5s
	BatchSize     int           // default 100
	Retention     time.Duration // processed rows older than this are swept
	SweepInterval time.Duration // default 10m

	log *zap.Logger
}

func NewRelay(outbox repository.OutboxRepository, producer EventProducer, router *Router, log *zap.Logger) *Relay {
	return &Relay{
		Outbox:        outbox,
		Producer:      producer,
		Router:        router,
		PollInterval:  5 * time.Second,
		BatchSize:     100,
		Retention:     24 * time.Hour,
		SweepInterval: 10 * time.Minute,
		log:           log,
	}
}

// Run blocks until ctx is cancelled. Poll cycles never overlap: the next tick
// fires only after the previous cycle returned.
func (r *Relay) Run(ctx context.Context) error {
	if r.PollInterval <= 0 {
		r.PollInterval = 5 * time.Second
	}
	if r.BatchSize <= 0 {
		r.BatchSize = 100
	}
	if r.SweepInterval <= 0 {
		r.SweepInterval = 10 * time.Minute
	}

	poll := time.NewTicker(r.PollInterval)
	defer poll.Stop()
	sweep := time.NewTicker(r.SweepInterval)
	defer sweep.Stop()

	r.log.Info("outbox relay started",
		zap.Duration("poll_interval", r.PollInterval),
		zap.Int("batch_size", r.BatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
			r.PollOnce(ctx)
		case <-sweep.C:
			r.sweepOnce(ctx)
		}
	}
}

// PollOnce runs a single relay cycle. A database error aborts the cycle; the
// next tick retries from scratch with the same unprocessed rows.
func (r *Relay) PollOnce(ctx context.Context) {
	events, err := r.Outbox.FetchUnprocessed(ctx, r.BatchSize)
	if err != nil {
		r.log.Error("outbox fetch failed, aborting cycle", zap.Error(err))
		return
	}
	if len(events) == 0 {
		return
	}

	sent := 0
	for _, ev := range events {
		topic, known := r.Router.TopicFor(ev.AggregateType)
		if !known {
			r.log.Warn("unknown aggregate type, using default topic",
				zap.String("aggregate_type", ev.AggregateType),
				zap.Int64("event_id", ev.ID),
				zap.String("topic", topic),
			)
		}
		key := KeyFor(ev.Payload, ev.AggregateType)

		if err := r.Producer.Publish(ctx, topic, key, ev.Payload); err != nil {
			metrics.OutboxRelayedTotal.WithLabelValues(topic, "failed").Inc()
			r.log.Error("publish failed, row stays unprocessed",
				zap.Int64("event_id", ev.ID),
				zap.String("topic", topic),
				zap.Error(err),
			)
			continue
		}

		// Crash window: if we die before MarkProcessed, the row is re-sent on
		// restart. At-least-once, never at-most-once.
		if err := r.Outbox.MarkProcessed(ctx, ev.ID); err != nil {
			r.log.Error("mark processed failed, row will be re-sent",
				zap.Int64("event_id", ev.ID),
				zap.Error(err),
			)
			continue
		}
		metrics.OutboxRelayedTotal.WithLabelValues(topic, "sent").Inc()
		sent++
	}

	r.log.Debug("relay cycle complete", zap.Int("fetched", len(events)), zap.Int("sent", sent))
}

func (r *Relay) sweepOnce(ctx context.Context) {
	if r.Retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-r.Retention)
	n, err := r.Outbox.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		r.log.Error("outbox retention sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		r.log.Info("outbox retention sweep", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
	}
}
