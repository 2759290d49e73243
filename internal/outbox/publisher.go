package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/meetpipe/meeting-gateway/internal/model"
	"github.com/meetpipe/meeting-gateway/internal/repository"
)

// ErrSerialization means the aggregate could not be encoded. The caller's
// transaction must roll back so no partial event row survives.
var ErrSerialization = errors.New("outbox: payload serialization failed")

// Publisher appends events to the outbox table. Business services call it
// inside their own transaction so the event row and the state change commit
// or roll back together.
type Publisher struct {
	outbox repository.OutboxRepository
}

func NewPublisher(outbox repository.OutboxRepository) *Publisher {
	return &Publisher{outbox: outbox}
}

// Publish serializes aggregate and inserts an unprocessed outbox row through
// the given tx. A nil tx opens an internal transaction, but callers that want
// atomicity with their own writes must pass theirs.
func (p *Publisher) Publish(ctx context.Context, tx *sqlx.Tx, aggregate any, aggregateID, aggregateType, eventType string) error {
	payload, err := json.Marshal(aggregate)
	if err != nil {
		return fmt.Errorf("%w: type=%s id=%s event=%s: %v", ErrSerialization, aggregateType, aggregateID, eventType, err)
	}

	if err := p.outbox.Insert(ctx, tx, aggregateType, aggregateID, eventType, payload); err != nil {
		return fmt.Errorf("outbox insert: %w", err)
	}
	return nil
}

func (p *Publisher) PublishCreated(ctx context.Context, tx *sqlx.Tx, aggregate any, aggregateID, aggregateType string) error {
	return p.Publish(ctx, tx, aggregate, aggregateID, aggregateType, model.EventCreated)
}

func (p *Publisher) PublishUpdated(ctx context.Context, tx *sqlx.Tx, aggregate any, aggregateID, aggregateType string) error {
	return p.Publish(ctx, tx, aggregate, aggregateID, aggregateType, model.EventUpdated)
}

func (p *Publisher) PublishStarted(ctx context.Context, tx *sqlx.Tx, aggregate any, aggregateID, aggregateType string) error {
	return p.Publish(ctx, tx, aggregate, aggregateID, aggregateType, model.EventStarted)
}

func (p *Publisher) PublishEnded(ctx context.Context, tx *sqlx.Tx, aggregate any, aggregateID, aggregateType string) error {
	return p.Publish(ctx, tx, aggregate, aggregateID, aggregateType, model.EventEnded)
}
