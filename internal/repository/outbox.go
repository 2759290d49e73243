package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/meetpipe/meeting-gateway/internal/model"
)

// OutboxRepository defines persistence methods for the outbox table.
type OutboxRepository interface {
	// Insert writes a single outbox event. If tx is nil, it will open/commit
	// an internal transaction; otherwise it uses the given tx.
	Insert(ctx context.Context, tx *sqlx.Tx, aggregateType, aggregateID, eventType string, payload []byte) error

	// FetchUnprocessed returns up to limit rows with processed=false, oldest
	// first. Ordering is per-call only; it is not a global delivery order.
	FetchUnprocessed(ctx context.Context, limit int) ([]model.OutboxEvent, error)

	// MarkProcessed flips processed=true for a single row. Called by the relay
	// only after a confirmed publish.
	MarkProcessed(ctx context.Context, id int64) error

	// DeleteProcessedBefore removes processed rows older than cutoff.
	// Housekeeping only; correctness never depends on it.
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// OutboxRepositoryImpl is a sqlx-backed implementation.
type OutboxRepositoryImpl struct {
	db *sqlx.DB
}

// NewOutboxRepository constructs an OutboxRepositoryImpl.
func NewOutboxRepository(db *sqlx.DB) *OutboxRepositoryImpl {
	return &OutboxRepositoryImpl{db: db}
}

var _ OutboxRepository = (*OutboxRepositoryImpl)(nil)

// withTx runs fn in the provided tx, or starts a new transaction when tx is nil.
func (r *OutboxRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}

	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}

	return t.Commit()
}

// Insert adds an event row to outbox. The relay worker picks it up and
// publishes to Kafka based on aggregate_type routing.
func (r *OutboxRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, aggregateType, aggregateID, eventType string, payload []byte) error {
	const q = `
		INSERT INTO outbox (aggregate_type, aggregate_id, event_type, payload, created_at, processed)
		VALUES (?, ?, ?, ?, NOW(), 0)
	`
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q, aggregateType, aggregateID, eventType, payload)

		return err
	})
}

func (r *OutboxRepositoryImpl) FetchUnprocessed(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	const q = `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at, processed
		  FROM outbox
		 WHERE processed = 0
		 ORDER BY created_at ASC
		 LIMIT ?
	`
	var events []model.OutboxEvent
	if err := r.db.SelectContext(ctx, &events, q, limit); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *OutboxRepositoryImpl) MarkProcessed(ctx context.Context, id int64) error {
	const q = `UPDATE outbox SET processed = 1 WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *OutboxRepositoryImpl) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM outbox WHERE processed = 1 AND created_at < ?`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
