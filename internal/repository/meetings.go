package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/meetpipe/meeting-gateway/internal/model"
)

// MeetingsRepository defines persistence for the meetings table.
type MeetingsRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, m model.Meeting) error
	GetByID(ctx context.Context, id string) (*model.Meeting, error)
	// UpdateStatus moves a meeting into status and stamps started_at/ended_at
	// as appropriate. Returns sql.ErrNoRows when the meeting does not exist.
	UpdateStatus(ctx context.Context, tx *sqlx.Tx, id string, status model.MeetingStatus) error
}

type MeetingsRepositoryImpl struct {
	db *sqlx.DB
}

func NewMeetingsRepository(db *sqlx.DB) *MeetingsRepositoryImpl {
	return &MeetingsRepositoryImpl{db: db}
}

var _ MeetingsRepository = (*MeetingsRepositoryImpl)(nil)

func (r *MeetingsRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
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

func (r *MeetingsRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, m model.Meeting) error {
	const q = `
		INSERT INTO meetings
		    (id, title, platform, channel_id, status, created_at, updated_at)
		VALUES
		    (?,  ?,     ?,        ?,          ?,      NOW(),      NOW())
	`
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			m.ID, m.Title, m.Platform.String(), m.ChannelID, m.Status.String(),
		)
		return err
	})
}

func (r *MeetingsRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Meeting, error) {
	var m model.Meeting
	err := r.db.GetContext(ctx, &m, `
		SELECT id, title, platform, channel_id, status, started_at, ended_at, created_at, updated_at
		  FROM meetings
		 WHERE id = ? LIMIT 1
	`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MeetingsRepositoryImpl) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id string, status model.MeetingStatus) error {
	var q string
	switch status {
	case model.MeetingActive:
		q = `UPDATE meetings SET status = ?, started_at = NOW(), updated_at = NOW() WHERE id = ?`
	case model.MeetingEnded:
		q = `UPDATE meetings SET status = ?, ended_at = NOW(), updated_at = NOW() WHERE id = ?`
	default:
		q = `UPDATE meetings SET status = ?, updated_at = NOW() WHERE id = ?`
	}

	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, q, status.String(), id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}
