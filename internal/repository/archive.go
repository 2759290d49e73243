package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// ResultArchiveRow is one processed result archived in ClickHouse for reports.
type ResultArchiveRow struct {
	MeetingID     string    `db:"meeting_id"`
	ChannelID     string    `db:"channel_id"`
	Platform      string    `db:"platform"`
	Kind          string    `db:"kind"` // summary|transcription|action_items
	Payload       string    `db:"payload"`
	ProcessedTime time.Time `db:"processed_time"`
}

// ResultArchiveRepository appends processed results to ClickHouse and lists
// them for the reports endpoint. Writes are best-effort; the in-memory store
// stays authoritative for live reads.
type ResultArchiveRepository interface {
	Insert(ctx context.Context, row ResultArchiveRow) error
	List(ctx context.Context, platform, kind string, limit, offset int) ([]ResultArchiveRow, error)
}

type resultArchiveRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewResultArchiveRepository(ch *sqlx.DB) ResultArchiveRepository {
	return &resultArchiveRepository{ch: ch}
}

func (r *resultArchiveRepository) Insert(ctx context.Context, row ResultArchiveRow) error {
	const q = `
		INSERT INTO meetgw.processed_results
		    (meeting_id, channel_id, platform, kind, payload, processed_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.ch.ExecContext(ctx, q,
		row.MeetingID, row.ChannelID, row.Platform, row.Kind, row.Payload, row.ProcessedTime,
	)
	return err
}

func (r *resultArchiveRepository) List(ctx context.Context, platform, kind string, limit, offset int) ([]ResultArchiveRow, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT meeting_id, channel_id, platform, kind, payload, processed_time
		FROM meetgw.processed_results
		WHERE 1 = 1
	`
	args := []any{}

	if platform != "" {
		q += " AND upper(platform) = upper(?)"
		args = append(args, platform)
	}
	if kind != "" {
		q += " AND kind = ?"
		args = append(args, kind)
	}

	q += " ORDER BY processed_time DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []ResultArchiveRow
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
