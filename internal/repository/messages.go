package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/meetpipe/meeting-gateway/internal/model"
)

// MessagesRepository defines persistence for captured chat messages.
type MessagesRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, m model.Message) error
}

// VoiceSessionsRepository defines persistence for voice session records.
type VoiceSessionsRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, s model.VoiceSession) error
}

// MediaAssetsRepository defines persistence for uploaded media metadata.
type MediaAssetsRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, a model.MediaAsset) error
}

type MessagesRepositoryImpl struct {
	db *sqlx.DB
}

func NewMessagesRepository(db *sqlx.DB) *MessagesRepositoryImpl {
	return &MessagesRepositoryImpl{db: db}
}

var _ MessagesRepository = (*MessagesRepositoryImpl)(nil)

func (r *MessagesRepositoryImpl) withTx(ctx context.Context, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
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

func (r *MessagesRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, m model.Message) error {
	const q = `
		INSERT INTO messages
		    (id, meeting_id, channel_id, author_id, author_name, content, platform, sent_at, created_at)
		VALUES
		    (?,  ?,          ?,          ?,         ?,           ?,       ?,        ?,       NOW())
	`
	return r.withTx(ctx, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			m.ID, m.MeetingID, m.ChannelID, m.AuthorID, m.AuthorName, m.Content, m.Platform.String(), m.SentAt,
		)
		return err
	})
}

type VoiceSessionsRepositoryImpl struct {
	db *sqlx.DB
}

func NewVoiceSessionsRepository(db *sqlx.DB) *VoiceSessionsRepositoryImpl {
	return &VoiceSessionsRepositoryImpl{db: db}
}

var _ VoiceSessionsRepository = (*VoiceSessionsRepositoryImpl)(nil)

func (r *VoiceSessionsRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, s model.VoiceSession) error {
	const q = `
		INSERT INTO voice_sessions
		    (id, meeting_id, channel_id, user_id, user_name, platform, joined_at, left_at, created_at)
		VALUES
		    (?,  ?,          ?,          ?,       ?,         ?,        ?,         ?,       NOW())
	`
	run := func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			s.ID, s.MeetingID, s.ChannelID, s.UserID, s.UserName, s.Platform.String(), s.JoinedAt, s.LeftAt,
		)
		return err
	}
	if tx != nil {
		return run(tx)
	}
	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = t.Rollback() }()
	if err := run(t); err != nil {
		return err
	}
	return t.Commit()
}

type MediaAssetsRepositoryImpl struct {
	db *sqlx.DB
}

func NewMediaAssetsRepository(db *sqlx.DB) *MediaAssetsRepositoryImpl {
	return &MediaAssetsRepositoryImpl{db: db}
}

var _ MediaAssetsRepository = (*MediaAssetsRepositoryImpl)(nil)

func (r *MediaAssetsRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, a model.MediaAsset) error {
	const q = `
		INSERT INTO media_assets
		    (id, meeting_id, channel_id, file_name, content_type, size_bytes, checksum, platform, uploaded_at)
		VALUES
		    (?,  ?,          ?,          ?,         ?,            ?,          ?,        ?,        ?)
	`
	run := func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			a.ID, a.MeetingID, a.ChannelID, a.FileName, a.ContentType, a.SizeBytes, a.Checksum, a.Platform.String(), a.UploadedAt,
		)
		return err
	}
	if tx != nil {
		return run(tx)
	}
	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = t.Rollback() }()
	if err := run(t); err != nil {
		return err
	}
	return t.Commit()
}
