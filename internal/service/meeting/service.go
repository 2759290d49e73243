package meeting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/meetpipe/meeting-gateway/internal/model"
	"github.com/meetpipe/meeting-gateway/internal/outbox"
	"github.com/meetpipe/meeting-gateway/internal/repository"
	"github.com/meetpipe/meeting-gateway/internal/util"
)

var ErrMeetingNotFound = errors.New("meeting not found")

// Service runs the collector-side business operations. Every write persists
// its aggregate and the matching outbox event in a single MySQL transaction,
// so the relay can never observe a state change without its event or vice
// versa.
type Service struct {
	db        *sqlx.DB
	meetings  repository.MeetingsRepository
	messages  repository.MessagesRepository
	voice     repository.VoiceSessionsRepository
	media     repository.MediaAssetsRepository
	publisher *outbox.Publisher
}

func New(
	db *sqlx.DB,
	meetingsRepo repository.MeetingsRepository,
	messagesRepo repository.MessagesRepository,
	voiceRepo repository.VoiceSessionsRepository,
	mediaRepo repository.MediaAssetsRepository,
	publisher *outbox.Publisher,
) *Service {
	return &Service{
		db:        db,
		meetings:  meetingsRepo,
		messages:  messagesRepo,
		voice:     voiceRepo,
		media:     mediaRepo,
		publisher: publisher,
	}
}

// CreateMeeting registers a meeting and emits a Meeting/Created event.
func (s *Service) CreateMeeting(ctx context.Context, title string, platform model.Platform, channelID string) (model.Meeting, error) {
	m := model.Meeting{
		ID:        util.New(),
		Title:     title,
		Platform:  platform,
		ChannelID: channelID,
		Status:    model.MeetingCreated,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Meeting{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.meetings.Insert(ctx, tx, m); err != nil {
		return model.Meeting{}, fmt.Errorf("insert meeting: %w", err)
	}
	if err := s.publisher.PublishCreated(ctx, tx, m, m.ID, model.AggregateMeeting); err != nil {
		return model.Meeting{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Meeting{}, err
	}
	return m, nil
}

// StartMeeting flips the meeting to active and emits Meeting/Started.
func (s *Service) StartMeeting(ctx context.Context, id string) error {
	return s.transition(ctx, id, model.MeetingActive, model.EventStarted)
}

// EndMeeting flips the meeting to ended and emits Meeting/Ended.
func (s *Service) EndMeeting(ctx context.Context, id string) error {
	return s.transition(ctx, id, model.MeetingEnded, model.EventEnded)
}

func (s *Service) transition(ctx context.Context, id string, status model.MeetingStatus, eventType string) error {
	m, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get meeting: %w", err)
	}
	if m == nil {
		return ErrMeetingNotFound
	}

	m.Status = status
	now := time.Now()
	switch status {
	case model.MeetingActive:
		m.StartedAt = &now
	case model.MeetingEnded:
		m.EndedAt = &now
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.meetings.UpdateStatus(ctx, tx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMeetingNotFound
		}
		return fmt.Errorf("update meeting status: %w", err)
	}
	if err := s.publisher.Publish(ctx, tx, m, id, model.AggregateMeeting, eventType); err != nil {
		return err
	}

	return tx.Commit()
}

// GetMeeting returns nil when the meeting does not exist.
func (s *Service) GetMeeting(ctx context.Context, id string) (*model.Meeting, error) {
	return s.meetings.GetByID(ctx, id)
}

// IngestMessage captures a chat message and emits Message/Created.
func (s *Service) IngestMessage(ctx context.Context, m model.Message) (string, error) {
	m.ID = util.New()
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.messages.Insert(ctx, tx, m); err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}
	if err := s.publisher.PublishCreated(ctx, tx, m, m.ID, model.AggregateMessage); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return m.ID, nil
}

// RecordVoiceSession captures a voice-channel presence record and emits
// VoiceSession/Created.
func (s *Service) RecordVoiceSession(ctx context.Context, v model.VoiceSession) (string, error) {
	v.ID = util.New()
	if v.JoinedAt.IsZero() {
		v.JoinedAt = time.Now()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.voice.Insert(ctx, tx, v); err != nil {
		return "", fmt.Errorf("insert voice session: %w", err)
	}
	if err := s.publisher.PublishCreated(ctx, tx, v, v.ID, model.AggregateVoiceSession); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return v.ID, nil
}

// RegisterMediaUpload stores uploaded media metadata and emits
// MeetingMedia/Created so the AI stage picks the file up.
func (s *Service) RegisterMediaUpload(ctx context.Context, a model.MediaAsset) (string, error) {
	a.ID = util.New()
	if a.UploadedAt.IsZero() {
		a.UploadedAt = time.Now()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.media.Insert(ctx, tx, a); err != nil {
		return "", fmt.Errorf("insert media asset: %w", err)
	}
	if err := s.publisher.PublishCreated(ctx, tx, a, a.ID, model.AggregateMeetingMedia); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return a.ID, nil
}
