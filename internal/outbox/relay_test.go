package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meetpipe/meeting-gateway/internal/model"
)

// fakeOutboxRepo is an in-memory OutboxRepository for relay tests.
type fakeOutboxRepo struct {
	events   []model.OutboxEvent
	fetchErr error
	markErr  error
	marked   []int64
}

func (f *fakeOutboxRepo) Insert(ctx context.Context, tx *sqlx.Tx, aggregateType, aggregateID, eventType string, payload []byte) error {
	f.events = append(f.events, model.OutboxEvent{
		ID:            int64(len(f.events) + 1),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now(),
	})
	return nil
}

func (f *fakeOutboxRepo) FetchUnprocessed(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []model.OutboxEvent
	for _, ev := range f.events {
		if !ev.Processed {
			out = append(out, ev)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeOutboxRepo) MarkProcessed(ctx context.Context, id int64) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, id)
	for i := range f.events {
		if f.events[i].ID == id {
			f.events[i].Processed = true
		}
	}
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var kept []model.OutboxEvent
	var deleted int64
	for _, ev := range f.events {
		if ev.Processed && ev.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, ev)
	}
	f.events = kept
	return deleted, nil
}

type published struct {
	topic   string
	key     string
	payload []byte
}

// fakeProducer records publishes and can fail the first N calls per topic.
type fakeProducer struct {
	sent     []published
	failNext int
}

func (f *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte) error {
	if f.failNext > 0 {
		f.failNext--
		return errors.New("broker unavailable")
	}
	f.sent = append(f.sent, published{topic: topic, key: key, payload: payload})
	return nil
}

func newTestRelay(repo *fakeOutboxRepo, prod *fakeProducer) *Relay {
	return NewRelay(repo, prod, NewRouter(testTopics()), zap.NewNop())
}

func seedEvent(repo *fakeOutboxRepo, aggregateType, payload string) {
	_ = repo.Insert(context.Background(), nil, aggregateType, "agg-1", model.EventCreated, []byte(payload))
}

func TestPollOnceMarksOnlyAfterAck(t *testing.T) {
	repo := &fakeOutboxRepo{}
	prod := &fakeProducer{}
	seedEvent(repo, model.AggregateMeeting, `{"meetingId":"m1"}`)
	seedEvent(repo, model.AggregateMessage, `{"meetingId":"m1","channelId":"c1"}`)

	relay := newTestRelay(repo, prod)
	relay.PollOnce(context.Background())

	require.Len(t, prod.sent, 2)
	assert.Equal(t, "meeting-events", prod.sent[0].topic)
	assert.Equal(t, "m1", prod.sent[0].key)
	assert.Equal(t, "text-message-events", prod.sent[1].topic)
	assert.Equal(t, "c1", prod.sent[1].key)
	assert.Equal(t, []int64{1, 2}, repo.marked)

	// nothing left to relay
	prod.sent = nil
	relay.PollOnce(context.Background())
	assert.Empty(t, prod.sent)
}

func TestPollOnceRetriesFailedPublish(t *testing.T) {
	repo := &fakeOutboxRepo{}
	prod := &fakeProducer{failNext: 1}
	seedEvent(repo, model.AggregateMeeting, `{"meetingId":"m1"}`)

	relay := newTestRelay(repo, prod)

	// first cycle: publish fails, row stays unprocessed
	relay.PollOnce(context.Background())
	assert.Empty(t, prod.sent)
	assert.Empty(t, repo.marked)

	// second cycle: broker back, same row delivered and marked
	relay.PollOnce(context.Background())
	require.Len(t, prod.sent, 1)
	assert.Equal(t, []int64{1}, repo.marked)
}

func TestPollOnceFetchErrorAbortsCycle(t *testing.T) {
	repo := &fakeOutboxRepo{fetchErr: errors.New("db gone")}
	prod := &fakeProducer{}
	seedEvent(repo, model.AggregateMeeting, `{"meetingId":"m1"}`)

	relay := newTestRelay(repo, prod)
	relay.PollOnce(context.Background())

	assert.Empty(t, prod.sent)
	assert.Empty(t, repo.marked)
}

func TestPollOnceUnknownTypeUsesDefaultTopic(t *testing.T) {
	repo := &fakeOutboxRepo{}
	prod := &fakeProducer{}
	seedEvent(repo, "MysteryAggregate", `{"channelId":"c9"}`)

	relay := newTestRelay(repo, prod)
	relay.PollOnce(context.Background())

	require.Len(t, prod.sent, 1)
	assert.Equal(t, "raw-audio-events", prod.sent[0].topic)
	assert.Equal(t, []int64{1}, repo.marked)
}

func TestPollOnceMarkFailureKeepsRowForRetry(t *testing.T) {
	repo := &fakeOutboxRepo{markErr: errors.New("update failed")}
	prod := &fakeProducer{}
	seedEvent(repo, model.AggregateMeeting, `{"meetingId":"m1"}`)

	relay := newTestRelay(repo, prod)
	relay.PollOnce(context.Background())
	require.Len(t, prod.sent, 1)

	// mark failed, so the row is re-sent: at-least-once, duplicates allowed
	repo.markErr = nil
	relay.PollOnce(context.Background())
	assert.Len(t, prod.sent, 2)
	assert.Equal(t, []int64{1}, repo.marked)
}

func TestSweepOnceDeletesOnlyOldProcessedRows(t *testing.T) {
	repo := &fakeOutboxRepo{}
	prod := &fakeProducer{}
	seedEvent(repo, model.AggregateMeeting, `{"meetingId":"old"}`)
	seedEvent(repo, model.AggregateMeeting, `{"meetingId":"fresh"}`)
	repo.events[0].Processed = true
	repo.events[0].CreatedAt = time.Now().Add(-48 * time.Hour)
	repo.events[1].CreatedAt = time.Now().Add(-48 * time.Hour) // old but unprocessed

	relay := newTestRelay(repo, prod)
	relay.Retention = 24 * time.Hour
	relay.sweepOnce(context.Background())

	require.Len(t, repo.events, 1)
	assert.Equal(t, int64(2), repo.events[0].ID)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &fakeOutboxRepo{}
	prod := &fakeProducer{}
	relay := newTestRelay(repo, prod)
	relay.PollInterval = 5 * time.Millisecond
	relay.SweepInterval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := relay.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
