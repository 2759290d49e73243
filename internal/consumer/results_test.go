package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meetpipe/meeting-gateway/internal/kafka"
	"github.com/meetpipe/meeting-gateway/internal/model"
	"github.com/meetpipe/meeting-gateway/internal/repository"
	"github.com/meetpipe/meeting-gateway/internal/store"
)

// fakeNotifier records which results were pushed.
type fakeNotifier struct {
	mu             sync.Mutex
	summaries      []model.ProcessedSummary
	transcriptions []model.ProcessedTranscription
	actionItems    []model.ProcessedActionItems
}

func (f *fakeNotifier) NotifySummary(v model.ProcessedSummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, v)
}

func (f *fakeNotifier) NotifyTranscription(v model.ProcessedTranscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcriptions = append(f.transcriptions, v)
}

func (f *fakeNotifier) NotifyActionItems(v model.ProcessedActionItems) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actionItems = append(f.actionItems, v)
}

// fakeArchive records inserted rows; an optional error fails every insert.
type fakeArchive struct {
	mu   sync.Mutex
	rows []repository.ResultArchiveRow
	err  error
}

func (f *fakeArchive) Insert(ctx context.Context, row repository.ResultArchiveRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeArchive) List(ctx context.Context, platform, kind string, limit, offset int) ([]repository.ResultArchiveRow, error) {
	return nil, nil
}

// fakeFetcher replays queued messages, then blocks until ctx is cancelled.
type fakeFetcher struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
}

func (f *fakeFetcher) Fetch(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.queue) > 0 {
		m := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeFetcher) Commit(ctx context.Context, m kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, m)
	return nil
}

func newTestResults(archive repository.ResultArchiveRepository) (*Results, *store.ResultStore, *fakeNotifier) {
	st := store.NewResultStore()
	nt := &fakeNotifier{}
	return NewResults(st, nt, archive, zap.NewNop()), st, nt
}

func TestHandleSummaryStoresArchivesNotifies(t *testing.T) {
	archive := &fakeArchive{}
	w, st, nt := newTestResults(archive)

	payload := []byte(`{
		"meetingId": "m1",
		"channelId": "c1",
		"platform": "DISCORD",
		"title": "Weekly Sync",
		"summary": "we talked",
		"keyPoints": ["a", "b"],
		"processedTime": "2026-08-28T10:00:00Z"
	}`)
	w.HandleSummary(context.Background(), payload)

	got, ok := st.GetSummary("m1")
	require.True(t, ok)
	assert.Equal(t, "we talked", got.Summary)
	assert.Equal(t, []string{"a", "b"}, got.KeyPoints)

	require.Len(t, nt.summaries, 1)
	assert.Equal(t, "m1", nt.summaries[0].MeetingID)

	require.Len(t, archive.rows, 1)
	assert.Equal(t, "summary", archive.rows[0].Kind)
	assert.Equal(t, "DISCORD", archive.rows[0].Platform)
}

func TestHandleSummaryPoisonInvalidJSON(t *testing.T) {
	w, st, nt := newTestResults(nil)

	w.HandleSummary(context.Background(), []byte(`{"meetingId": `))

	assert.Empty(t, st.AllSummaries())
	assert.Empty(t, nt.summaries)
}

func TestHandleSummaryPoisonMissingMeetingID(t *testing.T) {
	w, st, nt := newTestResults(nil)

	w.HandleSummary(context.Background(), []byte(`{"platform":"DISCORD","summary":"orphan"}`))

	assert.Empty(t, st.AllSummaries())
	assert.Empty(t, nt.summaries)
}

func TestHandleTranscription(t *testing.T) {
	w, st, nt := newTestResults(nil)

	payload := []byte(`{
		"meetingId": "m1",
		"fullTranscription": "hello world",
		"segments": [{"speakerName":"ada","text":"hello","startTimeMs":0,"endTimeMs":900}],
		"language": "en"
	}`)
	w.HandleTranscription(context.Background(), payload)

	got, ok := st.GetTranscription("m1")
	require.True(t, ok)
	assert.Equal(t, "hello world", got.FullTranscription)
	require.Len(t, got.Segments, 1)
	assert.Equal(t, "ada", got.Segments[0].SpeakerName)
	assert.Len(t, nt.transcriptions, 1)
}

func TestHandleActionItems(t *testing.T) {
	w, st, nt := newTestResults(nil)

	payload := []byte(`{
		"meetingId": "m1",
		"actionItems": [
			{"title": "ship it", "assignee": "ada", "priority": "HIGH", "status": "PENDING"},
			{"title": "write docs", "priority": "LOW", "status": "PENDING"}
		]
	}`)
	w.HandleActionItems(context.Background(), payload)

	got, ok := st.GetActionItems("m1")
	require.True(t, ok)
	require.Len(t, got.ActionItems, 2)
	assert.Equal(t, model.PriorityHigh, got.ActionItems[0].Priority)
	assert.Len(t, nt.actionItems, 1)
}

func TestHandleSummaryArchiveFailureIsBestEffort(t *testing.T) {
	archive := &fakeArchive{err: errors.New("clickhouse down")}
	w, st, nt := newTestResults(archive)

	w.HandleSummary(context.Background(), []byte(`{"meetingId":"m1","summary":"ok"}`))

	// stored and notified even though archiving failed
	_, ok := st.GetSummary("m1")
	assert.True(t, ok)
	assert.Len(t, nt.summaries, 1)
}

func TestHandleSummaryRedeliveryOverwrites(t *testing.T) {
	w, st, _ := newTestResults(nil)

	w.HandleSummary(context.Background(), []byte(`{"meetingId":"m1","summary":"first"}`))
	w.HandleSummary(context.Background(), []byte(`{"meetingId":"m1","summary":"second"}`))

	got, ok := st.GetSummary("m1")
	require.True(t, ok)
	assert.Equal(t, "second", got.Summary)
	assert.Len(t, st.AllSummaries(), 1)
}

func TestRunCommitsGoodAndPoisonMessages(t *testing.T) {
	w, st, _ := newTestResults(nil)
	f := &fakeFetcher{queue: []kafka.Message{
		{Value: []byte(`{"meetingId":"m1","summary":"ok"}`)},
		{Value: []byte(`not json`)},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := w.RunSummaries(ctx, f)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// both messages committed: poison must not loop
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Len(t, f.committed, 2)

	_, ok := st.GetSummary("m1")
	assert.True(t, ok)
}
