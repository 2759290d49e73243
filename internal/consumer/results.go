package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/meetpipe/meeting-gateway/internal/kafka"
	"github.com/meetpipe/meeting-gateway/internal/metrics"
	"github.com/meetpipe/meeting-gateway/internal/model"
	"github.com/meetpipe/meeting-gateway/internal/repository"
	"github.com/meetpipe/meeting-gateway/internal/store"
)

// Fetcher is the slice of kafka.Consumer the worker needs; tests inject fakes.
type Fetcher interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// ResultNotifier pushes a stored result out to live websocket sessions.
type ResultNotifier interface {
	NotifySummary(v model.ProcessedSummary)
	NotifyTranscription(v model.ProcessedTranscription)
	NotifyActionItems(v model.ProcessedActionItems)
}

// Results consumes the three processed-result topics from the AI stage.
// Every message follows the same contract: store (last-write-wins upsert by
// meeting id), archive best-effort, notify, commit. Unparsable or keyless
// messages are poison: logged, committed, dropped, so they never loop.
type Results struct {
	Store    *store.ResultStore
	Notifier ResultNotifier
	Archive  repository.ResultArchiveRepository // optional, nil disables archiving

	log *zap.Logger
}

func NewResults(st *store.ResultStore, notifier ResultNotifier, archive repository.ResultArchiveRepository, log *zap.Logger) *Results {
	return &Results{Store: st, Notifier: notifier, Archive: archive, log: log}
}

// RunSummaries blocks consuming the processed-summaries topic until ctx ends.
func (w *Results) RunSummaries(ctx context.Context, c Fetcher) error {
	return w.run(ctx, c, w.HandleSummary)
}

// RunTranscriptions blocks consuming the processed-transcripts topic until ctx ends.
func (w *Results) RunTranscriptions(ctx context.Context, c Fetcher) error {
	return w.run(ctx, c, w.HandleTranscription)
}

// RunActionItems blocks consuming the processed-action-items topic until ctx ends.
func (w *Results) RunActionItems(ctx context.Context, c Fetcher) error {
	return w.run(ctx, c, w.HandleActionItems)
}

func (w *Results) run(ctx context.Context, c Fetcher, handle func(context.Context, []byte)) error {
	for {
		m, err := c.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Error("kafka fetch failed", zap.Error(err))
			time.Sleep(200 * time.Millisecond)
			continue
		}

		handle(ctx, m.Value)

		// Always commit: storing is an idempotent overwrite, so redelivery is
		// harmless, and committing poison prevents redelivery loops.
		if err := c.Commit(ctx, m); err != nil {
			w.log.Error("kafka commit failed", zap.Error(err))
		}
	}
}

// HandleSummary processes one processed-summary payload.
func (w *Results) HandleSummary(ctx context.Context, payload []byte) {
	var v model.ProcessedSummary
	if err := json.Unmarshal(payload, &v); err != nil || v.MeetingID == "" {
		w.poison("summary", payload, err)
		return
	}

	w.Store.SaveSummary(v)
	w.archive(ctx, "summary", v.MeetingID, v.ChannelID, v.Platform, v.ProcessedTime, payload)
	w.Notifier.NotifySummary(v)
	metrics.ResultsConsumedTotal.WithLabelValues("summary", "stored").Inc()

	w.log.Info("summary stored",
		zap.String("meeting_id", v.MeetingID),
		zap.String("platform", v.Platform),
	)
}

// HandleTranscription processes one processed-transcription payload.
func (w *Results) HandleTranscription(ctx context.Context, payload []byte) {
	var v model.ProcessedTranscription
	if err := json.Unmarshal(payload, &v); err != nil || v.MeetingID == "" {
		w.poison("transcription", payload, err)
		return
	}

	w.Store.SaveTranscription(v)
	w.archive(ctx, "transcription", v.MeetingID, v.ChannelID, v.Platform, v.ProcessedTime, payload)
	w.Notifier.NotifyTranscription(v)
	metrics.ResultsConsumedTotal.WithLabelValues("transcription", "stored").Inc()

	w.log.Info("transcription stored", zap.String("meeting_id", v.MeetingID))
}

// HandleActionItems processes one processed-action-items payload.
func (w *Results) HandleActionItems(ctx context.Context, payload []byte) {
	var v model.ProcessedActionItems
	if err := json.Unmarshal(payload, &v); err != nil || v.MeetingID == "" {
		w.poison("action_items", payload, err)
		return
	}

	w.Store.SaveActionItems(v)
	w.archive(ctx, "action_items", v.MeetingID, v.ChannelID, v.Platform, v.ProcessedTime, payload)
	w.Notifier.NotifyActionItems(v)
	metrics.ResultsConsumedTotal.WithLabelValues("action_items", "stored").Inc()

	w.log.Info("action items stored",
		zap.String("meeting_id", v.MeetingID),
		zap.Int("count", len(v.ActionItems)),
	)
}

func (w *Results) poison(kind string, payload []byte, err error) {
	if err == nil {
		err = errors.New("missing meetingId")
	}
	metrics.ResultsConsumedTotal.WithLabelValues(kind, "poison").Inc()
	w.log.Error("poison message dropped",
		zap.String("kind", kind),
		zap.Int("payload_bytes", len(payload)),
		zap.Error(err),
	)
}

func (w *Results) archive(ctx context.Context, kind, meetingID, channelID, platform string, processedTime time.Time, payload []byte) {
	if w.Archive == nil {
		return
	}
	if processedTime.IsZero() {
		processedTime = time.Now()
	}
	row := repository.ResultArchiveRow{
		MeetingID:     meetingID,
		ChannelID:     channelID,
		Platform:      platform,
		Kind:          kind,
		Payload:       string(payload),
		ProcessedTime: processedTime,
	}
	if err := w.Archive.Insert(ctx, row); err != nil {
		// Best-effort: the in-memory store already holds the result.
		w.log.Warn("result archive insert failed",
			zap.String("kind", kind),
			zap.String("meeting_id", meetingID),
			zap.Error(err),
		)
	}
}
