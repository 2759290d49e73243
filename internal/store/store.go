package store

import (
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/meetpipe/meeting-gateway/internal/model"
)

// ResultStore keeps the last-known-good processed result per meeting id, one
// map per result kind. Writes are last-write-wins upserts; redelivery of the
// same meeting id simply overwrites. Each map is independently thread-safe,
// and no atomicity is promised across kinds: Statistics may observe a write
// in one map and not yet in another.
type ResultStore struct {
	summaries      *cache.Cache
	transcriptions *cache.Cache
	actionItems    *cache.Cache
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		summaries:      cache.New(cache.NoExpiration, 0),
		transcriptions: cache.New(cache.NoExpiration, 0),
		actionItems:    cache.New(cache.NoExpiration, 0),
	}
}

func (s *ResultStore) SaveSummary(v model.ProcessedSummary) {
	s.summaries.Set(v.MeetingID, v, cache.NoExpiration)
}

func (s *ResultStore) GetSummary(meetingID string) (model.ProcessedSummary, bool) {
	raw, ok := s.summaries.Get(meetingID)
	if !ok {
		return model.ProcessedSummary{}, false
	}
	return raw.(model.ProcessedSummary), true
}

func (s *ResultStore) AllSummaries() []model.ProcessedSummary {
	items := s.summaries.Items()
	out := make([]model.ProcessedSummary, 0, len(items))
	for _, it := range items {
		out = append(out, it.Object.(model.ProcessedSummary))
	}
	return out
}

// SummariesByPlatform filters by platform tag, case-insensitively.
func (s *ResultStore) SummariesByPlatform(platform string) []model.ProcessedSummary {
	out := make([]model.ProcessedSummary, 0)
	for _, v := range s.AllSummaries() {
		if strings.EqualFold(v.Platform, platform) {
			out = append(out, v)
		}
	}
	return out
}

// RecentSummaries returns up to limit summaries, newest processedTime first.
func (s *ResultStore) RecentSummaries(limit int) []model.ProcessedSummary {
	all := s.AllSummaries()
	sort.Slice(all, func(i, j int) bool {
		return all[i].ProcessedTime.After(all[j].ProcessedTime)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

func (s *ResultStore) SaveTranscription(v model.ProcessedTranscription) {
	s.transcriptions.Set(v.MeetingID, v, cache.NoExpiration)
}

func (s *ResultStore) GetTranscription(meetingID string) (model.ProcessedTranscription, bool) {
	raw, ok := s.transcriptions.Get(meetingID)
	if !ok {
		return model.ProcessedTranscription{}, false
	}
	return raw.(model.ProcessedTranscription), true
}

func (s *ResultStore) SaveActionItems(v model.ProcessedActionItems) {
	s.actionItems.Set(v.MeetingID, v, cache.NoExpiration)
}

func (s *ResultStore) GetActionItems(meetingID string) (model.ProcessedActionItems, bool) {
	raw, ok := s.actionItems.Get(meetingID)
	if !ok {
		return model.ProcessedActionItems{}, false
	}
	return raw.(model.ProcessedActionItems), true
}

func (s *ResultStore) AllActionItems() []model.ProcessedActionItems {
	items := s.actionItems.Items()
	out := make([]model.ProcessedActionItems, 0, len(items))
	for _, it := range items {
		out = append(out, it.Object.(model.ProcessedActionItems))
	}
	return out
}

// Clear drops all three result kinds for the meeting, e.g. on completion.
func (s *ResultStore) Clear(meetingID string) {
	s.summaries.Delete(meetingID)
	s.transcriptions.Delete(meetingID)
	s.actionItems.Delete(meetingID)
}

// Statistics is the dashboard counters snapshot.
type Statistics struct {
	TotalMeetings       int `json:"totalMeetings"`
	TotalTranscriptions int `json:"totalTranscriptions"`
	TotalActionItems    int `json:"totalActionItems"`
	DiscordMeetings     int `json:"discordMeetings"`
	ZoomMeetings        int `json:"zoomMeetings"`
}

func (s *ResultStore) Statistics() Statistics {
	stats := Statistics{
		TotalMeetings:       s.summaries.ItemCount(),
		TotalTranscriptions: s.transcriptions.ItemCount(),
	}
	for _, ai := range s.AllActionItems() {
		stats.TotalActionItems += len(ai.ActionItems)
	}
	stats.DiscordMeetings = len(s.SummariesByPlatform(model.PlatformDiscord.String()))
	stats.ZoomMeetings = len(s.SummariesByPlatform(model.PlatformZoom.String()))
	return stats
}
