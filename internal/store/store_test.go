package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetpipe/meeting-gateway/internal/model"
)

func summary(meetingID, platform string, processed time.Time) model.ProcessedSummary {
	return model.ProcessedSummary{
		MeetingID:     meetingID,
		ChannelID:     "chan-" + meetingID,
		Platform:      platform,
		Title:         "title " + meetingID,
		Summary:       "summary " + meetingID,
		ProcessedTime: processed,
	}
}

func TestSaveSummaryLastWriteWins(t *testing.T) {
	s := NewResultStore()
	now := time.Now()

	s.SaveSummary(summary("m1", "DISCORD", now))
	second := summary("m1", "DISCORD", now.Add(time.Minute))
	second.Summary = "revised"
	s.SaveSummary(second)

	got, ok := s.GetSummary("m1")
	require.True(t, ok)
	assert.Equal(t, "revised", got.Summary)
	assert.Len(t, s.AllSummaries(), 1)
}

func TestGetSummaryMissing(t *testing.T) {
	s := NewResultStore()
	_, ok := s.GetSummary("nope")
	assert.False(t, ok)
}

func TestSummariesByPlatformCaseInsensitive(t *testing.T) {
	s := NewResultStore()
	now := time.Now()
	s.SaveSummary(summary("m1", "DISCORD", now))
	s.SaveSummary(summary("m2", "ZOOM", now))
	s.SaveSummary(summary("m3", "DISCORD", now))

	assert.Len(t, s.SummariesByPlatform("discord"), 2)
	assert.Len(t, s.SummariesByPlatform("Zoom"), 1)
	assert.Empty(t, s.SummariesByPlatform("teams"))
}

func TestRecentSummariesOrderAndLimit(t *testing.T) {
	s := NewResultStore()
	base := time.Now()
	s.SaveSummary(summary("oldest", "DISCORD", base.Add(-2*time.Hour)))
	s.SaveSummary(summary("newest", "DISCORD", base))
	s.SaveSummary(summary("middle", "DISCORD", base.Add(-time.Hour)))

	recent := s.RecentSummaries(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "newest", recent[0].MeetingID)
	assert.Equal(t, "middle", recent[1].MeetingID)

	// limit <= 0 means everything
	assert.Len(t, s.RecentSummaries(0), 3)
}

func TestTranscriptionRoundTrip(t *testing.T) {
	s := NewResultStore()
	s.SaveTranscription(model.ProcessedTranscription{
		MeetingID:         "m1",
		FullTranscription: "hello world",
		Language:          "en",
	})

	got, ok := s.GetTranscription("m1")
	require.True(t, ok)
	assert.Equal(t, "hello world", got.FullTranscription)

	_, ok = s.GetTranscription("m2")
	assert.False(t, ok)
}

func TestClearDropsAllKinds(t *testing.T) {
	s := NewResultStore()
	s.SaveSummary(summary("m1", "DISCORD", time.Now()))
	s.SaveTranscription(model.ProcessedTranscription{MeetingID: "m1"})
	s.SaveActionItems(model.ProcessedActionItems{MeetingID: "m1"})
	s.SaveSummary(summary("m2", "ZOOM", time.Now()))

	s.Clear("m1")

	_, ok := s.GetSummary("m1")
	assert.False(t, ok)
	_, ok = s.GetTranscription("m1")
	assert.False(t, ok)
	_, ok = s.GetActionItems("m1")
	assert.False(t, ok)

	_, ok = s.GetSummary("m2")
	assert.True(t, ok)
}

func TestStatistics(t *testing.T) {
	s := NewResultStore()
	now := time.Now()
	s.SaveSummary(summary("m1", "DISCORD", now))
	s.SaveSummary(summary("m2", "ZOOM", now))
	s.SaveTranscription(model.ProcessedTranscription{MeetingID: "m1"})
	s.SaveActionItems(model.ProcessedActionItems{
		MeetingID:   "m1",
		ActionItems: []model.ActionItem{{Title: "a"}, {Title: "b"}},
	})
	s.SaveActionItems(model.ProcessedActionItems{
		MeetingID:   "m2",
		ActionItems: []model.ActionItem{{Title: "c"}},
	})

	stats := s.Statistics()
	assert.Equal(t, 2, stats.TotalMeetings)
	assert.Equal(t, 1, stats.TotalTranscriptions)
	assert.Equal(t, 3, stats.TotalActionItems)
	assert.Equal(t, 1, stats.DiscordMeetings)
	assert.Equal(t, 1, stats.ZoomMeetings)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewResultStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("m%d", n%4)
			for j := 0; j < 100; j++ {
				s.SaveSummary(summary(id, "DISCORD", time.Now()))
				s.GetSummary(id)
				s.AllSummaries()
				s.Statistics()
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.AllSummaries(), 4)
}
