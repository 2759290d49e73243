package outbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meetpipe/meeting-gateway/internal/config"
	"github.com/meetpipe/meeting-gateway/internal/model"
)

func testTopics() config.TopicConfig {
	return config.TopicConfig{
		RawAudio:      "raw-audio-events",
		Meetings:      "meeting-events",
		VoiceSessions: "voice-session-events",
		TextMessages:  "text-message-events",
		MediaUploaded: "media-uploaded-events",
	}
}

func TestRouterTopicFor(t *testing.T) {
	r := NewRouter(testTopics())

	tests := []struct {
		aggregateType string
		wantTopic     string
		wantKnown     bool
	}{
		{model.AggregateMeeting, "meeting-events", true},
		{model.AggregateMessage, "text-message-events", true},
		{model.AggregateVoiceSession, "voice-session-events", true},
		{model.AggregateAudioMessage, "raw-audio-events", true},
		{model.AggregateMeetingMedia, "media-uploaded-events", true},
		{"SomethingNew", "raw-audio-events", false},
		{"", "raw-audio-events", false},
	}
	for _, tt := range tests {
		topic, known := r.TopicFor(tt.aggregateType)
		assert.Equal(t, tt.wantTopic, topic, "aggregate %q", tt.aggregateType)
		assert.Equal(t, tt.wantKnown, known, "aggregate %q", tt.aggregateType)
	}
}

func TestKeyForPrefersChannelID(t *testing.T) {
	payload := []byte(`{"meetingId":"m1","channelId":"c1","content":"hello"}`)
	assert.Equal(t, "c1", KeyFor(payload, model.AggregateMessage))
}

func TestKeyForFallsBackToMeetingID(t *testing.T) {
	payload := []byte(`{"meetingId":"m1","title":"standup"}`)
	assert.Equal(t, "m1", KeyFor(payload, model.AggregateMeeting))
}

func TestKeyForIgnoresFieldOrderAndEscapes(t *testing.T) {
	// a channelId mentioned inside another string value must not win
	payload := []byte(`{"content":"say \"channelId\": nope","channelId":"real-channel"}`)
	assert.Equal(t, "real-channel", KeyFor(payload, model.AggregateMessage))
}

func TestKeyForSynthesizesWhenNoIDs(t *testing.T) {
	key := KeyFor([]byte(`{"foo":"bar"}`), model.AggregateMeeting)
	assert.True(t, strings.HasPrefix(key, model.AggregateMeeting+"-"))
	assert.NotEmpty(t, key)
}

func TestKeyForInvalidJSON(t *testing.T) {
	key := KeyFor([]byte(`not json at all`), "Thing")
	assert.True(t, strings.HasPrefix(key, "Thing-"))
}
