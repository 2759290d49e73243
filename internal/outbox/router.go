package outbox

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/meetpipe/meeting-gateway/internal/config"
	"github.com/meetpipe/meeting-gateway/internal/model"
)

// Router maps aggregate types to destination topics. It is total: unknown
// types fall back to the raw-audio topic and are never dropped. No state,
// no I/O; the relay owns logging around it.
type Router struct {
	topics   map[string]string
	fallback string
}

func NewRouter(t config.TopicConfig) *Router {
	return &Router{
		topics: map[string]string{
			model.AggregateAudioMessage: t.RawAudio,
			model.AggregateMeeting:      t.Meetings,
			model.AggregateVoiceSession: t.VoiceSessions,
			model.AggregateMessage:      t.TextMessages,
			model.AggregateMeetingMedia: t.MediaUploaded,
		},
		fallback: t.RawAudio,
	}
}

// TopicFor returns the destination topic and whether aggregateType was known.
func (r *Router) TopicFor(aggregateType string) (string, bool) {
	if topic, ok := r.topics[aggregateType]; ok {
		return topic, true
	}
	return r.fallback, false
}

// keyFields is the minimal view of a payload the partition key cares about.
type keyFields struct {
	ChannelID string `json:"channelId"`
	MeetingID string `json:"meetingId"`
}

// KeyFor derives the partition key from the payload: channelId wins, then
// meetingId, then a synthesized aggregateType-timestamp key so the key is
// never empty. The payload is parsed, not substring-scanned, so escaped
// quotes and field order do not matter.
func KeyFor(payload []byte, aggregateType string) string {
	var f keyFields
	if err := json.Unmarshal(payload, &f); err == nil {
		if f.ChannelID != "" {
			return f.ChannelID
		}
		if f.MeetingID != "" {
			return f.MeetingID
		}
	}
	return aggregateType + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}
