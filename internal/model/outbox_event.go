package model

import "time"

// Aggregate type tags carried by outbox events.
const (
	AggregateMeeting      = "Meeting"
	AggregateMessage      = "Message"
	AggregateVoiceSession = "VoiceSession"
	AggregateAudioMessage = "AudioMessage"
	AggregateMeetingMedia = "MeetingMedia"
)

// Event type tags.
const (
	EventCreated = "Created"
	EventUpdated = "Updated"
	EventStarted = "Started"
	EventEnded   = "Ended"
)

// OutboxEvent is a row in the outbox table. It is written in the same
// transaction as the business change it describes and relayed to Kafka
// afterwards. The relay only ever flips Processed; payload stays opaque to it.
type OutboxEvent struct {
	ID            int64     `db:"id"`
	AggregateType string    `db:"aggregate_type"` // e.g. "Meeting"
	AggregateID   string    `db:"aggregate_id"`
	EventType     string    `db:"event_type"` // Created|Updated|Started|Ended
	Payload       []byte    `db:"payload"`
	CreatedAt     time.Time `db:"created_at"`
	Processed     bool      `db:"processed"`
}
