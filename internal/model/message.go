package model

import "time"

// Message is a captured chat/text message persisted in the messages table.
// The JSON form is the outbox payload relayed to the text-message topic.
type Message struct {
	ID         string    `db:"id" json:"messageId"`
	MeetingID  string    `db:"meeting_id" json:"meetingId"`
	ChannelID  string    `db:"channel_id" json:"channelId"`
	AuthorID   string    `db:"author_id" json:"authorId"`
	AuthorName string    `db:"author_name" json:"authorName"`
	Content    string    `db:"content" json:"content"`
	Platform   Platform  `db:"platform" json:"platform"`
	SentAt     time.Time `db:"sent_at" json:"sentAt"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
}

// VoiceSession tracks one user's presence in a voice channel during a meeting.
type VoiceSession struct {
	ID        string     `db:"id" json:"sessionId"`
	MeetingID string     `db:"meeting_id" json:"meetingId"`
	ChannelID string     `db:"channel_id" json:"channelId"`
	UserID    string     `db:"user_id" json:"userId"`
	UserName  string     `db:"user_name" json:"userName"`
	Platform  Platform   `db:"platform" json:"platform"`
	JoinedAt  time.Time  `db:"joined_at" json:"joinedAt"`
	LeftAt    *time.Time `db:"left_at" json:"leftAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"-"`
}

// MediaAsset is an uploaded media file registered for AI processing.
// Only metadata is stored here; bytes live in object storage outside this service.
type MediaAsset struct {
	ID          string    `db:"id" json:"assetId"`
	MeetingID   string    `db:"meeting_id" json:"meetingId"`
	ChannelID   string    `db:"channel_id" json:"channelId"`
	FileName    string    `db:"file_name" json:"fileName"`
	ContentType string    `db:"content_type" json:"contentType"`
	SizeBytes   int64     `db:"size_bytes" json:"sizeBytes"`
	Checksum    string    `db:"checksum" json:"checksum"`
	Platform    Platform  `db:"platform" json:"platform"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploadedAt"`
}
