package model

import "time"

// Processed results arrive from the AI stage on the processed-* topics.
// Field names mirror the wire format; optional fields may be absent and
// consumers must tolerate partially populated records.

type ProcessedSummary struct {
	MeetingID        string     `json:"meetingId"`
	ChannelID        string     `json:"channelId"`
	Platform         string     `json:"platform"`
	Title            string     `json:"title"`
	Summary          string     `json:"summary"`
	KeyPoints        []string   `json:"keyPoints"`
	Decisions        []string   `json:"decisions"`
	Participants     []string   `json:"participants"`
	MeetingStartTime *time.Time `json:"meetingStartTime,omitempty"`
	MeetingEndTime   *time.Time `json:"meetingEndTime,omitempty"`
	ProcessedTime    time.Time  `json:"processedTime"`
}

type TranscriptionSegment struct {
	SpeakerName string  `json:"speakerName"`
	SpeakerID   string  `json:"speakerId"`
	Text        string  `json:"text"`
	StartTimeMs int64   `json:"startTimeMs"`
	EndTimeMs   int64   `json:"endTimeMs"`
	Confidence  float64 `json:"confidence"`
}

type ProcessedTranscription struct {
	MeetingID         string                 `json:"meetingId"`
	ChannelID         string                 `json:"channelId"`
	Platform          string                 `json:"platform"`
	FullTranscription string                 `json:"fullTranscription"`
	Segments          []TranscriptionSegment `json:"segments"`
	Language          string                 `json:"language"`
	Confidence        float64                `json:"confidence"`
	DurationSeconds   int64                  `json:"durationSeconds"`
	ProcessedTime     time.Time              `json:"processedTime"`
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskCancelled  TaskStatus = "CANCELLED"
)

type ActionItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Assignee    string       `json:"assignee"`
	AssigneeID  string       `json:"assigneeId"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	SourceText  string       `json:"sourceText"`
}

type ProcessedActionItems struct {
	MeetingID     string       `json:"meetingId"`
	ChannelID     string       `json:"channelId"`
	Platform      string       `json:"platform"`
	ActionItems   []ActionItem `json:"actionItems"`
	ProcessedTime time.Time    `json:"processedTime"`
}
