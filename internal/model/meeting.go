package model

import (
	"strings"
	"time"
)

type Platform string

const (
	PlatformDiscord Platform = "DISCORD"
	PlatformZoom    Platform = "ZOOM"
)

func (p Platform) String() string { return string(p) }

// ParsePlatform normalizes input; empty => discord.
// Returns (value, true) if valid; otherwise (discord, false).
func ParsePlatform(s string) (Platform, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "DISCORD":
		return PlatformDiscord, true
	case "ZOOM":
		return PlatformZoom, true
	default:
		return PlatformDiscord, false
	}
}

func (p Platform) Valid() bool {
	return p == PlatformDiscord || p == PlatformZoom
}

type MeetingStatus string

const (
	MeetingCreated MeetingStatus = "created"
	MeetingActive  MeetingStatus = "active"
	MeetingEnded   MeetingStatus = "ended"
)

func (s MeetingStatus) String() string { return string(s) }

func (s MeetingStatus) Valid() bool {
	return s == MeetingCreated || s == MeetingActive || s == MeetingEnded
}

// Meeting is the DB entity persisted in the meetings table.
type Meeting struct {
	ID        string        `db:"id" json:"meetingId"`
	Title     string        `db:"title" json:"title"`
	Platform  Platform      `db:"platform" json:"platform"`
	ChannelID string        `db:"channel_id" json:"channelId"`
	Status    MeetingStatus `db:"status" json:"status"`
	StartedAt *time.Time    `db:"started_at" json:"startedAt,omitempty"`
	EndedAt   *time.Time    `db:"ended_at" json:"endedAt,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}
