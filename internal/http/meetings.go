package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/meetpipe/meeting-gateway/internal/model"
	"github.com/meetpipe/meeting-gateway/internal/service/meeting"
)

type createMeetingReq struct {
	Title     string `json:"title"`
	Platform  string `json:"platform"` // "DISCORD" | "ZOOM"
	ChannelID string `json:"channelId"`
}

func createMeetingHandler(svc *meeting.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createMeetingReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		req.Title = strings.TrimSpace(req.Title)
		req.ChannelID = strings.TrimSpace(req.ChannelID)
		if req.Title == "" || req.ChannelID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "title and channelId required"})
		}

		platform, ok := model.ParsePlatform(req.Platform)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid platform"})
		}

		m, err := svc.CreateMeeting(c.Request().Context(), req.Title, platform, req.ChannelID)
		if err != nil {
			log.Errorf("create meeting failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusCreated, m)
	}
}

func startMeetingHandler(svc *meeting.Service) echo.HandlerFunc {
	return transitionHandler(svc.StartMeeting, "started")
}

func endMeetingHandler(svc *meeting.Service) echo.HandlerFunc {
	return transitionHandler(svc.EndMeeting, "ended")
}

func transitionHandler(transition func(ctx context.Context, id string) error, verb string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "meeting id required"})
		}

		if err := transition(c.Request().Context(), id); err != nil {
			if errors.Is(err, meeting.ErrMeetingNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "meeting not found"})
			}
			log.Errorf("meeting %s failed: %v", verb, err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"meetingId": id,
			"status":    verb,
		})
	}
}

func getMeetingHandler(svc *meeting.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		m, err := svc.GetMeeting(c.Request().Context(), id)
		if err != nil {
			log.Errorf("get meeting failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		if m == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "meeting not found"})
		}
		return c.JSON(http.StatusOK, m)
	}
}

type ingestMessageReq struct {
	MeetingID  string    `json:"meetingId"`
	ChannelID  string    `json:"channelId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	Platform   string    `json:"platform"`
	SentAt     time.Time `json:"sentAt"`
}

func ingestMessageHandler(svc *meeting.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req ingestMessageReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		req.Content = strings.TrimSpace(req.Content)
		if req.MeetingID == "" || req.ChannelID == "" || req.Content == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "meetingId, channelId and content required"})
		}

		platform, ok := model.ParsePlatform(req.Platform)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid platform"})
		}

		id, err := svc.IngestMessage(c.Request().Context(), model.Message{
			MeetingID:  req.MeetingID,
			ChannelID:  req.ChannelID,
			AuthorID:   req.AuthorID,
			AuthorName: req.AuthorName,
			Content:    req.Content,
			Platform:   platform,
			SentAt:     req.SentAt,
		})
		if err != nil {
			log.Errorf("ingest message failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusAccepted, map[string]any{
			"ingested":  true,
			"messageId": id,
		})
	}
}

type voiceSessionReq struct {
	MeetingID string     `json:"meetingId"`
	ChannelID string     `json:"channelId"`
	UserID    string     `json:"userId"`
	UserName  string     `json:"userName"`
	Platform  string     `json:"platform"`
	JoinedAt  time.Time  `json:"joinedAt"`
	LeftAt    *time.Time `json:"leftAt"`
}

func voiceSessionHandler(svc *meeting.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req voiceSessionReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		if req.MeetingID == "" || req.ChannelID == "" || req.UserID == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "meetingId, channelId and userId required"})
		}

		platform, ok := model.ParsePlatform(req.Platform)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid platform"})
		}

		id, err := svc.RecordVoiceSession(c.Request().Context(), model.VoiceSession{
			MeetingID: req.MeetingID,
			ChannelID: req.ChannelID,
			UserID:    req.UserID,
			UserName:  req.UserName,
			Platform:  platform,
			JoinedAt:  req.JoinedAt,
			LeftAt:    req.LeftAt,
		})
		if err != nil {
			log.Errorf("record voice session failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusAccepted, map[string]any{
			"recorded":  true,
			"sessionId": id,
		})
	}
}

type mediaUploadReq struct {
	MeetingID   string `json:"meetingId"`
	ChannelID   string `json:"channelId"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	Checksum    string `json:"checksum"`
	Platform    string `json:"platform"`
}

// mediaUploadHandler registers uploaded media metadata; the file bytes live
// in object storage and reach the AI stage via the media-uploaded event.
func mediaUploadHandler(svc *meeting.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req mediaUploadReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		if req.MeetingID == "" || req.FileName == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "meetingId and fileName required"})
		}
		if req.SizeBytes < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid sizeBytes"})
		}

		platform, ok := model.ParsePlatform(req.Platform)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid platform"})
		}

		id, err := svc.RegisterMediaUpload(c.Request().Context(), model.MediaAsset{
			MeetingID:   req.MeetingID,
			ChannelID:   req.ChannelID,
			FileName:    req.FileName,
			ContentType: req.ContentType,
			SizeBytes:   req.SizeBytes,
			Checksum:    req.Checksum,
			Platform:    platform,
		})
		if err != nil {
			log.Errorf("register media upload failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusAccepted, map[string]any{
			"registered": true,
			"assetId":    id,
		})
	}
}
