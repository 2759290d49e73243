package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetpipe/meeting-gateway/internal/config"
	"github.com/meetpipe/meeting-gateway/internal/metrics"
)

// Inbound message types.
const (
	typeSubscribe   = "SUBSCRIBE_MEETING"
	typeUnsubscribe = "UNSUBSCRIBE_MEETING"
	typePing        = "PING"
)

type inbound struct {
	Type      string `json:"type"`
	MeetingID string `json:"meetingId"`
}

type control struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Handler upgrades HTTP requests to websocket connections and runs the
// per-connection read loop: SUBSCRIBE_MEETING / UNSUBSCRIBE_MEETING / PING in,
// CONNECTED / SUBSCRIBED / UNSUBSCRIBED / PONG / ERROR out.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewHandler(hub *Hub, cfg config.WebSocketConfig, log *zap.Logger) *Handler {
	rb := cfg.ReadBufferSize
	if rb <= 0 {
		rb = 1024
	}
	wb := cfg.WriteBufferSize
	if wb <= 0 {
		wb = 1024
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  rb,
			WriteBufferSize: wb,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log,
	}
}

func (h *Handler) Handle(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Error(err))
		return err
	}

	sess := NewSession(conn)
	h.hub.AddSession(sess)
	metrics.WSConnections.Inc()
	h.log.Info("websocket connected", zap.String("session_id", sess.ID()))

	defer func() {
		h.hub.RemoveSession(sess)
		metrics.WSConnections.Dec()
		_ = conn.Close()
		h.log.Info("websocket disconnected", zap.String("session_id", sess.ID()))
	}()

	h.sendControl(sess, "CONNECTED", "Connection established. Session: "+sess.ID())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket read error", zap.String("session_id", sess.ID()), zap.Error(err))
			}
			return nil
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendControl(sess, "ERROR", "invalid message")
			continue
		}

		switch msg.Type {
		case typeSubscribe:
			if msg.MeetingID == "" {
				h.sendControl(sess, "ERROR", "meetingId required")
				continue
			}
			h.hub.Subscribe(sess, msg.MeetingID)
			h.sendControl(sess, "SUBSCRIBED", "Subscribed to meeting: "+msg.MeetingID)
			h.log.Debug("meeting subscribed",
				zap.String("session_id", sess.ID()),
				zap.String("meeting_id", msg.MeetingID),
			)
		case typeUnsubscribe:
			h.hub.Unsubscribe(sess, msg.MeetingID)
			h.sendControl(sess, "UNSUBSCRIBED", "Subscription cancelled: "+msg.MeetingID)
		case typePing:
			h.sendControl(sess, "PONG", "")
		default:
			h.sendControl(sess, "ERROR", "Unknown message type: "+msg.Type)
			h.log.Warn("unknown websocket message type",
				zap.String("session_id", sess.ID()),
				zap.String("type", msg.Type),
			)
		}
	}
}

func (h *Handler) sendControl(sess *Session, typ, message string) {
	data, err := json.Marshal(control{
		Type:      typ,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	if err := sess.Send(data); err != nil {
		h.log.Debug("control send failed",
			zap.String("session_id", sess.ID()),
			zap.String("type", typ),
			zap.Error(err),
		)
	}
}
