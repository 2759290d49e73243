package notify

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/meetpipe/meeting-gateway/internal/metrics"
	"github.com/meetpipe/meeting-gateway/internal/model"
	"github.com/meetpipe/meeting-gateway/internal/ws"
)

// Outbound notification types.
const (
	TypeNewSummary       = "NEW_SUMMARY"
	TypeNewTranscription = "NEW_TRANSCRIPTION"
	TypeNewActionItems   = "NEW_ACTION_ITEMS"
)

type envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// Notifier pushes processed results to live websocket sessions: a targeted
// send to the meeting's subscribers plus, when broadcastAll is set, a global
// broadcast for dashboards watching everything. A dead connection only loses
// its own copy; delivery to the rest continues.
type Notifier struct {
	hub          *ws.Hub
	broadcastAll bool
	log          *zap.Logger
}

func NewNotifier(hub *ws.Hub, broadcastAll bool, log *zap.Logger) *Notifier {
	return &Notifier{hub: hub, broadcastAll: broadcastAll, log: log}
}

func (n *Notifier) NotifySummary(v model.ProcessedSummary) {
	n.notify(TypeNewSummary, v.MeetingID, v)
}

func (n *Notifier) NotifyTranscription(v model.ProcessedTranscription) {
	n.notify(TypeNewTranscription, v.MeetingID, v)
}

func (n *Notifier) NotifyActionItems(v model.ProcessedActionItems) {
	n.notify(TypeNewActionItems, v.MeetingID, v)
}

func (n *Notifier) notify(typ, meetingID string, data any) {
	msg, err := json.Marshal(envelope{
		Type:      typ,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		n.log.Error("notification encode failed", zap.String("type", typ), zap.Error(err))
		return
	}

	subscribers := n.hub.SubscribersOf(meetingID)
	for _, sess := range subscribers {
		n.send(sess, typ, "targeted", msg)
	}

	if n.broadcastAll {
		for _, sess := range n.hub.Sessions() {
			n.send(sess, typ, "broadcast", msg)
		}
	}

	n.log.Debug("notification sent",
		zap.String("type", typ),
		zap.String("meeting_id", meetingID),
		zap.Int("subscribers", len(subscribers)),
	)
}

func (n *Notifier) send(sess *ws.Session, typ, path string, msg []byte) {
	if err := sess.Send(msg); err != nil {
		n.log.Warn("notification send failed",
			zap.String("session_id", sess.ID()),
			zap.String("type", typ),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsTotal.WithLabelValues(typ, path).Inc()
}
