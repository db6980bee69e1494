package services

import (
	"log/slog"

	pubnub "github.com/pubnub/go"

	"ticket-checker/models"
)

// NotifyService mirrors gate activity onto a PubNub channel so a door
// dashboard can watch approvals in realtime. A nil PubNub client turns
// every publish into a no-op.
type NotifyService struct {
	pubnub  *pubnub.PubNub
	channel string
}

func NewNotifyService(pn *pubnub.PubNub, channel string) *NotifyService {
	return &NotifyService{
		pubnub:  pn,
		channel: channel,
	}
}

// PublishVerdict announces the outcome of one scan.
func (s *NotifyService) PublishVerdict(deviceID string, verdict *models.Verdict) {
	if s.pubnub == nil {
		return
	}

	msg := map[string]any{
		"type":      "scan_verdict",
		"device_id": deviceID,
		"verdict":   string(verdict.Kind),
	}
	if verdict.Ticket != nil {
		msg["id_detalle"] = verdict.Ticket.IDDetalle
		msg["no_documento"] = verdict.Ticket.NoDocumento
	}

	s.pubnub.Publish().
		Channel(s.channel).
		Message(msg).
		Execute()

	slog.Debug("notify: verdict published", "deviceID", deviceID, "verdict", verdict.Kind)
}

// PublishStatusUpdate announces a completed approve/reject transition.
func (s *NotifyService) PublishStatusUpdate(deviceID string, result *models.UpdateResult) {
	if s.pubnub == nil {
		return
	}

	s.pubnub.Publish().
		Channel(s.channel).
		Message(map[string]any{
			"type":      "status_update",
			"device_id": deviceID,
			"status":    result.Status,
		}).
		Execute()
}
