package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chatter/internal/domain"
)

func (ctl *Controller) handleSendMessage(id domain.ConnID, data []byte) {
	type sendPayload struct {
		Type       string  `json:"type"`
		RoomName   string  `json:"roomName"`
		Content    *string `json:"content"`
		SenderName string  `json:"senderName"`
	}
	var p sendPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad send payload")
		return
	}
	// Content must be present; empty content is legal and stored as-is.
	if p.RoomName == "" || p.SenderName == "" || p.Content == nil {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("send_message_to_room missing field, dropped")
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(p.SenderName) {
		log.Warn().Str("module", "signal").Str("sender", p.SenderName).Msg("send rate exceeded, dropped")
		return
	}

	ctl.Coord.SendMessage(id, domain.RoomName(p.RoomName), p.SenderName, *p.Content)
}
