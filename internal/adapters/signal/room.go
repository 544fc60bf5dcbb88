package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Chatter/internal/domain"
)

func (ctl *Controller) handleJoinRoom(id domain.ConnID, data []byte) {
	type joinPayload struct {
		Type     string `json:"type"`
		Username string `json:"username"`
		RoomName string `json:"roomName"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	if p.Username == "" || p.RoomName == "" {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("join_room missing username or roomName, dropped")
		return
	}

	log.Info().Str("module", "signal").Str("conn", string(id)).Str("user", p.Username).Str("room", p.RoomName).Msg("join_room")
	ctl.Coord.JoinRoom(id, p.Username, domain.RoomName(p.RoomName))
}
