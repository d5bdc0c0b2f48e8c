package orch

import (
	"fmt"

	"github.com/dkeye/relay/internal/app"
	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) onAuthenticated(sess app.Session, env core.Envelope) {
	switch e := env.(type) {
	case core.AuthEnvelope:
		o.notify(sess, NoticeAlreadyAuthenticated)
	case core.MessageEnvelope:
		o.relay(sess, e.Body())
	default:
		o.notify(sess, NoticeInvalidMessageType)
	}
}

func (o *Orchestrator) relay(sess app.Session, body core.Frame) {
	res := o.Rooms.Broadcast(sess.RoomID, sess.ID, body)
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(sess.RoomID, slow) {
		case app.KickMember:
			o.kick(slow)
		case app.DropFrame:
			log.Debug().Str("module", "orch").Str("room", string(sess.RoomID)).Str("sid", string(slow)).Msg("frame dropped for slow member")
		case app.NoAction:
		}
	}
}

// kick closes the member's connection; the transport then reports the
// disconnect and membership is cleaned up on the regular path.
func (o *Orchestrator) kick(sid core.SessionID) {
	sess, ok := o.Sessions.Get(sid)
	if !ok {
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(sess.RoomID)).Msg("kicking slow member")
	sess.Conn.Close()
}

// Provision opens an empty room and returns its ID and secret.
func (o *Orchestrator) Provision() (domain.RoomID, domain.Secret, error) {
	secret, err := o.Codes.Secret()
	if err != nil {
		return "", "", fmt.Errorf("generate secret: %w", err)
	}
	id, err := o.Rooms.CreateRoomWithSecret(secret)
	if err != nil {
		return "", "", fmt.Errorf("create room: %w", err)
	}
	return id, secret, nil
}

func (o *Orchestrator) ListRooms() []core.RoomInfo {
	return o.Rooms.List()
}
