package orch

import (
	"errors"

	"github.com/dkeye/relay/internal/app"
	"github.com/dkeye/relay/internal/core"
	"github.com/dkeye/relay/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) onUnauthenticated(sess app.Session, env core.Envelope) {
	auth, ok := env.(core.AuthEnvelope)
	if !ok {
		o.notify(sess, NoticeAuthenticateFirst)
		return
	}
	o.authenticate(sess, auth)
}

func (o *Orchestrator) authenticate(sess app.Session, auth core.AuthEnvelope) {
	if !o.Rooms.RoomExists(auth.RoomID) {
		o.rejectAuth(sess, auth, NoticeRoomExpired)
		return
	}
	if !o.Credentials.Verify(auth.RoomID, auth.Code) {
		o.rejectAuth(sess, auth, NoticeIncorrectCredentials)
		return
	}
	if err := o.Rooms.AddMember(auth.RoomID, sess.ID, sess.Conn); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			o.rejectAuth(sess, auth, NoticeRoomExpired)
			return
		}
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sess.ID)).Msg("add member")
		return
	}
	o.Sessions.Authenticate(sess.ID, auth.RoomID, auth.Code)
}

func (o *Orchestrator) rejectAuth(sess app.Session, auth core.AuthEnvelope, notice string) {
	log.Debug().Str("module", "orch").Str("sid", string(sess.ID)).Str("room", string(auth.RoomID)).Str("reason", notice).Msg("auth rejected")
	o.notify(sess, notice)
}
