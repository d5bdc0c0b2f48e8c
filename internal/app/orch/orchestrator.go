package orch

import (
	"github.com/dkeye/relay/internal/app"
	"github.com/dkeye/relay/internal/core"
	"github.com/rs/zerolog/log"
)

// Notices sent back to the connection that caused them.
const (
	NoticeInvalidJSON          = "invalid JSON format"
	NoticeAuthenticateFirst    = "first authenticate the socket"
	NoticeRoomExpired          = "room expired"
	NoticeIncorrectCredentials = "incorrect credentials"
	NoticeAlreadyAuthenticated = "already authenticated"
	NoticeInvalidMessageType   = "invalid message type"
)

// Orchestrator drives every connection through the auth handshake and
// relays messages between members of the same room.
// Events of a single session must be delivered sequentially.
type Orchestrator struct {
	Sessions    *app.SessionRegistry
	Rooms       *app.RoomRegistry
	Credentials *app.CredentialStore
	Codes       app.CodeGenerator
	Policy      app.Policy
}

func New(codes app.CodeGenerator, policy app.Policy, maxIDAttempts int) *Orchestrator {
	creds := app.NewCredentialStore()
	return &Orchestrator{
		Sessions:    app.NewSessionRegistry(),
		Rooms:       app.NewRoomRegistry(creds, codes, maxIDAttempts),
		Credentials: creds,
		Codes:       codes,
		Policy:      policy,
	}
}

func (o *Orchestrator) Connect(sid core.SessionID, conn core.SignalConnection) {
	o.Sessions.Bind(sid, conn)
}

func (o *Orchestrator) OnFrame(sid core.SessionID, data core.Frame) {
	sess, ok := o.Sessions.Get(sid)
	if !ok {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("frame for unknown session")
		return
	}
	env := core.DecodeEnvelope(data)
	if m, ok := env.(core.MalformedEnvelope); ok {
		log.Debug().Err(m.Err).Str("module", "orch").Str("sid", string(sid)).Msg("malformed envelope")
		o.notify(sess, NoticeInvalidJSON)
		return
	}
	switch sess.State {
	case app.StateUnauthenticated:
		o.onUnauthenticated(sess, env)
	case app.StateAuthenticated:
		o.onAuthenticated(sess, env)
	}
}

// OnDisconnect is valid from any state. An authenticated session leaves its
// room; draining the room tears it down.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	sess, ok := o.Sessions.Unbind(sid)
	if !ok || sess.State != app.StateAuthenticated {
		return
	}
	if o.Rooms.RemoveMember(sess.RoomID, sid) {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(sess.RoomID)).Msg("last member left")
	}
}

func (o *Orchestrator) notify(sess app.Session, notice string) {
	if err := sess.Conn.TrySend(core.Frame(notice)); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sess.ID)).Str("notice", notice).Msg("notice not delivered")
	}
}
