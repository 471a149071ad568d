package ftp

import (
	"context"

	"github.com/gusamyky/ftpfs/internal/logger"
)

// handlerFunc executes one parsed command against a session. Handlers write
// their own response lines and audit events; a returned error is a transport
// failure and terminates the session. Identity changes are requested through
// the returned Transition rather than applied in place.
type handlerFunc func(ctx context.Context, s *Session, args string) (Transition, error)

type command struct {
	handle       handlerFunc
	requiresAuth bool
}

// commandTable maps verbs to handlers. Built once; dispatch re-reads the
// session identity on every line because LOGIN, REGISTER and LOGOUT change it.
var commandTable = map[string]command{
	VerbLogin:    {handle: handleLogin},
	VerbRegister: {handle: handleRegister},
	VerbLogout:   {handle: handleLogout, requiresAuth: true},
	VerbUpload:   {handle: handleUpload, requiresAuth: true},
	VerbDownload: {handle: handleDownload, requiresAuth: true},
	VerbList:     {handle: handleList, requiresAuth: true},
	VerbHistory:  {handle: handleHistory, requiresAuth: true},
	VerbReport:   {handle: handleReport, requiresAuth: true},
	VerbEcho:     {handle: handleEcho},
}

// dispatch parses one non-blank line, enforces login gating, runs the
// handler, and applies any identity transition it returns.
func (s *Session) dispatch(ctx context.Context, line string) error {
	verb, args := parseCommand(line)

	cmd, ok := commandTable[verb]
	if !ok {
		return s.sendLine("Unknown command: " + verb)
	}

	logger.Debug("command received",
		logger.KeyAddress, s.remote,
		logger.KeyUser, s.identity.ActorName(),
		logger.KeyVerb, verb)

	if cmd.requiresAuth && !s.identity.Authenticated {
		return s.failCommand(ctx, verb, ReasonNotLoggedIn, "Not logged in")
	}

	transition, err := cmd.handle(ctx, s, args)
	if err != nil {
		return err
	}

	switch transition.Kind {
	case TransitionLogin:
		s.identity = transition.Identity
	case TransitionLogout:
		s.identity = Identity{}
	}
	return nil
}
