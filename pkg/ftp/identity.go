package ftp

// Identity is the authenticated-user snapshot carried by a Session. It is
// owned exclusively by the Session, created unauthenticated, and replaced
// (never shared) on LOGIN, REGISTER and LOGOUT.
type Identity struct {
	Authenticated bool
	Username      string
	UserID        string
}

// ActorName returns the username for audit attribution, or the "unknown"
// placeholder before authentication.
func (id Identity) ActorName() string {
	if !id.Authenticated {
		return "unknown"
	}
	return id.Username
}

// TransitionKind describes how a handler wants the Session identity changed.
type TransitionKind int

const (
	// TransitionNone leaves the identity untouched.
	TransitionNone TransitionKind = iota
	// TransitionLogin replaces the identity with Transition.Identity.
	TransitionLogin
	// TransitionLogout resets the identity to unauthenticated.
	TransitionLogout
)

// Transition is returned by command handlers instead of mutating the Session
// identity in place. The Session applies it after the handler returns, so a
// handler never observes its own transition mid-flight.
type Transition struct {
	Kind     TransitionKind
	Identity Identity
}

var noTransition = Transition{Kind: TransitionNone}

// loginAs builds a login transition for the given account.
func loginAs(username, userID string) Transition {
	return Transition{
		Kind: TransitionLogin,
		Identity: Identity{
			Authenticated: true,
			Username:      username,
			UserID:        userID,
		},
	}
}
