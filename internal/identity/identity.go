// Package identity implements the identity/session provider: a custom
// challenge handshake in which the user's real credential is a federated
// JWT, not a password. Passwords presented at sign-in are placeholders and
// never authenticate by themselves.
package identity

import "context"

// Status is the coarse authentication state consumed by the UI layer.
type Status int

const (
	StatusSignedOut Status = iota
	StatusSignedIn
	StatusSessionExpired
)

func (s Status) String() string {
	switch s {
	case StatusSignedIn:
		return "signedIn"
	case StatusSessionExpired:
		return "sessionExpired"
	default:
		return "signedOut"
	}
}

// NextStep tells the caller what the sign-in flow expects next.
type NextStep int

const (
	// NextStepDone means the flow completed and a session exists.
	NextStepDone NextStep = iota
	// NextStepCustomChallenge means the caller must answer a custom
	// challenge, typically by presenting a federated identity token.
	NextStepCustomChallenge
)

// SignInResult describes the outcome of a sign-in or challenge step.
type SignInResult struct {
	SignedIn  bool
	NextStep  NextStep
	Challenge string // human-readable challenge prompt, when one is pending
}

// Session is the current authentication state plus, when signed in, the
// stable owner identifier every query and write is scoped to.
type Session struct {
	Status Status
	Owner  string
}

// Attributes are the profile attributes captured at sign-up.
type Attributes struct {
	Email      string
	GivenName  string
	FamilyName string
}

// Provider is the identity/session collaborator consumed by the sync
// gateway. The gateway is its only caller.
type Provider interface {
	// FetchSession reports the current authentication state.
	FetchSession(ctx context.Context) (Session, error)

	// SignIn starts the authentication flow for username. The password is a
	// placeholder; the provider answers with a custom challenge. An unknown
	// username yields common.ErrorUserNotFound.
	SignIn(ctx context.Context, username, password string) (SignInResult, error)

	// ConfirmChallenge presents the challenge answer (the federated token)
	// and, on success, establishes a session.
	ConfirmChallenge(ctx context.Context, answer string) (SignInResult, error)

	// SignUp provisions a user with an unguessable placeholder secret and
	// the given attributes. The account is auto-confirmed.
	SignUp(ctx context.Context, username, password string, attrs Attributes) error

	// SignOut invalidates the session. Idempotent; global tears down every
	// device session server-side.
	SignOut(ctx context.Context, global bool) error

	// Subscribe returns a channel of status-change events plus a cancel
	// function that stops delivery without touching the remote session.
	Subscribe() (<-chan Status, func())
}
