package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/memoriesapp/memories/internal/common"
	"github.com/memoriesapp/memories/internal/logging"
	"github.com/memoriesapp/memories/internal/server/models"
	"github.com/memoriesapp/memories/internal/server/repositories/users"
)

// PoolOptions configure a Pool.
type PoolOptions struct {
	// SessionSecret signs the HS256 session tokens.
	SessionSecret []byte
	// SessionValidity bounds the lifetime of a session token.
	SessionValidity time.Duration
	// Providers is the accepted set of federated token issuers ("apple").
	Providers []string
	// IdentityKeys resolves the verification key for federated tokens,
	// typically from the provider's published key set.
	IdentityKeys jwt.Keyfunc
}

// Pool is the Provider implementation backed by the users repository. It
// models a user pool with a custom authentication flow: a sign-in attempt
// never succeeds on the placeholder password; it opens a challenge whose
// answer is a federated identity token.
//
// A Pool holds one logical session, matching the single signed-in user the
// application supports. All methods are safe for concurrent use.
type Pool struct {
	users users.Repository
	hub   *Hub
	log   logging.Logger
	opts  PoolOptions

	mu           sync.Mutex
	sessionToken string
	pendingUser  string
}

func NewPool(repo users.Repository, log logging.Logger, opts PoolOptions) *Pool {
	return &Pool{
		users: repo,
		hub:   NewHub(),
		log:   log.With("component", "identity"),
		opts:  opts,
	}
}

// FetchSession inspects the stored session token. No token means signed out;
// an expired token is reported (and published) as a session expiry.
func (p *Pool) FetchSession(ctx context.Context) (Session, error) {
	p.mu.Lock()
	token := p.sessionToken
	p.mu.Unlock()

	if token == "" {
		return Session{Status: StatusSignedOut}, nil
	}

	username, err := ParseSessionToken(token, p.opts.SessionSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			p.log.Info(ctx, "session expired")
			p.hub.Publish(StatusSessionExpired)
			return Session{Status: StatusSessionExpired}, nil
		}
		return Session{}, fmt.Errorf("%w: session token rejected", common.ErrorInvariant)
	}

	return Session{Status: StatusSignedIn, Owner: username}, nil
}

// SignIn starts the flow for username. The placeholder password is
// discarded: authentication always proceeds through the custom challenge.
func (p *Pool) SignIn(ctx context.Context, username, password string) (SignInResult, error) {
	_ = password // placeholder credential, never checked

	_, err := p.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			p.log.Info(ctx, "sign-in for unknown user", "username", username)
			return SignInResult{}, fmt.Errorf("sign-in %s: %w", username, common.ErrorUserNotFound)
		}
		return SignInResult{}, fmt.Errorf("%w: user lookup: %v", common.ErrorTransport, err)
	}

	p.mu.Lock()
	p.pendingUser = username
	p.mu.Unlock()

	p.log.Debug(ctx, "custom challenge opened", "username", username)
	return SignInResult{
		SignedIn:  false,
		NextStep:  NextStepCustomChallenge,
		Challenge: ChallengePrompt,
	}, nil
}

// ConfirmChallenge verifies the federated token presented as the challenge
// answer and, on success, establishes the session and publishes the change.
func (p *Pool) ConfirmChallenge(ctx context.Context, answer string) (SignInResult, error) {
	p.mu.Lock()
	pending := p.pendingUser
	p.mu.Unlock()

	if pending == "" {
		return SignInResult{}, fmt.Errorf("%w: no challenge pending", common.ErrorInvariant)
	}

	subject, err := verifyChallengeAnswer(answer, p.opts.Providers, p.opts.IdentityKeys)
	if err != nil {
		p.log.Warn(ctx, "challenge answer rejected", "username", pending, "err", err)
		return SignInResult{}, err
	}
	if subject != pending {
		return SignInResult{}, fmt.Errorf("%w: token subject does not match the challenged user", common.ErrorUnauthorized)
	}

	token, err := GenerateSessionToken(pending, p.opts.SessionSecret, p.opts.SessionValidity)
	if err != nil {
		return SignInResult{}, fmt.Errorf("%w: minting session token: %v", common.ErrorInternal, err)
	}

	p.mu.Lock()
	p.sessionToken = token
	p.pendingUser = ""
	p.mu.Unlock()

	p.log.Info(ctx, "user signed in", "username", pending)
	p.hub.Publish(StatusSignedIn)
	return SignInResult{SignedIn: true, NextStep: NextStepDone}, nil
}

// SignUp provisions the user with the given attributes. Accounts are
// auto-confirmed; the placeholder password is not stored because the only
// credential ever honored is the federated token.
func (p *Pool) SignUp(ctx context.Context, username, password string, attrs Attributes) error {
	if password == "" {
		return fmt.Errorf("%w: sign-up requires a placeholder password", common.ErrorUnauthorized)
	}

	user := &models.User{
		Username:   username,
		Email:      attrs.Email,
		GivenName:  attrs.GivenName,
		FamilyName: attrs.FamilyName,
	}
	if _, err := p.users.Create(ctx, user); err != nil {
		return fmt.Errorf("%w: creating user %s: %v", common.ErrorTransport, username, err)
	}

	p.log.Info(ctx, "user signed up", "username", username)
	return nil
}

// SignOut drops the session and publishes the change. Idempotent.
func (p *Pool) SignOut(ctx context.Context, global bool) error {
	p.mu.Lock()
	hadSession := p.sessionToken != ""
	p.sessionToken = ""
	p.pendingUser = ""
	p.mu.Unlock()

	if hadSession {
		p.log.Info(ctx, "user signed out", "global", global)
	}
	p.hub.Publish(StatusSignedOut)
	return nil
}

// Subscribe exposes the hub to stream consumers.
func (p *Pool) Subscribe() (<-chan Status, func()) {
	return p.hub.Subscribe()
}

// Close tears down the event hub. Used at application shutdown.
func (p *Pool) Close() {
	p.hub.Close()
}
