package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/memoriesapp/memories/internal/common"
	"github.com/memoriesapp/memories/internal/identity"
)

// placeholderPassword is presented on the first sign-in step. It is never a
// real credential: the provider always demands the custom challenge.
const placeholderPassword = "dummy password"

// placeholderSecretLength sizes the random sign-up secret. The real
// credential is the federated token, never this password.
const placeholderSecretLength = 64

// AuthStatus reports the current session state. A transport failure is
// surfaced as an error so callers can log the distinction, even when they
// choose to treat it as signed-out for display purposes.
func (g *Gateway) AuthStatus(ctx context.Context) (identity.Status, error) {
	session, err := g.provider.FetchSession(ctx)
	if err != nil {
		return identity.StatusSignedOut, fmt.Errorf("fetching session: %w", err)
	}
	return session.Status, nil
}

// AuthStatusStream yields auth status changes until ctx is cancelled or the
// underlying subscription is torn down. Cancellation detaches the listener
// without touching the remote session; teardown is logged, not retried.
func (g *Gateway) AuthStatusStream(ctx context.Context) <-chan identity.Status {
	events, cancel := g.provider.Subscribe()
	out := make(chan identity.Status)

	go func() {
		defer close(out)
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case status, ok := <-events:
				if !ok {
					g.log.Error(ctx, "auth status stream terminated")
					return
				}
				select {
				case out <- status:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// SignIn exchanges a federated identity assertion for a session. The
// choreography follows the provider's custom challenge flow; when the user
// does not exist yet, the gateway provisions it and retries the sign-in
// exactly once. Any failure beyond that single retry is surfaced.
func (g *Gateway) SignIn(ctx context.Context, id Identity) error {
	if id.Token == "" {
		return fmt.Errorf("%w: identity has no federated token", common.ErrorUnauthorized)
	}

	provisioned := false

	backoff := retry.WithMaxRetries(1, retry.NewConstant(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := g.attemptSignIn(ctx, id)
		if err == nil {
			return nil
		}

		// First unknown-user failure: provision the account, then retry
		// the sign-in once. A sign-up failure is fatal immediately.
		if errors.Is(err, common.ErrorUserNotFound) && !provisioned {
			provisioned = true
			g.log.Info(ctx, "user not found, provisioning", "user", id.UserID)
			if signUpErr := g.signUp(ctx, id); signUpErr != nil {
				return signUpErr
			}
			return retry.RetryableError(err)
		}

		return err
	})
	if err != nil {
		g.log.Error(ctx, "sign-in failed", "user", id.UserID, "err", err)
		return fmt.Errorf("sign-in: %w", err)
	}

	g.log.Debug(ctx, "sign-in complete", "user", id.UserID)
	return nil
}

// attemptSignIn runs one pass of the challenge handshake.
func (g *Gateway) attemptSignIn(ctx context.Context, id Identity) error {
	result, err := g.provider.SignIn(ctx, id.UserID, placeholderPassword)
	if err != nil {
		return err
	}

	if result.SignedIn {
		// a placeholder password must never authenticate by itself
		return fmt.Errorf("%w: signed in without presenting a token", common.ErrorInvariant)
	}
	if result.NextStep != identity.NextStepCustomChallenge {
		return fmt.Errorf("%w: unexpected next step in sign-in flow", common.ErrorInvariant)
	}

	provider := id.Provider
	if provider == "" {
		provider = "Apple"
	}
	confirmed, err := g.provider.ConfirmChallenge(ctx, provider+":::"+id.Token)
	if err != nil {
		return err
	}
	if !confirmed.SignedIn {
		return fmt.Errorf("%w: challenge confirmed but no session established", common.ErrorUnauthorized)
	}

	return nil
}

func (g *Gateway) signUp(ctx context.Context, id Identity) error {
	secret, err := common.MakeRandPassword(placeholderSecretLength)
	if err != nil {
		return fmt.Errorf("%w: generating placeholder secret: %v", common.ErrorInternal, err)
	}

	attrs := identity.Attributes{
		Email:      id.Email,
		GivenName:  id.GivenName,
		FamilyName: id.FamilyName,
	}
	return g.provider.SignUp(ctx, id.UserID, secret, attrs)
}

// SignOut invalidates the session globally. Fire-and-forget: failures are
// logged, never propagated, and repeating the call is harmless.
func (g *Gateway) SignOut(ctx context.Context) {
	if err := g.provider.SignOut(ctx, true); err != nil {
		g.log.Error(ctx, "sign-out failed", "err", err)
		return
	}
	g.log.Debug(ctx, "signed out")
}

// sessionOwner returns the owner identifier of the active session. Every
// query and write is scoped by this value; a caller-supplied owner is never
// trusted for authorization.
func (g *Gateway) sessionOwner(ctx context.Context) (string, error) {
	session, err := g.provider.FetchSession(ctx)
	if err != nil {
		return "", fmt.Errorf("fetching session: %w", err)
	}

	switch session.Status {
	case identity.StatusSignedIn:
		return session.Owner, nil
	case identity.StatusSessionExpired:
		return "", common.ErrorSessionExpired
	default:
		return "", common.ErrorUnauthorized
	}
}
