package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/memoriesapp/memories/internal/common"
	"github.com/memoriesapp/memories/internal/identity"
	"github.com/memoriesapp/memories/internal/logging"
	"github.com/memoriesapp/memories/internal/memory"
)

// --- shared fakes ---

type fakeProvider struct {
	mu sync.Mutex

	session    identity.Session
	sessionErr error

	signInCalls  int
	signUpCalls  int
	confirmCalls int
	answers      []string

	// users known to the provider; SignIn fails with ErrorUserNotFound for
	// anyone else
	knownUsers map[string]bool
	// when set, SignUp does not actually register the user
	signUpBroken bool
	signUpErr    error

	// scripted misbehavior for the handshake invariants
	signInImmediate bool // SignIn reports a session without a challenge
	confirmDenied   bool // ConfirmChallenge accepts but establishes nothing

	hub *identity.Hub
}

func newFakeProvider(knownUsers ...string) *fakeProvider {
	p := &fakeProvider{knownUsers: make(map[string]bool), hub: identity.NewHub()}
	for _, u := range knownUsers {
		p.knownUsers[u] = true
	}
	return p
}

func (p *fakeProvider) FetchSession(ctx context.Context) (identity.Session, error) {
	return p.session, p.sessionErr
}

func (p *fakeProvider) SignIn(ctx context.Context, username, password string) (identity.SignInResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signInCalls++
	if !p.knownUsers[username] {
		return identity.SignInResult{}, common.ErrorUserNotFound
	}
	if p.signInImmediate {
		return identity.SignInResult{SignedIn: true, NextStep: identity.NextStepDone}, nil
	}
	return identity.SignInResult{NextStep: identity.NextStepCustomChallenge, Challenge: identity.ChallengePrompt}, nil
}

func (p *fakeProvider) ConfirmChallenge(ctx context.Context, answer string) (identity.SignInResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmCalls++
	p.answers = append(p.answers, answer)
	if p.confirmDenied {
		return identity.SignInResult{NextStep: identity.NextStepDone}, nil
	}
	return identity.SignInResult{SignedIn: true, NextStep: identity.NextStepDone}, nil
}

func (p *fakeProvider) SignUp(ctx context.Context, username, password string, attrs identity.Attributes) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signUpCalls++
	if p.signUpErr != nil {
		return p.signUpErr
	}
	if !p.signUpBroken {
		p.knownUsers[username] = true
	}
	return nil
}

func (p *fakeProvider) SignOut(ctx context.Context, global bool) error {
	p.session = identity.Session{Status: identity.StatusSignedOut}
	p.hub.Publish(identity.StatusSignedOut)
	return nil
}

func (p *fakeProvider) Subscribe() (<-chan identity.Status, func()) {
	return p.hub.Subscribe()
}

type fakeStore struct {
	records   map[string][]memory.Record // keyed by owner
	queryErr  error
	createErr error
	updateErr error

	created []memory.Record
	updated []memory.Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string][]memory.Record)}
}

func (s *fakeStore) add(rec memory.Record) {
	s.records[rec.Owner] = append(s.records[rec.Owner], rec)
}

func (s *fakeStore) QueryToday(ctx context.Context, owner, monthDay string) ([]memory.Record, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var result []memory.Record
	for _, rec := range s.records[owner] {
		if len(rec.Moment) == 14 && rec.Moment[4:8] == monthDay {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (s *fakeStore) Create(ctx context.Context, rec memory.Record) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, rec)
	s.add(rec)
	return nil
}

func (s *fakeStore) Update(ctx context.Context, rec memory.Record) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	for i, existing := range s.records[rec.Owner] {
		if existing.Moment == rec.Moment {
			s.records[rec.Owner][i] = rec
			s.updated = append(s.updated, rec)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte // key: owner/name

	uploadErr error
	removeErr error
	urlErr    error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (b *fakeBlobs) key(owner, name string) string { return owner + "/" + name }

func (b *fakeBlobs) Upload(ctx context.Context, owner, name string, data []byte) error {
	if b.uploadErr != nil {
		return b.uploadErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[b.key(owner, name)] = data
	return nil
}

func (b *fakeBlobs) Remove(ctx context.Context, owner, name string) error {
	if b.removeErr != nil {
		return b.removeErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, b.key(owner, name))
	return nil
}

func (b *fakeBlobs) URL(ctx context.Context, owner, name string) (string, error) {
	if b.urlErr != nil {
		return "", b.urlErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[b.key(owner, name)]; !ok {
		return "", nil
	}
	return fmt.Sprintf("https://blobs.example/%s/%s?sig=abc", owner, name), nil
}

type fakeAssets struct{ known map[string]string }

func (a *fakeAssets) Resolve(name string) string { return a.known[name] }

// --- construction helpers ---

type testDeps struct {
	provider *fakeProvider
	store    *fakeStore
	blobs    *fakeBlobs
	assets   *fakeAssets
}

func newTestGateway(t *testing.T) (*Gateway, *testDeps) {
	t.Helper()
	deps := &testDeps{
		provider: newFakeProvider(),
		store:    newFakeStore(),
		blobs:    newFakeBlobs(),
		assets:   &fakeAssets{known: map[string]string{"landscape1.png": "file:///assets/landscape1.png"}},
	}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	g := New(deps.provider, deps.store, deps.blobs, deps.assets, log)
	return g, deps
}

func signedInGateway(t *testing.T, owner string) (*Gateway, *testDeps) {
	t.Helper()
	g, deps := newTestGateway(t)
	deps.provider.session = identity.Session{Status: identity.StatusSignedIn, Owner: owner}
	return g, deps
}

// fixedNow pins the gateway clock for date-window assertions.
func fixedNow(g *Gateway, t time.Time) {
	g.now = func() time.Time { return t }
}
