package habitauth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Snapshot is the read-only view consumers observe: the current identity
// (nil when signed out) and the loading latch.
type Snapshot struct {
	Identity *Identity
	Loading  bool
}

// SignUpRequest carries the user-entered registration fields.
type SignUpRequest struct {
	Email           string
	Password        string
	ConfirmPassword string
	DisplayName     string
}

// minPasswordLength is the only password policy enforced before the
// external call; everything stronger is the service's decision.
const minPasswordLength = 6

// Validate checks the preconditions that must hold before any external
// call is attempted. Credential verification beyond this is the external
// service's job.
func (r SignUpRequest) Validate() error {
	if len(r.Password) < minPasswordLength {
		return NewAuthError(ErrCodeWeakPassword, "Password must be at least 6 characters", "password")
	}
	if r.Password != r.ConfirmPassword {
		return NewAuthError(ErrCodePasswordMismatch, "Passwords do not match", "confirmPassword")
	}
	return nil
}

// SessionStore holds the authenticated-identity state for the running
// client process. It subscribes to change notifications from the external
// auth service and exposes the sign-up/sign-in/sign-out operation set.
//
// Construct one instance at app start with NewSessionStore, call Start,
// and Close it on shutdown. There is deliberately no package-level
// singleton; consumers receive the store explicitly.
type SessionStore struct {
	service  Service
	resolver Resolver
	env      Environment

	mu        sync.Mutex
	loading   bool
	session   *Session
	identity  *Identity
	inFlight  bool
	started   bool
	listeners map[string]func(Snapshot)
	cancelSub func()
}

// StoreOption configures a SessionStore
type StoreOption func(*SessionStore)

// WithResolver overrides the default redirect resolver.
func WithResolver(r Resolver) StoreOption {
	return func(s *SessionStore) { s.resolver = r }
}

// WithEnvironment sets the client-side context used for redirect resolution.
func WithEnvironment(env Environment) StoreOption {
	return func(s *SessionStore) { s.env = env }
}

// NewSessionStore creates a store in the initial pending/absent state.
func NewSessionStore(service Service, opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		service:   service,
		resolver:  NewResolver(),
		env:       DetectEnvironment("localhost"),
		loading:   true,
		listeners: make(map[string]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start wires the store to the service: it registers the change
// subscription and kicks off the one-shot fetch of any persisted session.
// The two resolve the loading latch in whichever order they land; both
// paths converge on the same state.
func (s *SessionStore) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.cancelSub = s.service.OnChange(func(ch Change) {
		s.apply(ch.Session, false)
	})

	go s.restore(ctx)
}

// restore performs the initial fetch of a previously persisted session.
func (s *SessionStore) restore(ctx context.Context) {
	sess, err := s.service.CurrentSession(ctx)
	if err != nil {
		slog.Warn("initial session fetch failed", "error", err)
		s.apply(nil, true)
		return
	}
	s.apply(sess, true)
}

// apply is the single writer for the Identity/Session slot. It clears the
// loading latch (one-way) and notifies subscribers. An initial fetch that
// found nothing never clobbers a session a change notification already
// delivered, so the two startup paths commute.
func (s *SessionStore) apply(sess *Session, initial bool) {
	s.mu.Lock()
	if initial && sess == nil && s.session != nil {
		s.loading = false
		s.mu.Unlock()
		return
	}
	s.loading = false
	s.session = sess
	if sess != nil {
		id := sess.Identity
		s.identity = &id
	} else {
		s.identity = nil
	}
	snap := s.currentLocked()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Current returns the identity (nil when signed out) and the loading flag.
func (s *SessionStore) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *SessionStore) currentLocked() Snapshot {
	return Snapshot{Identity: s.identity, Loading: s.loading}
}

// Session returns a copy of the current session, or nil when signed out.
func (s *SessionStore) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	sess := *s.session
	return &sess
}

// AccessToken returns the current session's access token, or "" when
// signed out. Used by API clients that attach the token to outgoing calls.
func (s *SessionStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

// Subscribe registers a listener invoked on every state change. The
// returned function cancels the registration.
func (s *SessionStore) Subscribe(fn func(Snapshot)) (cancel func()) {
	id := uuid.NewString()
	s.mu.Lock()
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close tears the store down: the change subscription is cancelled and no
// further notifications are delivered.
func (s *SessionStore) Close() {
	if s.cancelSub != nil {
		s.cancelSub()
		s.cancelSub = nil
	}
}

// SignUp registers a new account. Local validation failures return
// immediately with no external call. On success the service sends a
// confirmation email that returns to the email-action redirect URL; the
// signed-in state, if any, arrives through the change subscription.
func (s *SessionStore) SignUp(ctx context.Context, req SignUpRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	_, err := s.service.SignUp(ctx, req.Email, req.Password, req.DisplayName, s.resolver.EmailActionRedirect(s.env))
	if err != nil {
		return asAuthError(err)
	}
	return nil
}

// SignIn authenticates with email and password. The new identity is not
// returned here; it lands via the change subscription so every consumer
// observes the same transition.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	_, err := s.service.SignInWithPassword(ctx, email, password)
	if err != nil {
		return asAuthError(err)
	}
	return nil
}

// SignInWithProvider starts a redirect-based sign-in with an external
// identity provider and returns the URL the presentation layer must
// navigate to. Completion arrives later through the change subscription,
// after the browser returns from the provider.
func (s *SessionStore) SignInWithProvider(provider string) (string, error) {
	u, err := s.service.AuthorizeURL(provider, s.resolver.OAuthRedirect(s.env))
	if err != nil {
		return "", asAuthError(err)
	}
	return u, nil
}

// SignOut invalidates the session and clears local state once the service
// confirms.
func (s *SessionStore) SignOut(ctx context.Context) error {
	if err := s.service.SignOut(ctx); err != nil {
		return asAuthError(err)
	}
	s.apply(nil, false)
	return nil
}

// ResetPassword requests a reset email. The response is identical whether
// or not the address is registered; the service owns that policy.
func (s *SessionStore) ResetPassword(ctx context.Context, email string) error {
	if err := s.service.SendPasswordReset(ctx, email, s.resolver.EmailActionRedirect(s.env)); err != nil {
		return asAuthError(err)
	}
	return nil
}

// begin guards against concurrent double submission of credential
// operations (e.g. a double-clicked submit button).
func (s *SessionStore) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return NewAuthError(ErrCodeInFlight, "Another attempt is already in progress", "")
	}
	s.inFlight = true
	return nil
}

func (s *SessionStore) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}
