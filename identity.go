package habitauth

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// Identity is the client-visible profile of the signed-in principal.
// It is owned by the external auth service; the SessionStore holds a
// cached copy that is replaced on every change notification.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Session is an active authentication grant tied to an Identity. The
// tokens inside are issued and interpreted by the external auth service;
// this package only forwards them and checks presence/expiry.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	Identity     Identity  `json:"identity"`
}

// IsExpired returns true if the access token has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsExpiringSoon returns true if the token expires within the given duration
func (s *Session) IsExpiringSoon(within time.Duration) bool {
	return time.Now().Add(within).After(s.ExpiresAt)
}

// HasRefreshToken returns true if a refresh token is available
func (s *Session) HasRefreshToken() bool {
	return s.RefreshToken != ""
}

// OAuthToken bridges the session into the oauth2 token type so it can be
// handed to any client that speaks oauth2.TokenSource.
func (s *Session) OAuthToken() *oauth2.Token {
	if s == nil {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.ExpiresAt,
	}
}

// ChangeEvent identifies what kind of auth-state transition occurred.
type ChangeEvent string

const (
	EventSignedIn       ChangeEvent = "signed_in"
	EventSignedOut      ChangeEvent = "signed_out"
	EventTokenRefreshed ChangeEvent = "token_refreshed"
)

// Change is a single auth-state notification from the external service.
// Session is nil for signed_out events.
type Change struct {
	Event   ChangeEvent
	Session *Session
}

// Service is the contract the external auth service must satisfy. The
// SessionStore depends on exactly these seven operations; credential
// verification, token issuance and the OAuth handshake all live behind it.
type Service interface {
	// SignUp registers a new account. The confirmation email the service
	// sends redirects back to redirectTo. The returned session is nil when
	// the service requires email confirmation before the first sign-in.
	SignUp(ctx context.Context, email, password, displayName string, redirectTo RedirectTarget) (*Session, error)

	// SignInWithPassword exchanges credentials for a session. Implementations
	// must also deliver the new session through the change subscription.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// AuthorizeURL returns the URL that starts a redirect-based sign-in with
	// an external identity provider. The provider returns the browser to
	// redirectTo; the resulting session arrives via the change subscription.
	AuthorizeURL(provider string, redirectTo RedirectTarget) (string, error)

	// SignOut invalidates the current session.
	SignOut(ctx context.Context) error

	// SendPasswordReset requests a reset email whose link returns to
	// redirectTo. Succeeds whether or not the email is registered.
	SendPasswordReset(ctx context.Context, email string, redirectTo RedirectTarget) error

	// CurrentSession returns any previously persisted session, refreshed if
	// needed, or nil when no session survives.
	CurrentSession(ctx context.Context) (*Session, error)

	// OnChange registers a listener for auth-state notifications. The
	// returned function cancels the registration.
	OnChange(fn func(Change)) (cancel func())
}
