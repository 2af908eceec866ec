package remote

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	habitauth "github.com/Jefferymaina/habit-chain-tracker"
)

// RefreshThreshold is how long before expiry to proactively refresh
const RefreshThreshold = 5 * time.Minute

// defaultBasePath is where the hosted backend mounts its auth endpoints
const defaultBasePath = "/auth/v1"

// Client talks to the hosted auth backend. It implements habitauth.Service.
type Client struct {
	mu         sync.Mutex
	serverURL  string
	apiKey     string
	basePath   string
	httpClient *http.Client
	cache      SessionCache
	listeners  map[string]func(habitauth.Change)
}

// tokenResponse is the success/error shape of the token-bearing endpoints
type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *userPayload `json:"user,omitempty"`
}

// userPayload is the user object some endpoints return alongside tokens
type userPayload struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

func (u *userPayload) identity() habitauth.Identity {
	id := habitauth.Identity{ID: u.ID, Email: u.Email}
	if name, ok := u.Metadata["name"].(string); ok {
		id.Name = name
	}
	return id
}

// errorResponse covers the error shapes the backend uses across endpoints
type errorResponse struct {
	Error     string `json:"error,omitempty"`
	ErrorDesc string `json:"error_description,omitempty"`
	Msg       string `json:"msg,omitempty"`
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom base HTTP client (for timeouts, TLS config, etc.)
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache sets the session cache. Defaults to an in-memory cache.
func WithCache(cache SessionCache) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithBasePath overrides the path the auth endpoints are mounted under
func WithBasePath(path string) Option {
	return func(c *Client) {
		c.basePath = strings.TrimSuffix(path, "/")
	}
}

// NewClient creates a client for the auth backend at serverURL
func NewClient(serverURL, apiKey string, opts ...Option) *Client {
	// Normalize server URL
	u, err := url.Parse(serverURL)
	if err == nil && u.Scheme != "" && u.Host != "" {
		serverURL = fmt.Sprintf("%s://%s", u.Scheme, u.Host)
	}

	c := &Client{
		serverURL:  serverURL,
		apiKey:     apiKey,
		basePath:   defaultBasePath,
		httpClient: &http.Client{},
		cache:      NewMemoryCache(),
		listeners:  make(map[string]func(habitauth.Change)),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Wrap the transport so every request carries the API key
	c.httpClient.Transport = &Transport{
		Base:   c.httpClient.Transport,
		APIKey: apiKey,
	}

	return c
}

// ServerURL returns the service URL this client is configured for
func (c *Client) ServerURL() string {
	return c.serverURL
}

// SignUp registers a new account. The confirmation email the backend sends
// links back to redirectTo. When the backend requires confirmation before
// the first sign-in, the returned session is nil.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string, redirectTo habitauth.RedirectTarget) (*habitauth.Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if displayName != "" {
		body["data"] = map[string]any{"name": displayName}
	}

	var resp tokenResponse
	query := url.Values{"redirect_to": {string(redirectTo)}}
	if err := c.postJSON(ctx, "/signup", query, body, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken == "" {
		// Confirmation required; the session arrives after the email link
		return nil, nil
	}

	sess := c.sessionFromResponse(&resp)
	c.storeSession(sess)
	c.emit(habitauth.Change{Event: habitauth.EventSignedIn, Session: sess})
	return sess, nil
}

// SignInWithPassword exchanges email/password for a session and announces
// it on the change subscription.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*habitauth.Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}

	var resp tokenResponse
	query := url.Values{"grant_type": {"password"}}
	if err := c.postJSON(ctx, "/token", query, body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, habitauth.NewAuthError(habitauth.ErrCodeServiceError, "No session returned by auth service", "")
	}

	sess := c.sessionFromResponse(&resp)
	c.storeSession(sess)
	c.emit(habitauth.Change{Event: habitauth.EventSignedIn, Session: sess})
	return sess, nil
}

// AuthorizeURL builds the URL that begins the provider handshake. The
// browser navigates there; the backend drives the provider round trip and
// returns to redirectTo.
func (c *Client) AuthorizeURL(provider string, redirectTo habitauth.RedirectTarget) (string, error) {
	if provider == "" {
		return "", habitauth.NewAuthError(habitauth.ErrCodeMissingField, "Provider is required", "provider")
	}

	conf := oauth2.Config{
		ClientID:    c.apiKey,
		RedirectURL: string(redirectTo),
		Endpoint: oauth2.Endpoint{
			AuthURL: c.serverURL + c.basePath + "/authorize",
		},
	}

	state, err := generateState()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state, oauth2.SetAuthURLParam("provider", provider)), nil
}

// SignOut invalidates the cached session with the backend and drops it
// locally once confirmed.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	sess, err := c.cache.Get(c.serverURL)
	c.mu.Unlock()
	if err != nil || sess == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+c.basePath+"/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to auth service: %w", err)
	}
	defer httpResp.Body.Close()

	// 401 means the session was already invalid; treat it as signed out
	if httpResp.StatusCode >= 400 && httpResp.StatusCode != http.StatusUnauthorized {
		raw, _ := io.ReadAll(httpResp.Body)
		return serviceError(httpResp.StatusCode, raw)
	}

	c.mu.Lock()
	c.cache.Remove(c.serverURL)
	saveErr := c.cache.Save()
	c.mu.Unlock()
	if saveErr != nil {
		return fmt.Errorf("failed to clear cached session: %w", saveErr)
	}

	c.emit(habitauth.Change{Event: habitauth.EventSignedOut})
	return nil
}

// SendPasswordReset asks the backend to email a reset link that returns to
// redirectTo. The backend responds identically whether or not the address
// is registered.
func (c *Client) SendPasswordReset(ctx context.Context, email string, redirectTo habitauth.RedirectTarget) error {
	body := map[string]any{"email": email}
	query := url.Values{"redirect_to": {string(redirectTo)}}
	var resp tokenResponse
	return c.postJSON(ctx, "/recover", query, body, &resp)
}

// CurrentSession returns the cached session, refreshing it when it is
// close to expiry. A session that expired with no refresh token is dropped.
func (c *Client) CurrentSession(ctx context.Context) (*habitauth.Session, error) {
	c.mu.Lock()
	sess, err := c.cache.Get(c.serverURL)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if sess == nil {
		c.mu.Unlock()
		return nil, nil
	}

	if sess.IsExpiringSoon(RefreshThreshold) && sess.HasRefreshToken() {
		refreshed, refreshErr := c.refreshLocked(ctx, sess)
		if refreshErr == nil {
			c.mu.Unlock()
			c.emit(habitauth.Change{Event: habitauth.EventTokenRefreshed, Session: refreshed})
			return refreshed, nil
		}
		// If refresh fails but the token isn't actually expired yet, use it anyway
		if !sess.IsExpired() {
			c.mu.Unlock()
			return sess, nil
		}
		c.cache.Remove(c.serverURL)
		c.cache.Save()
		c.mu.Unlock()
		return nil, nil
	}

	if sess.IsExpired() {
		c.cache.Remove(c.serverURL)
		c.cache.Save()
		c.mu.Unlock()
		return nil, nil
	}

	c.mu.Unlock()
	return sess, nil
}

// OnChange registers a listener for auth-state notifications
func (c *Client) OnChange(fn func(habitauth.Change)) (cancel func()) {
	id := uuid.NewString()
	c.mu.Lock()
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// refreshLocked exchanges the refresh token for a new session.
// Caller must hold c.mu.
func (c *Client) refreshLocked(ctx context.Context, old *habitauth.Session) (*habitauth.Session, error) {
	body := map[string]any{"refresh_token": old.RefreshToken}
	query := url.Values{"grant_type": {"refresh_token"}}

	var resp tokenResponse
	if err := c.postJSON(ctx, "/token", query, body, &resp); err != nil {
		return nil, err
	}

	sess := c.sessionFromResponse(&resp)
	// Preserve what the old session knew when the new token says less
	if sess.Identity.ID == "" {
		sess.Identity = old.Identity
	}
	if sess.RefreshToken == "" {
		sess.RefreshToken = old.RefreshToken
	}

	if err := c.cache.Put(c.serverURL, sess); err != nil {
		return nil, fmt.Errorf("failed to cache refreshed session: %w", err)
	}
	if err := c.cache.Save(); err != nil {
		return nil, fmt.Errorf("failed to save refreshed session: %w", err)
	}
	return sess, nil
}

// sessionFromResponse builds a session from a token response, decoding the
// identity from the access-token claims with the user object as fallback.
func (c *Client) sessionFromResponse(resp *tokenResponse) *habitauth.Session {
	now := time.Now()
	sess := &habitauth.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresAt:    now.Add(time.Duration(resp.ExpiresIn) * time.Second),
		CreatedAt:    now,
	}
	if identity, err := identityFromToken(resp.AccessToken); err == nil {
		sess.Identity = identity
	} else if resp.User != nil {
		sess.Identity = resp.User.identity()
	}
	return sess
}

func (c *Client) storeSession(sess *habitauth.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.cache.Put(c.serverURL, sess); err != nil {
		return
	}
	c.cache.Save()
}

// emit delivers a change to every registered listener
func (c *Client) emit(ch habitauth.Change) {
	c.mu.Lock()
	fns := make([]func(habitauth.Change), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(ch)
	}
}

// postJSON posts a JSON body to an auth endpoint and decodes the response
func (c *Client) postJSON(ctx context.Context, path string, query url.Values, body any, out *tokenResponse) error {
	endpoint := c.serverURL + c.basePath + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to auth service: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return serviceError(httpResp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("invalid response from auth service: %w", err)
		}
	}
	return nil
}

// serviceError maps an error body onto an AuthError, keeping the message
// the service supplied verbatim.
func serviceError(statusCode int, raw []byte) error {
	var er errorResponse
	json.Unmarshal(raw, &er)

	msg := er.ErrorDesc
	if msg == "" {
		msg = er.Msg
	}
	if msg == "" {
		msg = er.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("authentication failed: HTTP %d", statusCode)
	}

	code := habitauth.ErrCodeServiceError
	if statusCode == http.StatusUnauthorized {
		code = habitauth.ErrCodeInvalidCreds
	} else if strings.Contains(msg, "already registered") || strings.Contains(msg, "already exists") {
		code = habitauth.ErrCodeEmailExists
	}
	return habitauth.NewAuthError(code, msg, "")
}

// generateState produces the CSRF nonce carried through the provider handshake
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
