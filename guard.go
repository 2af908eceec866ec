package habitauth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Decision is the route guard's verdict for a protected location.
type Decision int

const (
	// DecisionPending means the initial session determination has not
	// completed; render nothing rather than flashing a redirect.
	DecisionPending Decision = iota

	// DecisionAllow means an identity is present and protected content
	// may render.
	DecisionAllow

	// DecisionRedirect means no identity is present; send the visitor to
	// the unauthenticated entry point, carrying the requested location.
	DecisionRedirect
)

// Decide maps the (loading, identity) pair onto a guard decision.
// Deterministic, no hidden state.
func Decide(loading bool, identity *Identity) Decision {
	if loading {
		return DecisionPending
	}
	if identity == nil {
		return DecisionRedirect
	}
	return DecisionAllow
}

// RouteGuard blocks protected handlers until the session determination
// completes, then allows or redirects based on presence of an identity.
type RouteGuard struct {
	Store     *SessionStore
	LoginPath string // where unauthenticated visitors go, defaults to /auth
	FromParam string // query param carrying the original location, defaults to "from"
}

// EnsureReasonableDefaults fills in defaults for unset config values.
func (g *RouteGuard) EnsureReasonableDefaults() {
	if g.LoginPath == "" {
		g.LoginPath = "/auth"
	}
	if g.FromParam == "" {
		g.FromParam = "from"
	}
}

// Protect wraps a handler with the guard decision. While the store is
// loading nothing is rendered; once resolved the request either proceeds
// or is redirected to the login path with the original location attached
// so the entry point can return the visitor after sign-in.
func (g *RouteGuard) Protect(next http.Handler) http.Handler {
	g.EnsureReasonableDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := g.Store.Current()
		switch Decide(snap.Loading, snap.Identity) {
		case DecisionPending:
			w.WriteHeader(http.StatusNoContent)
		case DecisionRedirect:
			originalURL := r.URL.Path
			encodedURL := strings.Replace(url.QueryEscape(originalURL), "+", "%20", -1)
			http.Redirect(w, r, fmt.Sprintf("%s?%s=%s", g.LoginPath, g.FromParam, encodedURL), http.StatusFound)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
