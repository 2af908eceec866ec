package habitauth

import "strings"

// RedirectTarget is an absolute URL the external auth service returns
// control to after an asynchronous auth action. It must exactly match one
// of the URLs pre-registered with the service or the redirect fails closed.
type RedirectTarget string

// Environment is the client-side context redirect resolution depends on.
type Environment struct {
	Hostname   string
	Production bool
}

// DetectEnvironment derives the deployment mode from the current hostname.
func DetectEnvironment(hostname string) Environment {
	return Environment{Hostname: hostname, Production: !isLoopbackHost(hostname)}
}

// Default base URLs. These are a static two-way switch rather than
// environment variables so the computed URLs always match the redirect
// allow-list registered with the auth service.
const (
	DefaultLocalBaseURL      = "http://localhost:5173"
	DefaultProductionBaseURL = "https://habit-chain-tracker.app"
)

// authFragment is the hash route that processes email confirmation and
// password reset callbacks in the app.
const authFragment = "#/auth"

// Resolver computes the redirect URLs passed to the external auth service.
// Pure computation, no side effects.
type Resolver struct {
	LocalBaseURL      string
	ProductionBaseURL string
}

// NewResolver returns a Resolver with the registered default base URLs.
func NewResolver() Resolver {
	return Resolver{
		LocalBaseURL:      DefaultLocalBaseURL,
		ProductionBaseURL: DefaultProductionBaseURL,
	}
}

// OAuthRedirect returns the URL an external identity provider redirects
// back to after sign-in: the base URL for the environment, no fragment,
// exactly one trailing slash.
func (r Resolver) OAuthRedirect(env Environment) RedirectTarget {
	return RedirectTarget(r.base(env) + "/")
}

// EmailActionRedirect returns the URL email confirmation and password
// reset links land on: the base URL plus the in-app auth route fragment.
func (r Resolver) EmailActionRedirect(env Environment) RedirectTarget {
	return RedirectTarget(r.base(env) + "/" + authFragment)
}

// base picks local or production and strips trailing slashes so callers
// control the final shape.
func (r Resolver) base(env Environment) string {
	base := r.ProductionBaseURL
	if base == "" {
		base = DefaultProductionBaseURL
	}
	if !env.Production || isLoopbackHost(env.Hostname) {
		base = r.LocalBaseURL
		if base == "" {
			base = DefaultLocalBaseURL
		}
	}
	return strings.TrimRight(base, "/")
}

// isLoopbackHost reports whether the hostname is a local development host.
func isLoopbackHost(hostname string) bool {
	switch hostname {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
