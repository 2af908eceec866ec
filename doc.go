// Package habitauth implements the authentication surface of the
// habit-chain-tracker application: session lifecycle, redirect-URL
// resolution and route protection, all layered over an external
// authentication service that owns credential verification, token
// issuance and the OAuth handshake.
//
// # Architecture
//
// SessionStore: holds the signed-in identity for the running process. It
// races two startup paths, a change-notification subscription and a
// one-shot fetch of any persisted session, into one consistent state
// cell, and exposes the operation set the presentation layer calls
// (sign up, sign in, sign in with provider, sign out, reset password).
//
// Resolver: pure computation of the redirect URLs the external service
// sends confirmation emails, reset links and OAuth callbacks to. Local
// development hosts map to a fixed local URL and everything else to the
// production URL, so the result always matches the allow-list registered
// with the service.
//
// RouteGuard: blocks protected handlers until the initial session
// determination completes, then allows or redirects to the auth entry
// point carrying the originally requested location.
//
// # Basic Usage
//
// Connect a store to the hosted backend and guard a route:
//
//	cfg, _ := habitauth.LoadConfig()
//	svc := remote.NewClient(cfg.ServiceURL, cfg.ServiceKey)
//	store := habitauth.NewSessionStore(svc,
//	    habitauth.WithEnvironment(cfg.Environment()))
//	store.Start(ctx)
//	defer store.Close()
//
//	guard := &habitauth.RouteGuard{Store: store}
//	mux.Handle("/dashboard", guard.Protect(dashboardHandler))
//
// Operations report failures as *AuthError. Validation failures (short
// password, confirmation mismatch) never reach the network; messages from
// the external service are surfaced verbatim; transport failures collapse
// into a generic retry-later error. None of them crash the process.
package habitauth
