// Command habitweb serves the habit-chain-tracker web frontend: public
// auth endpoints backed by the SessionStore, and habit pages behind the
// route guard.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	habitauth "github.com/Jefferymaina/habit-chain-tracker"
	"github.com/Jefferymaina/habit-chain-tracker/remote"
	fsstore "github.com/Jefferymaina/habit-chain-tracker/stores/fs"
)

func main() {
	cfg, err := habitauth.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.ServiceURL == "" {
		log.Fatal("HABITCHAIN_AUTH_URL not set")
	}

	cache, err := fsstore.NewFSSessionCache(cfg.SessionFile, "habit-chain-tracker")
	if err != nil {
		log.Fatalf("session cache: %v", err)
	}

	svc := remote.NewClient(cfg.ServiceURL, cfg.ServiceKey,
		remote.WithCache(cache),
		remote.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	)

	store := habitauth.NewSessionStore(svc, habitauth.WithEnvironment(cfg.Environment()))
	store.Start(context.Background())
	defer store.Close()

	guard := &habitauth.RouteGuard{Store: store}

	r := mux.NewRouter()
	r.HandleFunc("/auth", authPage(store)).Methods("GET")
	r.HandleFunc("/auth/signup", signup(store)).Methods("POST")
	r.HandleFunc("/auth/login", login(store)).Methods("POST")
	r.HandleFunc("/auth/reset", resetPassword(store)).Methods("POST")
	r.HandleFunc("/auth/provider/{provider}", providerStart(store)).Methods("GET")
	r.HandleFunc("/logout", logout(store)).Methods("POST")
	r.Handle("/dashboard", guard.Protect(http.HandlerFunc(dashboard(store))))

	log.Println("listening on", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}

func authPage(store *habitauth.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Current()
		writeJSON(w, http.StatusOK, map[string]any{
			"signed_in": snap.Identity != nil,
			"loading":   snap.Loading,
			"from":      r.URL.Query().Get("from"),
		})
	}
}

func signup(store *habitauth.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
			return
		}
		req := habitauth.SignUpRequest{
			Email:           r.FormValue("email"),
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirmPassword"),
			DisplayName:     r.FormValue("name"),
		}
		if err := store.SignUp(r.Context(), req); err != nil {
			writeAuthError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Check your email to confirm your account.",
		})
	}
}

func login(store *habitauth.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
			return
		}
		if err := store.SignIn(r.Context(), r.FormValue("email"), r.FormValue("password")); err != nil {
			writeAuthError(w, err)
			return
		}
		to := r.FormValue("from")
		if to == "" {
			to = "/dashboard"
		}
		http.Redirect(w, r, to, http.StatusFound)
	}
}

func resetPassword(store *habitauth.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
			return
		}
		if err := store.ResetPassword(r.Context(), r.FormValue("email")); err != nil {
			writeAuthError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "If that email exists, a reset link has been sent",
		})
	}
}

func providerStart(store *habitauth.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := mux.Vars(r)["provider"]
		u, err := store.SignInWithProvider(provider)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		http.Redirect(w, r, u, http.StatusFound)
	}
}

func logout(store *habitauth.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.SignOut(r.Context()); err != nil {
			writeAuthError(w, err)
			return
		}
		http.Redirect(w, r, "/auth", http.StatusFound)
	}
}

func dashboard(store *habitauth.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Current()
		writeJSON(w, http.StatusOK, map[string]any{
			"email": snap.Identity.Email,
			"name":  snap.Identity.Name,
		})
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	var authErr *habitauth.AuthError
	if !errors.As(err, &authErr) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	status := http.StatusBadRequest
	switch authErr.Code {
	case habitauth.ErrCodeInvalidCreds:
		status = http.StatusUnauthorized
	case habitauth.ErrCodeNetworkError:
		status = http.StatusBadGateway
	case habitauth.ErrCodeInFlight:
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{
		"error": authErr.Message,
		"code":  authErr.Code,
		"field": authErr.Field,
	})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
