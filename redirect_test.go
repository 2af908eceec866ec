package habitauth

import "testing"

func TestResolver_OAuthRedirect(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		name     string
		hostname string
		want     RedirectTarget
	}{
		{
			name:     "localhost",
			hostname: "localhost",
			want:     "http://localhost:5173/",
		},
		{
			name:     "loopback address",
			hostname: "127.0.0.1",
			want:     "http://localhost:5173/",
		},
		{
			name:     "ipv6 loopback",
			hostname: "::1",
			want:     "http://localhost:5173/",
		},
		{
			name:     "production host",
			hostname: "habit-chain-tracker.app",
			want:     "https://habit-chain-tracker.app/",
		},
		{
			name:     "any other host",
			hostname: "staging.example.com",
			want:     "https://habit-chain-tracker.app/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := DetectEnvironment(tt.hostname)
			if got := r.OAuthRedirect(env); got != tt.want {
				t.Errorf("OAuthRedirect(%q) = %v, want %v", tt.hostname, got, tt.want)
			}
			// Deterministic: same input, same output
			if again := r.OAuthRedirect(env); again != tt.want {
				t.Errorf("OAuthRedirect(%q) second call = %v, want %v", tt.hostname, again, tt.want)
			}
		})
	}
}

func TestResolver_EmailActionRedirect(t *testing.T) {
	r := NewResolver()

	local := r.EmailActionRedirect(DetectEnvironment("localhost"))
	if local != "http://localhost:5173/#/auth" {
		t.Errorf("EmailActionRedirect(localhost) = %v, want http://localhost:5173/#/auth", local)
	}

	prod := r.EmailActionRedirect(DetectEnvironment("habit-chain-tracker.app"))
	if prod != "https://habit-chain-tracker.app/#/auth" {
		t.Errorf("EmailActionRedirect(production) = %v, want https://habit-chain-tracker.app/#/auth", prod)
	}
}

func TestResolver_TrailingSlashNormalization(t *testing.T) {
	r := Resolver{
		LocalBaseURL:      "http://localhost:3000///",
		ProductionBaseURL: "https://app.example.com/",
	}

	if got := r.OAuthRedirect(DetectEnvironment("localhost")); got != "http://localhost:3000/" {
		t.Errorf("OAuthRedirect = %v, want exactly one trailing slash", got)
	}
	if got := r.OAuthRedirect(DetectEnvironment("app.example.com")); got != "https://app.example.com/" {
		t.Errorf("OAuthRedirect = %v, want exactly one trailing slash", got)
	}
}

func TestResolver_EmptyBaseURLsFallBackToDefaults(t *testing.T) {
	var r Resolver

	if got := r.OAuthRedirect(DetectEnvironment("localhost")); got != DefaultLocalBaseURL+"/" {
		t.Errorf("OAuthRedirect = %v, want default local", got)
	}
	if got := r.OAuthRedirect(DetectEnvironment("example.com")); got != DefaultProductionBaseURL+"/" {
		t.Errorf("OAuthRedirect = %v, want default production", got)
	}
}

func TestDetectEnvironment(t *testing.T) {
	if env := DetectEnvironment("localhost"); env.Production {
		t.Error("DetectEnvironment(localhost).Production = true, want false")
	}
	if env := DetectEnvironment("habit-chain-tracker.app"); !env.Production {
		t.Error("DetectEnvironment(production host).Production = false, want true")
	}
}

func TestResolver_LocalhostWinsOverProductionFlag(t *testing.T) {
	// Even a misconfigured production flag must not break local development:
	// a loopback hostname always maps to the registered local URL.
	r := NewResolver()
	env := Environment{Hostname: "localhost", Production: true}
	if got := r.OAuthRedirect(env); got != "http://localhost:5173/" {
		t.Errorf("OAuthRedirect = %v, want local URL for loopback host", got)
	}
}
