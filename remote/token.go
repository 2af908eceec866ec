package remote

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	habitauth "github.com/Jefferymaina/habit-chain-tracker"
)

// identityFromToken decodes the identity claims the service embeds in its
// access tokens. The signature is not checked here; verifying it is the
// server's job and the claims are only used for display.
func identityFromToken(accessToken string) (habitauth.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return habitauth.Identity{}, fmt.Errorf("failed to decode access token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return habitauth.Identity{}, fmt.Errorf("subject not found in access token")
	}

	identity := habitauth.Identity{ID: sub}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if meta, ok := claims["user_metadata"].(map[string]any); ok {
		if name, ok := meta["name"].(string); ok && name != "" {
			identity.Name = name
		} else if name, ok := meta["full_name"].(string); ok {
			identity.Name = name
		}
	}
	return identity, nil
}
