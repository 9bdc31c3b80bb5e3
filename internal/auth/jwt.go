package auth

import (
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

type sessionTokenClaims struct {
	PilotID string `json:"pilot_id"`
	Admin   bool   `json:"admin"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "levant-dev-secret"
	}
	return []byte(secret)
}

// ParseSessionToken validates a bearer token issued by the auth service and
// returns the claims the pipeline trusts.
func ParseSessionToken(tokenStr string) (*SessionClaims, error) {
	var claims sessionTokenClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid || claims.PilotID == "" {
		return nil, fmt.Errorf("session token missing pilot identity")
	}

	return &SessionClaims{
		PilotIDValue: claims.PilotID,
		AdminValue:   claims.Admin,
	}, nil
}
