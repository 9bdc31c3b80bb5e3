package middleware

import (
	"net/http"
	"strings"

	"levant-va/operations/internal/auth"
	"levant-va/operations/internal/db/repositories"
)

// AuthMiddleware resolves request identity: a JWT bearer token from the auth
// service, or an ACARS API key (X-API-Key + X-Pilot-Id) for the tracking
// client. Core trusts the resulting claims without re-validating credentials.
func AuthMiddleware(keysRepo *repositories.KeysRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get("X-API-Key")

			var claims auth.UserClaims

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				token := strings.TrimPrefix(authHeader, "Bearer ")
				parsed, err := auth.ParseSessionToken(token)
				if err != nil {
					http.Error(w, "Unauthorized. Invalid session token", http.StatusUnauthorized)
					return
				}
				claims = parsed

			case apiKey != "":
				pilotID := r.Header.Get("X-Pilot-Id")
				if pilotID == "" {
					http.Error(w, "Unauthorized. Missing pilot identity", http.StatusUnauthorized)
					return
				}

				keyStatus, err := keysRepo.GetStatus(r.Context(), apiKey)
				if err != nil {
					http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}
				if !keyStatus.IsActive {
					http.Error(w, "Unauthorized. Inactive API Key", http.StatusUnauthorized)
					return
				}

				claims = &auth.AcarsClaims{PilotIDValue: pilotID}

			default:
				http.Error(w, "Unauthorized. Missing credentials", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates administration endpoints on the isAdmin claim.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetUserClaims(r.Context())
			if claims == nil || !claims.IsAdmin() {
				http.Error(w, "Unauthorized. Admin access required", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
