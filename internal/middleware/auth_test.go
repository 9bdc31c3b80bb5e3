package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"levant-va/operations/internal/auth"
)

func signTestToken(t *testing.T, pilotID string, admin bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pilot_id": pilotID,
		"admin":    admin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("levant-dev-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func claimsEcho(got *auth.UserClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = auth.GetUserClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	var got auth.UserClaims
	handler := AuthMiddleware(nil)(claimsEcho(&got))

	req := httptest.NewRequest("GET", "/api/v1/bids/active", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "pilot-123", true))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if got == nil || got.PilotID() != "pilot-123" {
		t.Errorf("Claims not propagated: %+v", got)
	}
	if !got.IsAdmin() {
		t.Errorf("Admin flag lost in claims")
	}
	if got.Source() != "JWT" {
		t.Errorf("Source = %s, want JWT", got.Source())
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	var got auth.UserClaims
	handler := AuthMiddleware(nil)(claimsEcho(&got))

	req := httptest.NewRequest("GET", "/api/v1/bids/active", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_MissingCredentials(t *testing.T) {
	var got auth.UserClaims
	handler := AuthMiddleware(nil)(claimsEcho(&got))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/bids/active", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// ACARS claims are never admin.
	req := httptest.NewRequest("GET", "/api/v1/admin/fleet", nil)
	req = req.WithContext(auth.SetUserClaims(req.Context(), &auth.AcarsClaims{PilotIDValue: "pilot-1"}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("ACARS claims must not pass admin gate, got %d", rr.Code)
	}

	req = httptest.NewRequest("GET", "/api/v1/admin/fleet", nil)
	req = req.WithContext(auth.SetUserClaims(req.Context(), &auth.SessionClaims{PilotIDValue: "pilot-1", AdminValue: true}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Admin session must pass, got %d", rr.Code)
	}
}
