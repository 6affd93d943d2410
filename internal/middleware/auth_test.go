package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID, role string, expiresIn time.Duration) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func adminStack(captured *string) http.Handler {
	logger := zap.NewNop()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured, _ = GetUserID(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(testSecret, logger)(RequireAdmin(logger)(inner))
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	adminStack(nil).ServeHTTP(rec, httptest.NewRequest("POST", "/api/admin/products", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/admin/products", nil)
	req.Header.Set("Authorization", "Token abc")

	rec := httptest.NewRecorder()
	adminStack(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u-1", "admin", -time.Minute))

	rec := httptest.NewRecorder()
	adminStack(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for expired token", rec.Code)
	}
}

func TestRequireAdminRejectsShopperRole(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u-1", "user", time.Hour))

	rec := httptest.NewRecorder()
	adminStack(nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for non-admin role", rec.Code)
	}
}

func TestAdminTokenPassesThrough(t *testing.T) {
	var userID string
	req := httptest.NewRequest("POST", "/api/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u-1", "admin", time.Hour))

	rec := httptest.NewRecorder()
	adminStack(&userID).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if userID != "u-1" {
		t.Errorf("user id in context = %q, want u-1", userID)
	}
}
