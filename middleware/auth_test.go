package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padelhq/tournament-engine/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func adminClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": 42,
		"club_id": 5,
		"role":    string(models.RoleClubAdmin),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func TestAuthenticatePassesClaimsThrough(t *testing.T) {
	var gotUserID, gotClubID int
	var gotRole models.UserRole
	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotUserID, err = GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		gotClubID, err = GetClubIDFromContext(r.Context())
		require.NoError(t, err)
		gotRole, err = GetUserRoleFromContext(r.Context())
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, adminClaims(), testSecret))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 42, gotUserID)
	assert.Equal(t, 5, gotClubID)
	assert.Equal(t, models.RoleClubAdmin, gotRole)
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, adminClaims(), "other-secret"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	claims := adminClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, claims, testSecret))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireClubAdminBlocksPlayers(t *testing.T) {
	claims := adminClaims()
	claims["role"] = string(models.RolePlayer)

	handler := Authenticate(testSecret)(RequireClubAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, claims, testSecret))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireClubAdminAllowsAdmins(t *testing.T) {
	handler := Authenticate(testSecret)(RequireClubAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, adminClaims(), testSecret))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
