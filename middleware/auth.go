package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/padelhq/tournament-engine/models"
)

type contextKey string

const claimsContextKey contextKey = "claims"

const (
	jwtClaimUserID = "user_id"
	jwtClaimClubID = "club_id"
	jwtClaimRole   = "role"
)

// Authenticate verifies the bearer token issued by the external auth service
// and stashes its claims in the request context.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireClubAdmin gates mutating tournament routes. Which club the caller
// administers comes from the token; whether that club owns the tournament is
// checked by the service against the loaded row.
func RequireClubAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, err := GetUserRoleFromContext(r.Context())
		if err != nil || role != models.RoleClubAdmin {
			http.Error(w, "club admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errors.New("user claims not found in context")
	}
	return claims, nil
}

func intClaim(claims jwt.MapClaims, name string) (int, error) {
	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("missing %q claim in token", name)
	}
	asFloat, ok := raw.(float64)
	if !ok || asFloat != float64(int(asFloat)) {
		return 0, fmt.Errorf("invalid %q claim: expected integer, got %v", name, raw)
	}
	value := int(asFloat)
	if value <= 0 {
		return 0, fmt.Errorf("invalid %q claim value: %d", name, value)
	}
	return value, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return intClaim(claims, jwtClaimUserID)
}

func GetClubIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return intClaim(claims, jwtClaimClubID)
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	raw, ok := claims[jwtClaimRole].(string)
	if !ok {
		return "", fmt.Errorf("missing or invalid %q claim in token", jwtClaimRole)
	}
	role := models.UserRole(raw)
	switch role {
	case models.RoleClubAdmin, models.RolePlayer:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role value in claim: %q", raw)
	}
}
