package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greenova8-investment-ledger/internal/platform/auth"
)

const (
	// UserIDKey is the key used to store the authenticated user id in the context
	UserIDKey = "user_id"
	// RolesKey is the key used to store the authenticated user's roles in the context
	RolesKey = "roles"
)

// RequireAuth rejects requests without a valid bearer token and stores the caller's identity
func RequireAuth(tokens auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Token has expired"
			}
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(RolesKey, claims.Roles)
		c.Next()
	}
}

// RequireRole rejects authenticated callers that lack role. It must run after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if HasRole(c, role) {
			c.Next()
			return
		}
		abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Requires role "+role)
	}
}

// GetUserID retrieves the authenticated user id from the gin context if present
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// HasRole reports whether the authenticated caller carries role
func HasRole(c *gin.Context, role string) bool {
	return slices.Contains(GetRoles(c), role)
}

// GetRoles retrieves the authenticated user's roles from the gin context
func GetRoles(c *gin.Context) []string {
	return c.GetStringSlice(RolesKey)
}
