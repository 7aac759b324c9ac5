package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/trattoria/internal/domain/model"
	pkgAuth "github.com/polkiloo/trattoria/internal/pkg/auth"
	"github.com/polkiloo/trattoria/internal/server/http/dto"
)

const (
	// ClaimsContextKey is a gin context key for the authenticated staff claims.
	ClaimsContextKey = "claims"
	authCookieName   = "trattoria_token"
)

// TokenParser resolves a session token into staff claims.
type TokenParser interface {
	ParseToken(token string) (pkgAuth.Claims, error)
}

// AuthRequired ensures staff is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "authentication required", "missing session token")
			return
		}

		claims, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				abort(c, http.StatusUnauthorized, "authentication required", err.Error())
				return
			}
			abort(c, http.StatusInternalServerError, "internal", "")
			return
		}

		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// RequireRole lets only the listed roles through. It must run after AuthRequired.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "authentication required", "missing session token")
			return
		}
		if !slices.Contains(roles, claims.Role) {
			abort(c, http.StatusForbidden, "forbidden", "role "+string(claims.Role)+" is not allowed here")
			return
		}
		c.Next()
	}
}

// Claims returns the claims stored by AuthRequired.
func Claims(c *gin.Context) (pkgAuth.Claims, bool) {
	val, ok := c.Get(ClaimsContextKey)
	if !ok {
		return pkgAuth.Claims{}, false
	}
	claims, ok := val.(pkgAuth.Claims)
	return claims, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}

func abort(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: kind, Message: message})
}
