package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rivermart/storefront-backend/internal/logger"
	"github.com/rivermart/storefront-backend/internal/requestdata"
	"github.com/rivermart/storefront-backend/internal/services"
)

type AuthMiddleware struct {
	log            *logger.Logger
	sessionService services.SessionService
}

func NewAuthMiddleware(log *logger.Logger, sessionService services.SessionService) *AuthMiddleware {
	return &AuthMiddleware{
		log:            log.With("middleware", "AuthMiddleware"),
		sessionService: sessionService,
	}
}

// RequireAuth rejects requests without a resolvable identity. Used by every
// mutating cart route.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		ctx, err := am.sessionService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if requestdata.UserID(ctx) == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// OptionalAuth resolves identity when a token is present and lets the request
// through either way. Read routes use it: guests get empty results instead of
// a 401.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString != "" {
			ctx, err := am.sessionService.SetContextFromToken(c.Request.Context(), tokenString)
			if err == nil {
				c.Request = c.Request.WithContext(ctx)
			} else {
				am.log.Debug("ignoring unresolvable token on read route", "error", err)
			}
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
