package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stockflow/backend/internal/infrastructure/auth"
	"github.com/stockflow/backend/internal/interfaces/http/dto"
)

// Context keys set by JWT authentication
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"
)

// JWTConfig holds JWT middleware configuration
type JWTConfig struct {
	Service   *auth.JWTService
	SkipPaths []string
}

// JWTAuth returns middleware that validates Bearer tokens and stores
// the claims on the gin context for downstream handlers.
func JWTAuth(service *auth.JWTService) gin.HandlerFunc {
	return JWTAuthWithConfig(JWTConfig{
		Service: service,
		SkipPaths: []string{
			"/health",
			"/ready",
		},
	})
}

// JWTAuthWithConfig returns JWT middleware with custom configuration
func JWTAuthWithConfig(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range cfg.SkipPaths {
			if c.Request.URL.Path == path || strings.HasPrefix(c.Request.URL.Path, path+"/") {
				c.Next()
				return
			}
		}

		tokenString, ok := extractBearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		claims, err := cfg.Service.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, err)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTTenantIDKey, claims.TenantID)

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func handleAuthError(c *gin.Context, err error) {
	message := "invalid token"
	switch err {
	case auth.ErrExpiredToken:
		message = "token has expired"
	case auth.ErrTokenNotYetValid:
		message = "token is not yet valid"
	case auth.ErrMissingTenantID, auth.ErrMissingUserID:
		message = "token is missing required claims"
	}
	abortUnauthorized(c, message)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// GetJWTClaims returns the validated claims from the gin context
func GetJWTClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(JWTClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// GetJWTTenantID returns the authenticated tenant ID from the gin context
func GetJWTTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(JWTTenantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	raw, ok := value.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetJWTUserID returns the authenticated user ID from the gin context
func GetJWTUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(JWTUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	raw, ok := value.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
