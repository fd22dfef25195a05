package middleware

import (
	stdErrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/storefront-backend/internal/errors"
	"github.com/storefront/storefront-backend/pkg/util"
)

// Context keys for the authenticated owner
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

// AuthMiddleware verifies bearer tokens issued by the external identity
// provider. The token subject becomes the owner identity.
type AuthMiddleware struct {
	validation util.TokenValidation
}

func NewAuthMiddleware(validation util.TokenValidation) *AuthMiddleware {
	return &AuthMiddleware{
		validation: validation,
	}
}

// Authenticate validates JWT token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "unauthorized")
			c.Abort()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(token, m.validation)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			if stdErrors.Is(err, util.ErrExpiredToken) {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "session expired")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid session token")
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.OwnerID())
		c.Set(UserEmailKey, claims.Email)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.OwnerID(),
		})

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID extracts the owner identity from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}
