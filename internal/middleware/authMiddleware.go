package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/dto"
	"github.com/zhanserikAmangeldi/taskmate-service/pkg/jwt"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer"

	// Context keys
	UserIDKey = "user_id"
	EmailKey  = "email"
	ClaimsKey = "claims"
)

// RevocationChecker reports whether an access token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	tokenManager *jwt.TokenManager
	revocations  RevocationChecker
}

func NewAuthMiddleware(tokenManager *jwt.TokenManager, revocations RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		tokenManager: tokenManager,
		revocations:  revocations,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", err.Error()))
			return
		}

		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", "invalid or expired token"))
			return
		}

		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Fail open while the revocation store is unavailable.
				GetLogger(c).Warn("revocation check failed", zap.Error(err))
			} else if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("unauthorized", "token has been revoked"))
				return
			}
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(ClaimsKey, claims)

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != BearerSchema || parts[1] == "" {
		return "", ErrInvalidAuthHeader
	}

	return parts[1], nil
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := val.(uuid.UUID)
	return userID, ok
}

func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}

func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	val, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*jwt.Claims)
	return claims, ok
}

var (
	ErrMissingAuthHeader = &AuthError{Message: "authorization header is required"}
	ErrInvalidAuthHeader = &AuthError{Message: "invalid authorization header format"}
)

type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
