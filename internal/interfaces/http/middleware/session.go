package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/invoiceportal/backend/internal/infrastructure/auth"
	"github.com/invoiceportal/backend/internal/infrastructure/logger"
	"github.com/invoiceportal/backend/internal/interfaces/http/dto"
)

// Context keys populated by the Session middleware
const (
	SessionEmailKey = "session_email"
	SessionNameKey  = "session_name"
)

// Session verifies the Bearer session token and stores the authenticated
// identity on the request.
func Session(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "Authorization header must be a Bearer token")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session token")
			return
		}

		c.Set(SessionEmailKey, claims.Email)
		c.Set(SessionNameKey, claims.Name)
		ctx, _ := logger.WithActor(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.Email)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetSessionEmail returns the authenticated email, empty when unauthenticated.
func GetSessionEmail(c *gin.Context) string {
	return c.GetString(SessionEmailKey)
}

// GetSessionName returns the display name claimed by the session token.
func GetSessionName(c *gin.Context) string {
	return c.GetString(SessionNameKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
