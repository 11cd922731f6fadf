package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zhanserikAmangeldi/taskmate-service/internal/dto"
)

const InternalKeyHeader = "X-Internal-Key"

// RequireInternalKey guards endpoints meant for schedulers and other services.
// With no key configured every call is rejected.
func RequireInternalKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(InternalKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse("forbidden", "invalid internal API key"))
			return
		}
		c.Next()
	}
}
