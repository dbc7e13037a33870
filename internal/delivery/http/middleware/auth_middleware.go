package middleware

import (
	"net/http"
	"strings"

	"agency-site-backend/internal/delivery/http/response"
	"agency-site-backend/internal/domain"
	"agency-site-backend/pkg/auth"
	"agency-site-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// AdminAuth guards the operator endpoints with an HS256 bearer token that
// must carry role=admin.
func AdminAuth(secret string, seclog *security.SecurityLogger) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))

		claims, err := auth.ParseAdminToken(key, tokenString, domain.RoleAdmin)
		if err != nil {
			seclog.LogUnauthorizedAccess(c.Request.Context(), c.ClientIP(), c.GetString("RequestID"), c.FullPath(), err.Error())
			response.Error(c, http.StatusUnauthorized, "Unauthorized", "")
			c.Abort()
			return
		}

		c.Set(string(domain.KeyAdminSubject), claims.Subject)
		c.Set(string(domain.KeyAdminRole), claims.Role)
		c.Next()
	}
}
