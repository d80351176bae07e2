package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/id-portal/internal/models"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
	"github.com/noah-isme/id-portal/pkg/response"
)

// RequireRoles allows the request through only for sessions holding one of roles.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		session := SessionFromContext(c)
		if session == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[session.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
