package middleware

import (
	"net/http"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/gin-gonic/gin"
)

// RequireAdmin checks that the authenticated actor holds the admin role.
// Services check the role again; this only short-circuits the route group.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetActor(c).IsAdmin() {
			common.ErrorResponse(c, http.StatusForbidden, common.ErrForbidden.Error(), nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
