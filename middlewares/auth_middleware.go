package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/equipage/facility-inventory/utils"
)

// AuthMiddleware accepts a bearer token in the Authorization header or a
// token query parameter (used by the websocket feed). Unauthenticated
// requests get a 401 with a login_url hint for browser clients.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token != "" {
			if !strings.HasPrefix(token, "Bearer ") {
				utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid token format"))
				c.Abort()
				return
			}
			token = strings.TrimPrefix(token, "Bearer ")
		} else {
			token = c.Query("token")
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":    false,
				"message":   "authentication required",
				"login_url": "/login",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
