package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/equipage/facility-inventory/utils"
)

// Capability actions checked by the permission middleware.
const (
	PermAddItem      = "add_item"
	PermChangeItem   = "change_item"
	PermDeleteItem   = "delete_item"
	PermManageStatus = "manage_status"
	PermViewReports  = "view_reports"
)

// rolePermissions maps a role to the actions it may perform. Viewers can only
// read; managers run the inventory; admins additionally see reports.
var rolePermissions = map[string][]string{
	"viewer": {},
	"manager": {
		PermAddItem, PermChangeItem, PermDeleteItem, PermManageStatus,
	},
	"admin": {
		PermAddItem, PermChangeItem, PermDeleteItem, PermManageStatus, PermViewReports,
	},
}

// Can reports whether a role may perform an action.
func Can(role, action string) bool {
	for _, a := range rolePermissions[role] {
		if a == action {
			return true
		}
	}
	return false
}

// RequirePermission gates a route on a capability. Runs after AuthMiddleware.
func RequirePermission(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleInterface, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, utils.NewPermissionError("no role in context"))
			c.Abort()
			return
		}

		role, ok := roleInterface.(string)
		if !ok || !Can(role, action) {
			utils.RespondError(c, http.StatusForbidden,
				utils.NewPermissionError("role %q may not %s", roleInterface, action))
			c.Abort()
			return
		}

		c.Next()
	}
}
