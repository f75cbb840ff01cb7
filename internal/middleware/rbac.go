package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
	appErrors "github.com/noah-isme/exam-remuneration-api/pkg/errors"
	"github.com/noah-isme/exam-remuneration-api/pkg/response"
)

// RBAC enforces role-based access control for routes. A teacher is always
// allowed through for routes scoped to their own teacher ID.
func RBAC(allowed ...models.UserRole) gin.HandlerFunc {
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedRoles[role] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if claims.Role == models.RoleTeacher && claims.TeacherID != nil {
			if targetID := c.Param("teacherId"); targetID != "" && targetID == *claims.TeacherID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
