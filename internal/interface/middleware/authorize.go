package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/pkg/response"
)

// Route identifies a registered route by method and gin full path,
// e.g. {"GET", "/api/projects/:id"}.
type Route struct {
	Method string
	Path   string
}

// Policy maps routes to the roles allowed on them. Any one role suffices.
// Routes missing from the table are public.
type Policy map[Route][]entity.RoleName

func (p Policy) Required(method, path string) ([]entity.RoleName, bool) {
	roles, ok := p[Route{Method: method, Path: path}]
	return roles, ok
}

// Authorize enforces policy after Gate has run.
func Authorize(policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, guarded := policy.Required(c.Request.Method, c.FullPath())
		if !guarded {
			c.Next()
			return
		}
		if !PrincipalFrom(c).HasAnyRole(roles...) {
			response.Error[any](c, http.StatusUnauthorized, "Unauthorized: full authentication is required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
