package router

import (
	"net/http"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	mw "github.com/oksasatya/go-diagram-workspace/internal/interface/middleware"
)

var userOrAdmin = []entity.RoleName{entity.RoleUser, entity.RoleAdmin}

// Policy lists every route that needs a principal. Anything not listed,
// including signup, signin, render and the debug vars, is public.
var Policy = mw.Policy{
	{Method: http.MethodGet, Path: "/api/auth/me"}: userOrAdmin,

	{Method: http.MethodGet, Path: "/api/projects"}:             userOrAdmin,
	{Method: http.MethodPost, Path: "/api/projects"}:            userOrAdmin,
	{Method: http.MethodGet, Path: "/api/projects/search"}:      userOrAdmin,
	{Method: http.MethodGet, Path: "/api/projects/:id"}:         userOrAdmin,
	{Method: http.MethodPut, Path: "/api/projects/:id"}:         userOrAdmin,
	{Method: http.MethodDelete, Path: "/api/projects/:id"}:      userOrAdmin,
	{Method: http.MethodPost, Path: "/api/projects/:id/export"}: userOrAdmin,
}
