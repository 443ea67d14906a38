package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-diagram-workspace/internal/application"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/render"
	"github.com/oksasatya/go-diagram-workspace/internal/interface/middleware"
	"github.com/oksasatya/go-diagram-workspace/pkg/response"
)

type ProjectHandler struct {
	Svc    *application.ProjectService
	Logger *logrus.Logger
}

func NewProjectHandler(svc *application.ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Svc: svc, Logger: logger}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// Omitted fields stay untouched.
type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
}

type exportRequest struct {
	Format string `json:"format"`
}

type projectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProjectResponse(p *entity.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Content:     p.Content,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProjectList(ps []entity.Project) []projectResponse {
	out := make([]projectResponse, 0, len(ps))
	for i := range ps {
		out = append(out, toProjectResponse(&ps[i]))
	}
	return out
}

// List GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	ps, err := h.Svc.List(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProjectList(ps), "projects", map[string]any{"count": len(ps)})
}

// Create POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), middleware.PrincipalFrom(c), application.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProjectResponse(p), "project created", nil)
}

// Get GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProjectResponse(p), "project", nil)
}

// Update PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), application.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProjectResponse(p), "project updated", nil)
}

// Delete DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	const msg = "Project deleted successfully"
	response.Success(c, http.StatusOK, messageResponse{Message: msg}, msg, nil)
}

// Search GET /api/projects/search?q=
func (h *ProjectHandler) Search(c *gin.Context) {
	ps, err := h.Svc.Search(c.Request.Context(), middleware.PrincipalFrom(c), c.Query("q"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProjectList(ps), "search results", map[string]any{"count": len(ps)})
}

// Export POST /api/projects/:id/export {format}
func (h *ProjectHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	format := render.Vector
	if req.Format != "" {
		f, err := render.ParseFormat(req.Format)
		if err != nil {
			writeError(c, h.Logger, errs.NewValidation("format", "must be one of PNG, SVG, ASCII"))
			return
		}
		format = f
	}
	res, err := h.Svc.Export(c.Request.Context(), middleware.PrincipalFrom(c), c.Param("id"), format)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "project exported", nil)
}
