package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-diagram-workspace/internal/application"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/render"
)

type RenderHandler struct {
	Svc    *application.RenderService
	Logger *logrus.Logger
}

func NewRenderHandler(svc *application.RenderService, logger *logrus.Logger) *RenderHandler {
	return &RenderHandler{Svc: svc, Logger: logger}
}

type renderRequest struct {
	SourceText string `json:"source_text"`
	Format     string `json:"format"`
}

// Render POST /api/render. Responds with the raw diagram bytes.
func (h *RenderHandler) Render(c *gin.Context) {
	var req renderRequest
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

	out, err := h.Svc.Render(c.Request.Context(), req.SourceText, format)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), out)
}
