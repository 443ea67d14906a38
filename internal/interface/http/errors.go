package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	"github.com/oksasatya/go-diagram-workspace/pkg/response"
	"github.com/oksasatya/go-diagram-workspace/pkg/validation"
)

const (
	msgUnauthorized    = "Unauthorized: full authentication is required"
	msgBadCredentials  = "invalid username or password"
	msgProjectNotFound = "Project not found"
	msgInternal        = "internal server error"
)

// writeError maps service errors onto the response envelope. Missing and
// foreign projects share one 400 so ids of other tenants cannot be probed.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		ve  *errs.ValidationError
		ce  *errs.ConflictError
		cfg *errs.ConfigurationError
		re  *errs.RenderError
	)
	switch {
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.ToDetails(ve))
	case errors.Is(err, errs.ErrAuthentication):
		response.Error[any](c, http.StatusUnauthorized, msgUnauthorized, nil)
	case errors.As(err, &ce):
		response.Error[any](c, http.StatusBadRequest, ce.Error(), nil)
	case errors.Is(err, errs.ErrNotFound):
		response.Error[any](c, http.StatusBadRequest, msgProjectNotFound, nil)
	case errors.As(err, &re):
		response.Error[any](c, http.StatusBadRequest, re.Error(), nil)
	case errors.Is(err, errs.ErrUnavailable):
		response.Error[any](c, http.StatusServiceUnavailable, "feature is not configured", nil)
	case errors.As(err, &cfg):
		logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("configuration fault")
		response.Error[any](c, http.StatusInternalServerError, msgInternal, nil)
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
		response.Error[any](c, http.StatusInternalServerError, msgInternal, nil)
	}
}

// badPayload reports JSON decode and binding failures.
func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
