package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobboard/internal/apperr"
)

var errTimeout = apperr.New(apperr.KindUnavailable, "TIMEOUT", "request timed out").WithStatus(http.StatusGatewayTimeout)

// renderError writes the JSON error body for err and aborts the chain.
func renderError(c *gin.Context, err error) *apperr.Error {
	appErr := apperr.From(err)
	if appErr.Code == "INTERNAL" && errors.Is(err, context.DeadlineExceeded) {
		appErr = errTimeout.Wrap(err)
	}

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.AbortWithStatusJSON(appErr.Status, body)
	return appErr
}

func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := renderError(c, err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("request_id", requestID(c)).Error("request failed")
	}
}

// logWarnings records the causes behind warnings that are returned to the client.
func (h *Handler) logWarnings(c *gin.Context, errs []error) {
	for _, err := range errs {
		h.logger.WithError(err).WithField("request_id", requestID(c)).Warn("operation completed with warning")
	}
}

func pathID(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		renderError(c, apperr.Validation("invalid "+name).WithDetails(map[string]string{name: "must be a valid id"}))
		return "", false
	}
	return id.String(), true
}
