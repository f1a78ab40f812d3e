package resultapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"caption-eval-compare/backend/internal/coreengine/comparison"
	"caption-eval-compare/backend/internal/coreengine/distribution"
	"caption-eval-compare/backend/internal/coreengine/resultset"
	"caption-eval-compare/backend/internal/datastore"
	"caption-eval-compare/backend/internal/ingest"
)

// StatusFor maps an error from ingestion or analysis to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, datastore.ErrNoSession):
		return http.StatusConflict
	case errors.Is(err, ingest.ErrSource):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, resultset.ErrJobTypeMismatch),
		errors.Is(err, comparison.ErrInsufficientGroups),
		errors.Is(err, comparison.ErrEmptyGroup),
		errors.Is(err, comparison.ErrDegenerateAnova):
		return http.StatusUnprocessableEntity
	case errors.Is(err, resultset.ErrMalformedInput),
		errors.Is(err, resultset.ErrIngestion),
		errors.Is(err, resultset.ErrUnknownKey),
		errors.Is(err, comparison.ErrSelection),
		errors.Is(err, distribution.ErrUnitMismatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	entry := h.Log.WithError(err).WithField("path", c.FullPath())
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
