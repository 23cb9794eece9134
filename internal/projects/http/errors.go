package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
)

const retryAfterSeconds = "5"

// writeError maps store errors onto HTTP responses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, domain.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "comment not found"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.As(err, &ce):
		body := gin.H{"ok": false, "error": "revision conflict, reload and retry", "expected_revision": ce.Expected}
		if ce.Actual >= 0 {
			body["current_revision"] = ce.Actual
		}
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "project already exists"})
	case errors.Is(err, domain.ErrStorageUnavailable):
		h.log.Warn("storage unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "storage unavailable, retry later"})
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}
