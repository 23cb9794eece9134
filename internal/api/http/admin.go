package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/importer"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
)

const maxImportBytes = 8 << 20

// Purger runs one tombstone purge pass.
type Purger interface {
	RunOnce(ctx context.Context) (int, error)
}

// AdminHandler serves operator endpoints: CSV import and an on-demand purge.
type AdminHandler struct {
	projects importer.Creator
	purger   Purger
	log      *zap.Logger
}

func NewAdminHandler(projects importer.Creator, purger Purger, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{projects: projects, purger: purger, log: log}
}

func (h *AdminHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/import", h.importCSV)
	r.POST("/purge", h.purge)
}

type rowFailure struct {
	Line  int    `json:"line"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// importCSV accepts the CSV either as a multipart "file" field or as the raw body.
// ?dry_run=true validates without writing.
func (h *AdminHandler) importCSV(c *gin.Context) {
	var src io.Reader = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing file field"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable upload"})
			return
		}
		defer f.Close()
		src = f
	}

	res, err := importer.New(h.projects, h.log).
		DryRun(c.Query("dry_run") == "true").
		Import(c.Request.Context(), src)
	switch {
	case errors.Is(err, domain.ErrStorageUnavailable):
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "storage unavailable, retry later"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	failed := make([]rowFailure, 0, len(res.Failed))
	for _, rf := range res.Failed {
		failed = append(failed, rowFailure{Line: rf.Line, Name: rf.Name, Error: rf.Err.Error()})
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":      len(failed) == 0,
		"created": nonNil(res.Created),
		"skipped": nonNil(res.Skipped),
		"failed":  failed,
	})
}

func (h *AdminHandler) purge(c *gin.Context) {
	n, err := h.purger.RunOnce(c.Request.Context())
	if err != nil {
		h.log.Warn("purge failed", zap.Error(err))
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "purge failed", "purged": n})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "purged": n})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
