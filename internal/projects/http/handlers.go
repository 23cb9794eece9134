package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/auth"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
)

func (h *Handler) list(c *gin.Context) {
	f := domain.Filter{
		Category: domain.Category(c.Query("category")),
		Status:   domain.Status(c.Query("status")),
		Query:    c.Query("q"),
	}
	if raw := c.Query("due_before"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			badRequest(c, "invalid due_before")
			return
		}
		f.DueBefore = &d
	}

	items, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("public_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeProject(c, http.StatusOK, p)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}

	p, err := h.svc.Create(c.Request.Context(), req.fields())
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeProject(c, http.StatusCreated, p)
}

func (h *Handler) update(c *gin.Context) {
	var req patchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	rev, ok := expectedRevision(c, req.Revision)
	if !ok {
		badRequest(c, "revision required")
		return
	}

	p, err := h.svc.Patch(c.Request.Context(), c.Param("public_id"), rev, req.patch())
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeProject(c, http.StatusOK, p)
}

func (h *Handler) delete(c *gin.Context) {
	rev, ok := expectedRevision(c, nil)
	if !ok {
		badRequest(c, "revision required")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), c.Param("public_id"), rev); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) addComment(c *gin.Context) {
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	rev, ok := expectedRevision(c, req.Revision)
	if !ok {
		badRequest(c, "revision required")
		return
	}

	author := auth.Subject(c)
	if author == "" {
		author = req.Author
	}
	p, err := h.svc.Comment(c.Request.Context(), c.Param("public_id"), rev, author, req.Body)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeProject(c, http.StatusCreated, p)
}

func (h *Handler) removeComment(c *gin.Context) {
	rev, ok := expectedRevision(c, nil)
	if !ok {
		badRequest(c, "revision required")
		return
	}
	p, err := h.svc.Uncomment(c.Request.Context(), c.Param("public_id"), rev, c.Param("comment_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeProject(c, http.StatusOK, p)
}

func writeProject(c *gin.Context, status int, p domain.Project) {
	c.Header("ETag", strconv.Quote(strconv.FormatInt(p.Revision, 10)))
	c.JSON(status, gin.H{"ok": true, "project": p})
}

// expectedRevision takes the revision from the body, then If-Match, then ?revision=.
func expectedRevision(c *gin.Context, body *int64) (int64, bool) {
	if body != nil {
		return *body, *body >= 0
	}
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	if raw == "" {
		raw = c.Query("revision")
	}
	if raw == "" {
		return 0, false
	}
	rev, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || rev < 0 {
		return 0, false
	}
	return rev, true
}
