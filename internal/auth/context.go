package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxSubject = "auth_subject"
	CtxMethod  = "auth_method"
)

// Subject returns the authenticated subject set by the middlewares, or "".
func Subject(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxSubject))
}
