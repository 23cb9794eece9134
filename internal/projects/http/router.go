package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group. Reads and writes are
// split so callers can put different middleware (rate limits) on each.
func (h *Handler) Register(read, write gin.IRoutes) {
	read.GET("", h.list)
	read.GET("/:public_id", h.get)

	write.POST("", h.create)
	write.PATCH("/:public_id", h.update)
	write.DELETE("/:public_id", h.delete)
	write.POST("/:public_id/comments", h.addComment)
	write.DELETE("/:public_id/comments/:comment_id", h.removeComment)
}
