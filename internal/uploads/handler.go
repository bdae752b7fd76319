package uploads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"application-tracker/internal/shared/server/respond"
	"application-tracker/internal/shared/telemetry"
)

// Handler serves stored attachments back by ref.
type Handler struct {
	sink *Sink
}

func NewHandler(sink *Sink) *Handler {
	return &Handler{sink: sink}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/uploads/:ref", h.Download)
}

func (h *Handler) Download(c *gin.Context) {
	ref := c.Param("ref")
	rc, err := h.sink.Open(c.Request.Context(), ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "attachment not found", nil)
			return
		}
		telemetry.Error("uploads.open_failed", map[string]any{
			"ref":        ref,
			"error":      err.Error(),
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "server_error", "failed to open attachment", nil)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, ContentTypeFor(ref), rc, map[string]string{
		"Content-Disposition": `inline; filename="` + ref + `"`,
	})
}
