package session

import (
	"location_saver_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Get handles GET /api/v1/session. The route sits behind AuthRequired, so a
// store created after a restart is marked authenticated here.
func (h *Handler) Get(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	store := h.registry.Get(id.UserID())
	if !store.IsAuthenticated() {
		store.SetAuthenticated("")
	}
	httpkit.OK(c, store.Snapshot())
}
