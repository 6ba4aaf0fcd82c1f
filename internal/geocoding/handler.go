package geocoding

import (
	"net/http"

	"location_saver_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// ReverseRequest is the query of GET /maps/reverse.
type ReverseRequest struct {
	Lat *float64 `form:"lat" binding:"required,gte=-90,lte=90"`
	Lng *float64 `form:"lng" binding:"required,gte=-180,lte=180"`
}

// SearchRequest is the query of GET /maps/search.
type SearchRequest struct {
	Query string `form:"q" binding:"required,min=3"`
}

// ReverseResponse pairs the coordinate with its display label.
type ReverseResponse struct {
	Coordinate
	Label    string `json:"label"`
	Provider string `json:"provider"`
}

// Handler exposes the standalone geocoding endpoints.
type Handler struct {
	gateway *Gateway
}

func NewHandler(gateway *Gateway) *Handler {
	return &Handler{gateway: gateway}
}

// Reverse handles GET /api/v1/maps/reverse?lat=...&lng=...
func (h *Handler) Reverse(c *gin.Context) {
	var req ReverseRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'lat' and 'lng' are required and must be in range", nil)
		return
	}

	coord := Coordinate{Latitude: *req.Lat, Longitude: *req.Lng}
	httpkit.OK(c, ReverseResponse{
		Coordinate: coord,
		Label:      h.gateway.ReverseGeocode(c.Request.Context(), coord),
		Provider:   h.gateway.ProviderName(),
	})
}

// Search handles GET /api/v1/maps/search?q=...
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'q' is required (min 3 chars)", nil)
		return
	}

	httpkit.OK(c, h.gateway.SearchPlaces(c.Request.Context(), req.Query))
}
