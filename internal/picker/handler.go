package picker

import (
	"net/http"

	"location_saver_backend/internal/geocoding"
	"location_saver_backend/internal/session"
	"location_saver_backend/platform/httpkit"
	"location_saver_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// ClickRequest is the body of POST /picker/click.
type ClickRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// SearchRequest is the body of POST /picker/search.
type SearchRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

// SaveResponse is returned by POST /picker/save.
type SaveResponse struct {
	Address session.SavedAddress `json:"address"`
	Picker  Snapshot             `json:"picker"`
}

// CategoryOption is one entry of GET /picker/categories.
type CategoryOption struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
}

type Handler struct {
	machines *Manager
	val      *validator.Validator
}

func NewHandler(machines *Manager, val *validator.Validator) *Handler {
	return &Handler{machines: machines, val: val}
}

func (h *Handler) machine(c *gin.Context) (*Machine, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return nil, false
	}
	return h.machines.Machine(id.UserID()), true
}

// Get handles GET /api/v1/picker.
func (h *Handler) Get(c *gin.Context) {
	m, ok := h.machine(c)
	if !ok {
		return
	}
	httpkit.OK(c, m.Snapshot())
}

// Categories handles GET /api/v1/picker/categories.
func (h *Handler) Categories(c *gin.Context) {
	options := make([]CategoryOption, 0, len(Categories))
	for _, cat := range Categories {
		options = append(options, CategoryOption{Value: cat, Label: cat.Label()})
	}
	httpkit.OK(c, options)
}

// Click handles POST /api/v1/picker/click.
func (h *Handler) Click(c *gin.Context) {
	var req ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}
	m, ok := h.machine(c)
	if !ok {
		return
	}

	snap, err := m.SelectPoint(c.Request.Context(), geocoding.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// Locate handles POST /api/v1/picker/locate. The body carries the outcome of
// the browser's geolocation prompt.
func (h *Handler) Locate(c *gin.Context) {
	var report geocoding.PositionReport
	if err := c.ShouldBindJSON(&report); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	report.ClientIP = c.ClientIP()

	m, ok := h.machine(c)
	if !ok {
		return
	}

	snap, err := m.Locate(c.Request.Context(), report)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// Search handles POST /api/v1/picker/search.
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}
	m, ok := h.machine(c)
	if !ok {
		return
	}

	snap, err := m.Search(c.Request.Context(), req.Query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// UpdateDetails handles PATCH /api/v1/picker/details.
func (h *Handler) UpdateDetails(c *gin.Context) {
	var patch DetailsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(patch); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}
	m, ok := h.machine(c)
	if !ok {
		return
	}

	snap, err := m.UpdateDetails(patch)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}

// Save handles POST /api/v1/picker/save.
func (h *Handler) Save(c *gin.Context) {
	m, ok := h.machine(c)
	if !ok {
		return
	}

	saved, snap, err := m.Commit(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, SaveResponse{Address: saved, Picker: snap})
}

// Back handles POST /api/v1/picker/back.
func (h *Handler) Back(c *gin.Context) {
	m, ok := h.machine(c)
	if !ok {
		return
	}
	httpkit.OK(c, m.Back())
}
