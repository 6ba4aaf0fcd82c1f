package handler

import (
	"net/http"

	"location_saver_backend/internal/addresses/service"
	"location_saver_backend/internal/addresses/transport"
	"location_saver_backend/internal/session"
	"location_saver_backend/platform/httpkit"
	"location_saver_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create handles POST /api/v1/addresses.
func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}

	address := session.SavedAddress{
		FullAddress:     req.FullAddress,
		Latitude:        *req.Latitude,
		Longitude:       *req.Longitude,
		HouseNumber:     req.HouseNumber,
		ApartmentOrRoad: req.ApartmentOrRoad,
		Category:        req.Category,
	}
	if req.ID != nil {
		address.ID = *req.ID
	}

	saved, err := h.svc.Create(c.Request.Context(), id.UserID(), address)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toResponse(saved))
}

// List handles GET /api/v1/addresses.
func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	items, err := h.svc.List(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.ListAddressesResponse{Items: make([]transport.AddressResponse, 0, len(items)), Total: len(items)}
	for _, item := range items {
		resp.Items = append(resp.Items, toResponse(item))
	}
	httpkit.OK(c, resp)
}

func toResponse(a session.SavedAddress) transport.AddressResponse {
	return transport.AddressResponse{
		ID:              a.ID,
		FullAddress:     a.FullAddress,
		Latitude:        a.Latitude,
		Longitude:       a.Longitude,
		HouseNumber:     a.HouseNumber,
		ApartmentOrRoad: a.ApartmentOrRoad,
		Category:        a.Category,
		CreatedAt:       a.CreatedAt,
	}
}
