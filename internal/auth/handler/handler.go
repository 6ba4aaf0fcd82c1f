package handler

import (
	"net/http"

	"location_saver_backend/internal/auth/service"
	"location_saver_backend/internal/auth/transport"
	"location_saver_backend/platform/httpkit"
	"location_saver_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest    = "invalid request"
	msgInvalidCredential = "a valid email and a password of at least 8 characters are required"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPublicRoutes mounts register and login.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
}

// RegisterProtectedRoutes mounts the routes that need a valid token.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/logout", h.Logout)
	rg.GET("/session", h.Session)
}

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCredential, validator.Fields(err))
		return
	}

	result, err := h.svc.Register(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toAuthResponse(result))
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCredential, validator.Fields(err))
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toAuthResponse(result))
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	err := h.svc.Logout(c.Request.Context(), id.UserID(), id.TokenID(), id.TokenExpiresAt())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "logged out"})
}

// Session handles GET /api/v1/auth/session.
func (h *Handler) Session(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	user, err := h.svc.CurrentUser(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SessionResponse{Authenticated: true, User: toUserResponse(user)})
}

func toAuthResponse(r service.Result) transport.AuthResponse {
	return transport.AuthResponse{Token: r.Token, User: toUserResponse(r.User)}
}

func toUserResponse(u service.User) transport.UserResponse {
	return transport.UserResponse{ID: u.ID.String(), Email: u.Email, CreatedAt: u.CreatedAt}
}
