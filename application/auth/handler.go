package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ticketdesk/middleware"
)

// Handler handles HTTP requests for authentication and the roster.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{svc: service}
}

// RegisterRoutes registers the handler routes.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	authGroup := api.Group("/v1/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.Me)
	}
	api.GET("/v1/users", h.Users)
}

type loginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /v1/auth/login.
func (h *Handler) Login(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid JSON payload",
			Error:   err,
		})
		return
	}

	user, ok := h.svc.Login(payload.Email, payload.Password)
	if !ok {
		send(middleware.Response{
			Code:    http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
		return
	}

	send(middleware.Response{
		Message: "Logged in",
		Data:    user,
	})
}

// Logout handles POST /v1/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	h.svc.Logout()
	send(middleware.Response{Message: "Logged out"})
}

// Me handles GET /v1/auth/me.
func (h *Handler) Me(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	user, ok := h.svc.Current()
	if !ok {
		send(middleware.Response{
			Code:    http.StatusUnauthorized,
			Message: "Not logged in",
		})
		return
	}

	send(middleware.Response{Data: user})
}

// Users handles GET /v1/users.
func (h *Handler) Users(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	send(middleware.Response{Data: h.svc.Users()})
}
