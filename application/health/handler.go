package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ticketdesk/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{svc: service}
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/health", h.HealthCheck)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	report, healthy := h.svc.CheckHealth()
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}

	send(middleware.Response{
		Code:    code,
		Message: "Health check completed",
		Data:    report,
	})
}
