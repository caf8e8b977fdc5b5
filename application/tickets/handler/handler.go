package handler

import (
	stdjson "encoding/json"
	"net/http"
	"strconv"

	"github.com/guregu/null/v5"
	json "github.com/json-iterator/go"

	"github.com/gin-gonic/gin"

	"ticketdesk/application/tickets/domain"
	"ticketdesk/common"
	"ticketdesk/middleware"
)

// Identity supplies the logged-in user. Role gating happens here at
// the HTTP boundary; the store itself trusts its callers.
type Identity interface {
	Current() (common.User, bool)
}

// Handler handles HTTP requests for tickets and comments.
type Handler struct {
	store    domain.Store
	svc      domain.Service
	identity Identity
}

// NewHandler creates a new Handler.
func NewHandler(store domain.Store, service domain.Service, identity Identity) *Handler {
	return &Handler{store: store, svc: service, identity: identity}
}

// RegisterRoutes registers the handler routes.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	tickets := api.Group("/v1/tickets")
	{
		tickets.GET("", h.ListTickets)
		tickets.GET("/stream", h.StreamTickets)
		tickets.POST("", h.CreateTicket)
		tickets.GET("/:id", h.GetTicket)
		tickets.PATCH("/:id", h.EditTicket)
		tickets.PATCH("/:id/status", h.UpdateStatus)
		tickets.DELETE("/:id", h.RemoveTicket)
		tickets.GET("/:id/comments", h.ListComments)
		tickets.POST("/:id/comments", h.AddComment)
	}
	comments := api.Group("/v1/comments")
	{
		comments.PATCH("/:id", h.UpdateComment)
		comments.DELETE("/:id", h.DeleteComment)
	}
}

// currentUser resolves the logged-in user or sends a 401.
func (h *Handler) currentUser(c *gin.Context, send func(middleware.Response)) (common.User, bool) {
	user, ok := h.identity.Current()
	if !ok {
		send(middleware.Response{
			Code:    http.StatusUnauthorized,
			Message: "Not logged in",
		})
	}
	return user, ok
}

// pathID parses the :id route parameter or sends a 400.
func pathID(c *gin.Context, send func(middleware.Response)) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid id",
			Error:   err,
		})
		return 0, false
	}
	return id, true
}

// statusFilter reads the optional ?status= query parameter.
func statusFilter(c *gin.Context, send func(middleware.Response)) (domain.TicketStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return "", true
	}
	filter := domain.TicketStatus(raw)
	if !filter.Valid() {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Unknown status filter",
		})
		return "", false
	}
	return filter, true
}

// ListTickets handles GET /v1/tickets.
func (h *Handler) ListTickets(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	filter, ok := statusFilter(c, send)
	if !ok {
		return
	}

	send(middleware.Response{Data: h.svc.ListTickets(filter)})
}

// StreamTickets handles GET /v1/tickets/stream.
func (h *Handler) StreamTickets(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))
	sendStream := c.MustGet("sendStream").(func(middleware.StreamResponse))

	filter, ok := statusFilter(c, send)
	if !ok {
		return
	}

	sendStream(h.svc.StreamTickets(c.Request.Context(), filter))
}

// GetTicket handles GET /v1/tickets/:id.
func (h *Handler) GetTicket(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	id, ok := pathID(c, send)
	if !ok {
		return
	}

	ticket, found := h.svc.GetTicket(id)
	if !found {
		send(middleware.Response{
			Code:    http.StatusNotFound,
			Message: "Ticket not found",
		})
		return
	}

	send(middleware.Response{Data: ticket})
}

type createTicketPayload struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	AssignedToID null.Int `json:"assignedToId"`
}

// CreateTicket handles POST /v1/tickets. Only seniors create tickets.
func (h *Handler) CreateTicket(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	user, ok := h.currentUser(c, send)
	if !ok {
		return
	}
	if user.Role != common.RoleSenior {
		send(middleware.Response{
			Code:    http.StatusForbidden,
			Message: "Only seniors may create tickets",
		})
		return
	}

	var payload createTicketPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid JSON payload",
			Error:   err,
		})
		return
	}

	h.store.CreateTicket(payload.Title, payload.Description, user.ID, payload.AssignedToID)

	created := h.store.Tickets()
	var data any
	if len(created) > 0 {
		data = created[0]
	}
	send(middleware.Response{
		Code:    http.StatusCreated,
		Message: "Ticket created",
		Data:    data,
	})
}

// editTicketPayload keeps assignedToId as raw JSON so an explicit null
// (clear the assignee) stays distinguishable from an omitted field.
type editTicketPayload struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	Status       *domain.TicketStatus `json:"status"`
	AssignedToID stdjson.RawMessage   `json:"assignedToId"`
}

func (p *editTicketPayload) toUpdate() (domain.TicketUpdate, error) {
	upd := domain.TicketUpdate{
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
	}
	if len(p.AssignedToID) > 0 {
		var assignee null.Int
		if err := json.Unmarshal(p.AssignedToID, &assignee); err != nil {
			return domain.TicketUpdate{}, err
		}
		upd.AssignedToID = &assignee
	}
	return upd, nil
}

// EditTicket handles PATCH /v1/tickets/:id. Title, description and
// reassignment are senior-only; developers may move status anywhere
// except CLOSED.
func (h *Handler) EditTicket(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	user, ok := h.currentUser(c, send)
	if !ok {
		return
	}
	id, ok := pathID(c, send)
	if !ok {
		return
	}

	var payload editTicketPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid JSON payload",
			Error:   err,
		})
		return
	}

	upd, err := payload.toUpdate()
	if err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid assignedToId",
			Error:   err,
		})
		return
	}

	if upd.Status != nil && !upd.Status.Valid() {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Unknown status",
		})
		return
	}

	if user.Role != common.RoleSenior {
		if upd.Title != nil || upd.Description != nil || upd.AssignedToID != nil {
			send(middleware.Response{
				Code:    http.StatusForbidden,
				Message: "Only seniors may edit ticket fields",
			})
			return
		}
		if upd.Status != nil && *upd.Status == domain.StatusClosed {
			send(middleware.Response{
				Code:    http.StatusForbidden,
				Message: "Only seniors may close tickets",
			})
			return
		}
	}

	h.store.EditTicket(id, upd)

	ticket, _ := h.store.Ticket(id)
	send(middleware.Response{
		Message: "Ticket updated",
		Data:    ticket,
	})
}

type updateStatusPayload struct {
	Status domain.TicketStatus `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /v1/tickets/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	user, ok := h.currentUser(c, send)
	if !ok {
		return
	}
	id, ok := pathID(c, send)
	if !ok {
		return
	}

	var payload updateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid JSON payload",
			Error:   err,
		})
		return
	}

	if !payload.Status.Valid() {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Unknown status",
		})
		return
	}

	if payload.Status == domain.StatusClosed && user.Role != common.RoleSenior {
		send(middleware.Response{
			Code:    http.StatusForbidden,
			Message: "Only seniors may close tickets",
		})
		return
	}

	h.store.UpdateTicketStatus(id, payload.Status)

	ticket, _ := h.store.Ticket(id)
	send(middleware.Response{
		Message: "Status updated",
		Data:    ticket,
	})
}

// RemoveTicket handles DELETE /v1/tickets/:id. Comments cascade inside
// the store.
func (h *Handler) RemoveTicket(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	user, ok := h.currentUser(c, send)
	if !ok {
		return
	}
	if user.Role != common.RoleSenior {
		send(middleware.Response{
			Code:    http.StatusForbidden,
			Message: "Only seniors may delete tickets",
		})
		return
	}

	id, ok := pathID(c, send)
	if !ok {
		return
	}

	h.store.RemoveTicket(id)
	send(middleware.Response{Message: "Ticket removed"})
}

// ListComments handles GET /v1/tickets/:id/comments.
func (h *Handler) ListComments(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	id, ok := pathID(c, send)
	if !ok {
		return
	}

	send(middleware.Response{Data: h.svc.ListComments(id)})
}

type addCommentPayload struct {
	Body string             `json:"body" binding:"required"`
	Code null.String        `json:"code"`
	Type domain.CommentType `json:"type"`
}

// AddComment handles POST /v1/tickets/:id/comments. The author is
// always the logged-in user.
func (h *Handler) AddComment(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	user, ok := h.currentUser(c, send)
	if !ok {
		return
	}
	id, ok := pathID(c, send)
	if !ok {
		return
	}

	var payload addCommentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid JSON payload",
			Error:   err,
		})
		return
	}

	if payload.Type == "" {
		payload.Type = domain.CommentPlain
	}
	if !payload.Type.Valid() {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Unknown comment type",
		})
		return
	}

	h.store.AddComment(id, user.ID, payload.Body, payload.Code, payload.Type)

	comments := h.store.CommentsForTicket(id)
	var data any
	if len(comments) > 0 {
		data = comments[len(comments)-1]
	}
	send(middleware.Response{
		Code:    http.StatusCreated,
		Message: "Comment added",
		Data:    data,
	})
}

// updateCommentPayload keeps code raw so explicit null clears it.
type updateCommentPayload struct {
	Body *string         `json:"body"`
	Code stdjson.RawMessage `json:"code"`
}

func (p *updateCommentPayload) toUpdate() (domain.CommentUpdate, error) {
	upd := domain.CommentUpdate{Body: p.Body}
	if len(p.Code) > 0 {
		var code null.String
		if err := json.Unmarshal(p.Code, &code); err != nil {
			return domain.CommentUpdate{}, err
		}
		upd.Code = &code
	}
	return upd, nil
}

// mayTouchComment applies the ownership rule: seniors touch any
// comment, developers only their own.
func mayTouchComment(user common.User, comment domain.Comment) bool {
	if user.Role == common.RoleSenior {
		return true
	}
	return comment.AuthorID == user.ID
}

// UpdateComment handles PATCH /v1/comments/:id.
func (h *Handler) UpdateComment(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	user, ok := h.currentUser(c, send)
	if !ok {
		return
	}
	id, ok := pathID(c, send)
	if !ok {
		return
	}

	var payload updateCommentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid JSON payload",
			Error:   err,
		})
		return
	}

	upd, err := payload.toUpdate()
	if err != nil {
		send(middleware.Response{
			Code:    http.StatusBadRequest,
			Message: "Invalid code value",
			Error:   err,
		})
		return
	}

	if comment, found := h.svc.GetComment(id); found && !mayTouchComment(user, comment) {
		send(middleware.Response{
			Code:    http.StatusForbidden,
			Message: "You may only edit your own comments",
		})
		return
	}

	h.store.UpdateComment(id, upd)

	comment, _ := h.svc.GetComment(id)
	send(middleware.Response{
		Message: "Comment updated",
		Data:    comment,
	})
}

// DeleteComment handles DELETE /v1/comments/:id.
func (h *Handler) DeleteComment(c *gin.Context) {
	send := c.MustGet("send").(func(middleware.Response))

	user, ok := h.currentUser(c, send)
	if !ok {
		return
	}
	id, ok := pathID(c, send)
	if !ok {
		return
	}

	if comment, found := h.svc.GetComment(id); found && !mayTouchComment(user, comment) {
		send(middleware.Response{
			Code:    http.StatusForbidden,
			Message: "You may only delete your own comments",
		})
		return
	}

	h.store.DeleteComment(id)
	send(middleware.Response{Message: "Comment deleted"})
}
