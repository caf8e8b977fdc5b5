package service

import (
	"context"

	"ticketdesk/application/tickets/domain"
	"ticketdesk/internal/stream"
	"ticketdesk/middleware"
)

// service implements domain.Service on top of the store. It only ever
// reads snapshots; mutations go straight to the store from the
// handlers.
type service struct {
	store    domain.Store
	streamer *stream.Streamer[domain.Ticket]
}

// NewService creates a new Service instance.
func NewService(store domain.Store) domain.Service {
	return &service{
		store:    store,
		streamer: stream.NewStreamer[domain.Ticket](stream.DefaultConfig()),
	}
}

// ListTickets returns the current snapshot, newest-first, optionally
// filtered by status. An empty filter returns everything.
func (s *service) ListTickets(filter domain.TicketStatus) []domain.Ticket {
	tickets := s.store.Tickets()
	if filter == "" {
		return tickets
	}

	filtered := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.Status == filter {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// StreamTickets emits the (optionally filtered) snapshot as chunked
// JSON compatible with the middleware stream sender.
func (s *service) StreamTickets(ctx context.Context, filter domain.TicketStatus) middleware.StreamResponse {
	return s.streamer.StreamSlice(ctx, s.ListTickets(filter))
}

// GetTicket returns one ticket by id.
func (s *service) GetTicket(ticketID int) (domain.Ticket, bool) {
	return s.store.Ticket(ticketID)
}

// ListComments returns the comments of one ticket, oldest-first.
func (s *service) ListComments(ticketID int) []domain.Comment {
	return s.store.CommentsForTicket(ticketID)
}

// GetComment returns one comment by id.
func (s *service) GetComment(commentID int) (domain.Comment, bool) {
	for _, c := range s.store.Comments() {
		if c.ID == commentID {
			return c, true
		}
	}
	return domain.Comment{}, false
}
