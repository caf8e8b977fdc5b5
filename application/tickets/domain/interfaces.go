package domain

import (
	"context"

	"github.com/guregu/null/v5"

	"ticketdesk/middleware"
)

// Store owns the ticket and comment collections. Every mutator is a
// total function over the current state: unknown ids are silent no-ops
// and nothing is ever signaled to the caller. Persistence happens
// inside the store after each mutation, best-effort.
type Store interface {
	// CreateTicket assigns a derived id (1 on empty, max+1 otherwise),
	// prepends the ticket with status IN_PROGRESS and both timestamps
	// set to now.
	CreateTicket(title, description string, createdByID int, assignedToID null.Int)

	// EditTicket merges the provided fields into the matching ticket
	// and refreshes updatedAt.
	EditTicket(ticketID int, upd TicketUpdate)

	// RemoveTicket deletes the ticket and every comment referencing it.
	RemoveTicket(ticketID int)

	// UpdateTicketStatus is the single-field variant of EditTicket.
	UpdateTicketStatus(ticketID int, status TicketStatus)

	// AddComment assigns a derived id over the comment collection and
	// appends. The ticket id is not checked against live tickets.
	AddComment(ticketID, authorID int, body string, code null.String, typ CommentType)

	// UpdateComment merges body/code into the matching comment.
	UpdateComment(commentID int, upd CommentUpdate)

	// DeleteComment removes the matching comment.
	DeleteComment(commentID int)

	// Tickets returns a snapshot copy, newest-first.
	Tickets() []Ticket

	// Comments returns a snapshot copy, oldest-first.
	Comments() []Comment

	// Ticket returns a single ticket by id.
	Ticket(ticketID int) (Ticket, bool)

	// CommentsForTicket returns the comments of one ticket, oldest-first.
	CommentsForTicket(ticketID int) []Comment
}

// Persister is the durable client-local key/value slot the store
// mirrors its state into. Implementations must make Set/Get round-trip
// byte-for-byte.
type Persister interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Ping() error
}

// Service is the read/stream surface the handlers consume on top of
// the store. Mutations go to the Store directly.
type Service interface {
	// ListTickets returns the snapshot, optionally filtered by status.
	// An empty filter returns everything.
	ListTickets(filter TicketStatus) []Ticket

	// StreamTickets emits the (optionally filtered) snapshot as
	// chunked JSON.
	StreamTickets(ctx context.Context, filter TicketStatus) middleware.StreamResponse

	// GetTicket returns one ticket by id.
	GetTicket(ticketID int) (Ticket, bool)

	// ListComments returns the comments of one ticket.
	ListComments(ticketID int) []Comment

	// GetComment returns one comment by id.
	GetComment(commentID int) (Comment, bool)
}
