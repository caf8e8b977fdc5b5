package domain

import (
	"time"

	"github.com/guregu/null/v5"
)

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	StatusInProgress       TicketStatus = "IN_PROGRESS"
	StatusCompletedPending TicketStatus = "COMPLETED_PENDING"
	StatusClosed           TicketStatus = "CLOSED"
)

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompletedPending, StatusClosed:
		return true
	}
	return false
}

// CommentType distinguishes plain comments from workflow updates.
type CommentType string

const (
	CommentPlain            CommentType = "COMMENT"
	CommentCompletionUpdate CommentType = "COMPLETION_UPDATE"
	CommentReviewFeedback   CommentType = "REVIEW_FEEDBACK"
)

// Valid reports whether t is one of the known comment types.
func (t CommentType) Valid() bool {
	switch t {
	case CommentPlain, CommentCompletionUpdate, CommentReviewFeedback:
		return true
	}
	return false
}

// Ticket is a trackable unit of work. Description holds serialized rich
// text produced by the editor widget; the store treats it as opaque.
type Ticket struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TicketStatus `json:"status"`
	CreatedByID  int          `json:"createdById"`
	AssignedToID null.Int     `json:"assignedToId"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Comment is a note attached to exactly one ticket. Body is opaque rich
// text like Ticket.Description; Code is a legacy optional field.
type Comment struct {
	ID        int         `json:"id"`
	TicketID  int         `json:"ticketId"`
	AuthorID  int         `json:"authorId"`
	Body      string      `json:"body"`
	Code      null.String `json:"code"`
	Type      CommentType `json:"type"`
	CreatedAt time.Time   `json:"createdAt"`
}

// TicketUpdate is a partial-field patch for a ticket. A nil pointer
// means the field was not provided and must be left untouched; a
// non-nil AssignedToID holding an invalid null.Int clears the assignee.
type TicketUpdate struct {
	Title        *string       `json:"title"`
	Description  *string       `json:"description"`
	Status       *TicketStatus `json:"status"`
	AssignedToID *null.Int     `json:"assignedToId"`
}

// CommentUpdate is a partial-field patch for a comment. Only body and
// code are mutable; type, ticketId and authorId are fixed at creation.
type CommentUpdate struct {
	Body *string      `json:"body"`
	Code *null.String `json:"code"`
}

// State is the full store content as it is persisted.
type State struct {
	Tickets  []Ticket  `json:"tickets"`
	Comments []Comment `json:"comments"`
}

// PersistedState is the exact layout written to the durable slot.
type PersistedState struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}

// StateVersion is the current persisted layout version.
const StateVersion = 1

// StoreSlotKey is the durable slot holding the serialized store state.
const StoreSlotKey = "ticket-store"

// UserSlotKey is the durable slot holding the logged-in user, owned by
// the identity provider and only read by the view layer.
const UserSlotKey = "ticket-app-user"
