// Package store owns the in-memory ticket and comment collections and
// their mutation protocol: derived id assignment, partial-field merges,
// cascade deletes, and best-effort mirroring into the durable slot.
package store

import (
	"sync"
	"time"

	"github.com/guregu/null/v5"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"ticketdesk/application/tickets/domain"
)

// Store holds the authoritative collections. A single mutex serializes
// mutations, so observers always see a state some exact operation
// sequence produced. Tickets are newest-first, comments oldest-first.
type Store struct {
	mu       sync.Mutex
	tickets  []domain.Ticket
	comments []domain.Comment

	persister domain.Persister
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithClock overrides the time source. Tests use this to get a
// controllable, strictly increasing clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store backed by the given slot. A nil persister means
// memory-only operation; every mutation still succeeds.
func New(persister domain.Persister, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		tickets:   []domain.Ticket{},
		comments:  []domain.Comment{},
		persister: persister,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load rehydrates the collections from the durable slot. A missing
// slot, an unreachable backend, or a malformed payload all leave the
// store empty; none of them is an error to the caller.
func (s *Store) Load() {
	if s.persister == nil {
		return
	}

	raw, err := s.persister.Get(domain.StoreSlotKey)
	if err != nil {
		s.logger.Info("no persisted state, starting empty", zap.Error(err))
		return
	}

	var persisted domain.PersistedState
	if err := json.Unmarshal(raw, &persisted); err != nil {
		s.logger.Warn("persisted state failed to parse, starting empty", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if persisted.State.Tickets != nil {
		s.tickets = persisted.State.Tickets
	}
	if persisted.State.Comments != nil {
		s.comments = persisted.State.Comments
	}
	s.logger.Info("store rehydrated",
		zap.Int("tickets", len(s.tickets)),
		zap.Int("comments", len(s.comments)),
	)
}

// nextTicketID derives the next id from the live collection: 1 when
// empty, max+1 otherwise. Deliberately not a counter; deleting the
// highest ticket frees its id for reuse.
func nextTicketID(tickets []domain.Ticket) int {
	max := 0
	for _, t := range tickets {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

func nextCommentID(comments []domain.Comment) int {
	max := 0
	for _, c := range comments {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

// CreateTicket prepends a new ticket with a derived id, status fixed to
// IN_PROGRESS and both timestamps set to now. Title and description are
// stored as given; trimming and validation are the caller's job.
func (s *Store) CreateTicket(title, description string, createdByID int, assignedToID null.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ticket := domain.Ticket{
		ID:           nextTicketID(s.tickets),
		Title:        title,
		Description:  description,
		Status:       domain.StatusInProgress,
		CreatedByID:  createdByID,
		AssignedToID: assignedToID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.tickets = append([]domain.Ticket{ticket}, s.tickets...)
	s.persistLocked()
}

// EditTicket merges the provided fields into the matching ticket and
// refreshes updatedAt. Unknown ids are a silent no-op.
func (s *Store) EditTicket(ticketID int, upd domain.TicketUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tickets {
		if s.tickets[i].ID != ticketID {
			continue
		}
		t := &s.tickets[i]
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Description != nil {
			t.Description = *upd.Description
		}
		if upd.Status != nil {
			t.Status = *upd.Status
		}
		if upd.AssignedToID != nil {
			t.AssignedToID = *upd.AssignedToID
		}
		t.UpdatedAt = s.now()
		s.persistLocked()
		return
	}
}

// UpdateTicketStatus is the single-field variant of EditTicket.
func (s *Store) UpdateTicketStatus(ticketID int, status domain.TicketStatus) {
	s.EditTicket(ticketID, domain.TicketUpdate{Status: &status})
}

// RemoveTicket deletes the ticket and cascades to every comment that
// references it, in one critical section.
func (s *Store) RemoveTicket(ticketID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	kept := s.tickets[:0]
	for _, t := range s.tickets {
		if t.ID == ticketID {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return
	}
	s.tickets = kept

	keptComments := s.comments[:0]
	for _, c := range s.comments {
		if c.TicketID == ticketID {
			continue
		}
		keptComments = append(keptComments, c)
	}
	s.comments = keptComments
	s.persistLocked()
}

// AddComment appends a new comment with a derived id and createdAt set
// to now. The ticket id is recorded as given and not checked against
// live tickets; callers are expected to comment on tickets they can
// see.
func (s *Store) AddComment(ticketID, authorID int, body string, code null.String, typ domain.CommentType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if typ == "" {
		typ = domain.CommentPlain
	}
	comment := domain.Comment{
		ID:        nextCommentID(s.comments),
		TicketID:  ticketID,
		AuthorID:  authorID,
		Body:      body,
		Code:      code,
		Type:      typ,
		CreatedAt: s.now(),
	}
	s.comments = append(s.comments, comment)
	s.persistLocked()
}

// UpdateComment merges body and code into the matching comment. Type,
// ticket and author are immutable after creation.
func (s *Store) UpdateComment(commentID int, upd domain.CommentUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.comments {
		if s.comments[i].ID != commentID {
			continue
		}
		if upd.Body != nil {
			s.comments[i].Body = *upd.Body
		}
		if upd.Code != nil {
			s.comments[i].Code = *upd.Code
		}
		s.persistLocked()
		return
	}
}

// DeleteComment removes the matching comment; silent no-op on miss.
func (s *Store) DeleteComment(commentID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.comments {
		if s.comments[i].ID == commentID {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// Tickets returns a snapshot copy of the collection, newest-first.
func (s *Store) Tickets() []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Ticket, len(s.tickets))
	copy(out, s.tickets)
	return out
}

// Comments returns a snapshot copy of the collection, oldest-first.
func (s *Store) Comments() []domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Comment, len(s.comments))
	copy(out, s.comments)
	return out
}

// Ticket returns one ticket by id.
func (s *Store) Ticket(ticketID int) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tickets {
		if t.ID == ticketID {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

// CommentsForTicket returns the comments of one ticket, oldest-first.
func (s *Store) CommentsForTicket(ticketID int) []domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Comment{}
	for _, c := range s.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out
}

// persistLocked mirrors the current state into the durable slot.
// Callers hold the mutex. Failures are logged and swallowed; the store
// keeps operating in memory.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}

	persisted := domain.PersistedState{
		State: domain.State{
			Tickets:  s.tickets,
			Comments: s.comments,
		},
		Version: domain.StateVersion,
	}

	raw, err := json.Marshal(persisted)
	if err != nil {
		s.logger.Warn("failed to encode store state", zap.Error(err))
		return
	}
	if err := s.persister.Set(domain.StoreSlotKey, raw); err != nil {
		s.logger.Warn("failed to persist store state", zap.Error(err))
	}
}
