package service

import (
	"context"
	"testing"

	"github.com/guregu/null/v5"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"ticketdesk/application/tickets/domain"
	"ticketdesk/application/tickets/store"
)

func seededService(t *testing.T) domain.Service {
	t.Helper()

	st := store.New(nil, zap.NewNop())
	st.CreateTicket("a", "", 1, null.Int{})
	st.CreateTicket("b", "", 1, null.IntFrom(2))
	st.UpdateTicketStatus(1, domain.StatusClosed)
	st.AddComment(1, 2, "note", null.String{}, domain.CommentPlain)
	return NewService(st)
}

func TestListTickets(t *testing.T) {
	svc := seededService(t)

	t.Run("no filter returns everything newest-first", func(t *testing.T) {
		tickets := svc.ListTickets("")
		if len(tickets) != 2 {
			t.Fatalf("expected 2 tickets, got %d", len(tickets))
		}
		if tickets[0].Title != "b" {
			t.Errorf("expected newest-first, got %q first", tickets[0].Title)
		}
	})

	t.Run("filter by status", func(t *testing.T) {
		tickets := svc.ListTickets(domain.StatusClosed)
		if len(tickets) != 1 || tickets[0].ID != 1 {
			t.Errorf("expected only the closed ticket, got %+v", tickets)
		}

		if got := svc.ListTickets(domain.StatusCompletedPending); len(got) != 0 {
			t.Errorf("expected no COMPLETED_PENDING tickets, got %+v", got)
		}
	})
}

func TestStreamTickets(t *testing.T) {
	svc := seededService(t)

	resp := svc.StreamTickets(context.Background(), "")
	if resp.TotalCount != 2 {
		t.Errorf("expected total count 2, got %d", resp.TotalCount)
	}

	body := []byte{'['}
	first := true
	for chunk := range resp.ChunkChan {
		if chunk.Error != nil {
			t.Fatalf("unexpected chunk error: %v", chunk.Error)
		}
		if !first {
			body = append(body, ',')
		}
		body = append(body, *chunk.JSONBuf...)
		first = false
	}
	body = append(body, ']')

	var tickets []domain.Ticket
	if err := json.Unmarshal(body, &tickets); err != nil {
		t.Fatalf("streamed body is not valid JSON: %v (%s)", err, body)
	}
	if len(tickets) != 2 {
		t.Errorf("expected 2 streamed tickets, got %d", len(tickets))
	}
}

func TestGetComment(t *testing.T) {
	svc := seededService(t)

	comment, found := svc.GetComment(1)
	if !found || comment.Body != "note" {
		t.Errorf("expected comment 1, got %+v found=%v", comment, found)
	}

	if _, found := svc.GetComment(99); found {
		t.Errorf("expected comment 99 to be missing")
	}
}

func TestListComments(t *testing.T) {
	svc := seededService(t)

	if got := svc.ListComments(1); len(got) != 1 {
		t.Errorf("expected 1 comment for ticket 1, got %d", len(got))
	}
	if got := svc.ListComments(2); len(got) != 0 {
		t.Errorf("expected no comments for ticket 2, got %d", len(got))
	}
}
