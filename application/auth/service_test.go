package auth

import (
	"errors"
	"strings"
	"testing"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"ticketdesk/application/tickets/domain"
	"ticketdesk/common"
)

type memPersister struct {
	slots map[string][]byte
}

func newMemPersister() *memPersister {
	return &memPersister{slots: map[string][]byte{}}
}

func (p *memPersister) Get(key string) ([]byte, error) {
	value, ok := p.slots[key]
	if !ok {
		return nil, errors.New("slot not found")
	}
	return value, nil
}

func (p *memPersister) Set(key string, value []byte) error {
	p.slots[key] = value
	return nil
}

func (p *memPersister) Delete(key string) error {
	delete(p.slots, key)
	return nil
}

func (p *memPersister) Ping() error { return nil }

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantOK   bool
		wantRole common.Role
	}{
		{"senior logs in", "senior@example.com", "123456", true, common.RoleSenior},
		{"developer logs in", "dev1@example.com", "123456", true, common.RoleDeveloper},
		{"wrong password", "senior@example.com", "wrong", false, ""},
		{"unknown email", "nobody@example.com", "123456", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newMemPersister(), zap.NewNop())

			user, ok := svc.Login(tt.email, tt.password)
			if ok != tt.wantOK {
				t.Fatalf("Login() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && user.Role != tt.wantRole {
				t.Errorf("expected role %s, got %s", tt.wantRole, user.Role)
			}
		})
	}
}

func TestSessionSlot(t *testing.T) {
	persister := newMemPersister()
	svc := NewService(persister, zap.NewNop())

	user, ok := svc.Login("senior@example.com", "123456")
	if !ok {
		t.Fatal("login failed")
	}

	raw, found := persister.slots[domain.UserSlotKey]
	if !found {
		t.Fatal("expected the ticket-app-user slot to be written")
	}

	var stored common.User
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("stored session is not valid JSON: %v", err)
	}
	if stored != user {
		t.Errorf("stored user differs: want %+v, got %+v", user, stored)
	}

	// A fresh service over the same slot sees the session (restart).
	restarted := NewService(persister, zap.NewNop())
	current, ok := restarted.Current()
	if !ok || current != user {
		t.Errorf("expected session to survive restart, got %+v ok=%v", current, ok)
	}

	svc.Logout()
	if _, found := persister.slots[domain.UserSlotKey]; found {
		t.Error("expected the session slot cleared after logout")
	}
	if _, ok := svc.Current(); ok {
		t.Error("expected no current user after logout")
	}
}

func TestMemoryOnlySession(t *testing.T) {
	svc := NewService(nil, zap.NewNop())

	if _, ok := svc.Current(); ok {
		t.Error("expected no session before login")
	}

	user, ok := svc.Login("dev1@example.com", "123456")
	if !ok {
		t.Fatal("login failed")
	}

	current, ok := svc.Current()
	if !ok || current != user {
		t.Errorf("expected in-memory session, got %+v ok=%v", current, ok)
	}
}

func TestUsersHaveNoPasswords(t *testing.T) {
	svc := NewService(nil, zap.NewNop())

	users := svc.Users()
	if len(users) != 2 {
		t.Fatalf("expected roster of 2, got %d", len(users))
	}

	raw, err := json.Marshal(users)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, forbidden := range []string{"password", "123456"} {
		if strings.Contains(string(raw), forbidden) {
			t.Errorf("roster JSON leaks %q: %s", forbidden, raw)
		}
	}
}
