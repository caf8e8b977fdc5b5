package auth

import (
	"sync"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"ticketdesk/application/tickets/domain"
	"ticketdesk/common"
)

// Service is the identity provider: it authenticates against the fixed
// roster and keeps the logged-in user in its own durable slot. It is a
// collaborator of the ticket store, never consulted by it. The session
// is cached in memory and mirrored to the slot best-effort, so login
// keeps working when storage is down.
type Service struct {
	mu        sync.Mutex
	current   *common.User
	persister domain.Persister
	logger    *zap.Logger
	roster    []common.Credential
}

// NewService creates a Service over the fixed roster. A nil persister
// means the session lives only as long as the process.
func NewService(persister domain.Persister, logger *zap.Logger) *Service {
	return &Service{
		persister: persister,
		logger:    logger,
		roster:    common.Roster(),
	}
}

// Login checks the credentials against the roster. On success the safe
// user (no password) becomes the current session and is written to the
// identity slot.
func (s *Service) Login(email, password string) (common.User, bool) {
	for _, cred := range s.roster {
		if cred.Email != email || cred.Password != password {
			continue
		}

		user := cred.User
		s.mu.Lock()
		s.current = &user
		s.mu.Unlock()

		if s.persister != nil {
			raw, err := json.Marshal(user)
			if err == nil {
				err = s.persister.Set(domain.UserSlotKey, raw)
			}
			if err != nil {
				s.logger.Warn("failed to persist session", zap.Error(err))
			}
		}
		return user, true
	}
	return common.User{}, false
}

// Logout clears the session and the identity slot.
func (s *Service) Logout() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if s.persister == nil {
		return
	}
	if err := s.persister.Delete(domain.UserSlotKey); err != nil {
		s.logger.Warn("failed to clear session", zap.Error(err))
	}
}

// Current returns the logged-in user, falling back to the identity
// slot after a restart.
func (s *Service) Current() (common.User, bool) {
	s.mu.Lock()
	if s.current != nil {
		user := *s.current
		s.mu.Unlock()
		return user, true
	}
	s.mu.Unlock()

	if s.persister == nil {
		return common.User{}, false
	}
	raw, err := s.persister.Get(domain.UserSlotKey)
	if err != nil {
		return common.User{}, false
	}

	var user common.User
	if err := json.Unmarshal(raw, &user); err != nil {
		s.logger.Warn("stored session failed to parse", zap.Error(err))
		return common.User{}, false
	}

	s.mu.Lock()
	s.current = &user
	s.mu.Unlock()
	return user, true
}

// Users returns the roster with passwords stripped.
func (s *Service) Users() []common.User {
	return common.Users()
}
