package health

import "ticketdesk/application/tickets/domain"

// Repository probes the durable slot backend. A nil persister means
// the service runs memory-only.
type Repository struct {
	persister domain.Persister
}

func NewRepository(persister domain.Persister) *Repository {
	return &Repository{persister: persister}
}

func (r *Repository) Persistent() bool {
	return r.persister != nil
}

func (r *Repository) Ping() error {
	if r.persister == nil {
		return nil
	}
	return r.persister.Ping()
}
