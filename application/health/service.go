package health

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CheckHealth reports storage reachability. The service itself keeps
// working without storage, so a failing backend degrades the report,
// not the process.
func (s *Service) CheckHealth() (map[string]string, bool) {
	result := make(map[string]string)

	if !s.repo.Persistent() {
		result["storage"] = "disabled"
		result["mode"] = "memory-only"
		return result, true
	}

	if err := s.repo.Ping(); err != nil {
		result["storage"] = "error"
		result["mode"] = "memory-only"
		return result, false
	}

	result["storage"] = "ok"
	result["mode"] = "persistent"
	return result, true
}
