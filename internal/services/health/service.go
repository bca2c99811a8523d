package health

import "resume-enhancer/internal/shared/config"

// Status is the health payload.
type Status struct {
	OK            bool   `json:"ok"`
	Env           string `json:"env"`
	ObjectStore   string `json:"objectStore"`
	LLMProvider   string `json:"llmProvider"`
	ScoreProvider string `json:"scoreProvider"`
	LLMConfigured bool   `json:"llmConfigured"`
}

// Service reports liveness plus the configured backends.
type Service struct {
	cfg config.Config
}

// NewService constructs a new health service.
func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// Status never reports secrets, only whether they are set.
func (s *Service) Status() Status {
	return Status{
		OK:            true,
		Env:           s.cfg.Env,
		ObjectStore:   s.cfg.ObjectStoreType,
		LLMProvider:   s.cfg.LLMProvider,
		ScoreProvider: s.cfg.ScoreProvider,
		LLMConfigured: s.cfg.LLMAPIKey() != "",
	}
}
