package health

import (
	"context"
	"time"
)

const defaultTimeout = 2 * time.Second

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

// Status is the health payload.
type Status struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
	Storage  string `json:"storage"`
	LLM      string `json:"llm"`
}

// Service reports process and dependency health.
type Service struct {
	// DB is nil when the process runs on in-memory repositories.
	DB       PingFunc
	Storage  string
	Provider string
	Timeout  time.Duration
}

// NewService constructs a new health service.
func NewService(db PingFunc, storage, provider string) *Service {
	return &Service{DB: db, Storage: storage, Provider: provider, Timeout: defaultTimeout}
}

// Status pings the database when one is configured.
func (s *Service) Status(ctx context.Context) Status {
	out := Status{OK: true, Database: "memory", Storage: s.Storage, LLM: s.Provider}
	if out.Storage == "" {
		out.Storage = "none"
	}
	if s.DB == nil {
		return out
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.DB(ctx); err != nil {
		out.OK = false
		out.Database = "unreachable"
		return out
	}
	out.Database = "ok"
	return out
}
