package health

import (
	"context"
	"time"

	"scaleplus-loyalty/pkg/config"
	"scaleplus-loyalty/pkg/kvstore"

	"go.uber.org/fx"
)

var Module = fx.Module("health", fx.Provide(ProvideHealth))

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type Dependency struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Latency string `json:"latency,omitempty"`
}

type Health struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Deps    []Dependency `json:"deps"`
}

type HealthService interface {
	Liveness(ctx context.Context) *Health
	Readiness(ctx context.Context) *Health
}

type health struct {
	backend string
	pinger  kvstore.Pinger
	timeout time.Duration
}

type HealthParams struct {
	fx.In
	Config *config.Config
	Pinger kvstore.Pinger `optional:"true"`
}

func ProvideHealth(p HealthParams) HealthService {
	return New(p.Config.Storage.Backend, p.Pinger)
}

// New returns a checker for the storage backend. A nil pinger means the
// backend lives in process and is always ready.
func New(backend string, pinger kvstore.Pinger) HealthService {
	return &health{
		backend: backend,
		pinger:  pinger,
		timeout: 3 * time.Second,
	}
}

func (h *health) Liveness(ctx context.Context) *Health {
	return &Health{
		Status:  StatusHealthy,
		Message: "OK",
		Deps:    []Dependency{},
	}
}

func (h *health) Readiness(ctx context.Context) *Health {
	this := &Health{
		Status:  StatusHealthy,
		Message: "OK",
	}

	dep := Dependency{
		Name:    h.backend,
		Status:  StatusHealthy,
		Message: "OK",
	}

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()

		start := time.Now()
		err := h.pinger.Ping(ctx)
		dep.Latency = time.Since(start).String()
		if err != nil {
			dep.Status = StatusUnhealthy
			dep.Message = err.Error()
			this.Status = StatusUnhealthy
			this.Message = "storage backend unreachable"
		}
	}

	this.Deps = []Dependency{dep}
	return this
}
