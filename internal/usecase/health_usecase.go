package usecase

import "context"

// HealthCheck probes one optional dependency
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthUsecase interface {
	// Check returns "ok" or the failure per dependency, plus an overall status.
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	checks []HealthCheck
}

func NewHealthUsecase(checks ...HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	status := map[string]string{"status": "ok"}
	healthy := true
	for _, hc := range u.checks {
		if err := hc.Check(ctx); err != nil {
			status[hc.Name] = err.Error()
			healthy = false
			continue
		}
		status[hc.Name] = "ok"
	}
	if !healthy {
		status["status"] = "degraded"
	}
	return status, healthy
}
