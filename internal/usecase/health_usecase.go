package usecase

import (
	"context"
	"time"
)

// DependencyCheck checks one dependency. A nil error means healthy.
type DependencyCheck func(ctx context.Context) error

type HealthUsecase interface {
	// Check returns per-dependency status and whether every required check passed.
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	required map[string]DependencyCheck
	optional map[string]DependencyCheck
	timeout  time.Duration
}

// NewHealthUsecase takes required checks (database) and optional ones (redis) separately:
// an optional failure is reported as degraded but does not fail the check.
func NewHealthUsecase(required, optional map[string]DependencyCheck, timeout time.Duration) HealthUsecase {
	return &healthUsecase{required: required, optional: optional, timeout: timeout}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := boundedContext(ctx, u.timeout)
	defer cancel()

	status := map[string]string{"status": "ok"}
	healthy := true
	for name, check := range u.required {
		if err := check(ctx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}
	for name, check := range u.optional {
		if err := check(ctx); err != nil {
			status[name] = "degraded"
			continue
		}
		status[name] = "up"
	}
	if !healthy {
		status["status"] = "unavailable"
	}
	return status, healthy
}
