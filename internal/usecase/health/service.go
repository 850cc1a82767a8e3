package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	cache  CachePinger
	source SourceChecker
}

// New creates a Service. Either dependency can be nil and is then skipped.
func New(cache CachePinger, source SourceChecker) *Service {
	return &Service{cache: cache, source: source}
}

// Check runs health checks against all configured components.
// The engine itself lives in memory and is always reported.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"engine": CheckOK}

	if s.cache != nil {
		checks["cache"] = result(s.cache.Ping(ctx))
	}
	if s.source != nil {
		checks["source"] = result(s.source.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
