package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "healthy"
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

type namedChecker struct {
	name    string
	checker Checker
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	checkers []namedChecker
}

// New creates a Service. db can be nil when no cache or keyword store is configured.
func New(db DBPinger) *Service {
	return &Service{db: db}
}

// WithCheck registers a named provider check. A nil checker is ignored.
func (s *Service) WithCheck(name string, c Checker) *Service {
	if c != nil {
		s.checkers = append(s.checkers, namedChecker{name: name, checker: c})
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			checks["database"] = CheckError
		} else {
			checks["database"] = CheckOK
		}
	}

	for _, nc := range s.checkers {
		if err := nc.checker.HealthCheck(ctx); err != nil {
			checks[nc.name] = CheckError
		} else {
			checks[nc.name] = CheckOK
		}
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
