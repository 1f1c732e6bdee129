package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
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
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	db  DBPinger
	crm CRMChecker
}

// New creates a Service. Either dependency can be nil when not configured.
func New(db DBPinger, crm CRMChecker) *Service {
	return &Service{db: db, crm: crm}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			checks["database"] = CheckError
		} else {
			checks["database"] = CheckOK
		}
	}

	if s.crm != nil {
		if err := s.crm.HealthCheck(ctx); err != nil {
			checks["pipedrive"] = CheckError
		} else {
			checks["pipedrive"] = CheckOK
		}
	}

	return Report{Status: aggregate(checks), Checks: checks}
}

func aggregate(checks map[string]CheckResult) Status {
	failures := 0
	for _, c := range checks {
		if c == CheckError {
			failures++
		}
	}
	switch {
	case failures == 0:
		return Healthy
	case failures < len(checks):
		return Degraded
	default:
		return Unhealthy
	}
}
