package health

import "context"

// DBPinger checks budget store connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CRMChecker checks Pipedrive API reachability.
type CRMChecker interface {
	HealthCheck(ctx context.Context) error
}
