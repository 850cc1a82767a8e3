package health

import "context"

// CachePinger checks posting cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// SourceChecker checks job board availability.
type SourceChecker interface {
	HealthCheck(ctx context.Context) error
}
