package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Health reports the database's reachability for the /health endpoint.
type Health struct {
	Status  string        `json:"status"`
	Latency time.Duration `json:"latency_ns"`
}

// Check pings the database with a short deadline.
func Check(ctx context.Context, pool *pgxpool.Pool) Health {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := pool.Ping(ctx); err != nil {
		return Health{Status: "unreachable", Latency: time.Since(start)}
	}
	return Health{Status: "ok", Latency: time.Since(start)}
}
