package ratelimit

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	metricnames "github.com/rosterhq/roster/engine/infra/monitoring/metrics"
	"github.com/rosterhq/roster/pkg/logger"
)

// NewManagerWithMetrics builds a manager that records every rate limit
// decision on the provided meter. A metric registration failure degrades to
// an unmetered manager rather than failing startup.
func NewManagerWithMetrics(
	ctx context.Context,
	cfg *Config,
	redisClient redis.UniversalClient,
	meter metric.Meter,
) (*Manager, error) {
	m, err := NewManager(cfg, redisClient)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		return m, nil
	}
	decisions, err := meter.Int64Counter(
		metricnames.MetricNameWithSubsystem("ratelimit", "requests_total"),
		metric.WithDescription("Rate limit decisions partitioned by scope and outcome"),
	)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to create rate limit metrics, continuing unmetered", "error", err)
		return m, nil
	}
	m.decisions = decisions
	return m, nil
}

// recordDecision counts one allow or block outcome for a limiter scope.
func (m *Manager) recordDecision(ctx context.Context, scope string, blocked bool) {
	if m.decisions == nil {
		return
	}
	m.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.Bool("blocked", blocked),
	))
}
