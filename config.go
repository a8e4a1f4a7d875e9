package warehouse

import (
	"github.com/armon/go-metrics"
	"go.uber.org/zap"
)

// Config holds process-wide, optional diagnostics for every World created
// afterward: a structured logger and a metrics sink. Both default to nil
// (no-op), matching the teacher's zero-value Config — logging and metrics
// are purely observational and never change World behavior.
var Config config

type config struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// SetLogger installs a zap logger used for archetype-creation debug logs
// and borrow/command-buffer replay warnings. Pass nil to go back to no-op
// logging.
func (c *config) SetLogger(l *zap.Logger) {
	c.logger = l
}

// SetMetrics installs an armon/go-metrics sink used for the archetype,
// entity and borrow-conflict counters described in SPEC_FULL.md's
// "Domain stack". Pass nil to disable.
func (c *config) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

func (c *config) loggerOrNop() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}
