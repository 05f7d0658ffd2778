package jobs

import (
	"fmt"

	"github.com/juju/clock"

	"fieldservice-backend/internal/broadcast"
	"fieldservice-backend/internal/config"
	"fieldservice-backend/internal/logger"
	"fieldservice-backend/internal/metrics"
	"fieldservice-backend/internal/repository"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store     repository.Ledger
	publisher broadcast.Publisher
	clock     clock.Clock
	metrics   *metrics.Collector
	config    *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store repository.Ledger, publisher broadcast.Publisher, clk clock.Clock, collector *metrics.Collector, cfg *config.Config) *JobRunner {
	if clk == nil {
		clk = clock.WallClock
	}
	return &JobRunner{
		store:     store,
		publisher: publisher,
		clock:     clk,
		metrics:   collector,
		config:    cfg,
	}
}

// Config exposes the configuration the runner was built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
		jr.metrics.JobRun(jobName, err)
	}()

	logger.Info("Starting job", "job", jobName)
	if err = jobFunc(); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return
	}
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every scheduled job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.NotifyOverdueRentals()
}
