// internal/common/camunda/worker.go
package camunda

import (
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"quest-workers/internal/common/config"
	"quest-workers/internal/common/logger"
)

// Workers tracks opened job workers so they can be closed together.
type Workers struct {
	open []worker.JobWorker
	log  logger.Logger
}

func NewWorkers(log logger.Logger) *Workers {
	return &Workers{log: log}
}

// Start opens a job worker for taskType unless it is disabled in config.
func (w *Workers) Start(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		w.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	jw := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()
	w.open = append(w.open, jw)

	w.log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})
	return true
}

func (w *Workers) Count() int {
	return len(w.open)
}

// Close stops polling and waits for in-flight jobs.
func (w *Workers) Close() {
	for _, jw := range w.open {
		jw.Close()
		jw.AwaitClose()
	}
	w.open = nil
}
