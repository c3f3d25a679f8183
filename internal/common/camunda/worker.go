// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"nexsupply-workers/internal/common/config"
)

type CamundaWorker struct {
	worker   worker.JobWorker
	taskType string
}

// Pool owns every job worker opened by the process.
type Pool struct {
	client  zbc.Client
	logger  *zap.Logger
	mu      sync.Mutex
	workers []*CamundaWorker
}

func NewPool(client zbc.Client, logger *zap.Logger) *Pool {
	return &Pool{client: client, logger: logger}
}

// Start opens a job worker for taskType unless it is disabled.
func (p *Pool) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		p.logger.Info("worker disabled", zap.String("taskType", taskType))
		return false
	}

	jobWorker := p.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	p.mu.Lock()
	p.workers = append(p.workers, &CamundaWorker{worker: jobWorker, taskType: taskType})
	p.mu.Unlock()

	p.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return true
}

// TaskTypes lists the started workers in start order.
func (p *Pool) TaskTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.workers))
	for i, w := range p.workers {
		out[i] = w.taskType
	}
	return out
}

// Stop closes every worker and waits for in-flight jobs.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, w := range p.workers {
		p.logger.Info("stopping worker", zap.String("taskType", w.taskType))
		w.worker.Close()
		w.worker.AwaitClose()
	}
	p.workers = nil
}
