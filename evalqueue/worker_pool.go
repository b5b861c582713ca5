// Copyright (C) 2025 skillgate-dev
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package evalqueue

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/skillgate-dev/skillgate/database"
	"github.com/skillgate-dev/skillgate/database/models"
	"github.com/skillgate-dev/skillgate/dtos"
	"github.com/skillgate-dev/skillgate/monitoring"
	"github.com/skillgate-dev/skillgate/shared"
	"github.com/skillgate-dev/skillgate/utils"
)

type WorkerPoolConfig struct {
	// concurrent sandbox executions across the whole process
	Workers int
	// job starts per minute, across all workers
	RatePerMinute int
	// a claimed job that already used up its attempts is failed, not re-run
	MaxAttempts  int
	PollInterval time.Duration
}

// WorkerPoolConfigFromEnv reads EVAL_WORKERS, EVAL_RATE_PER_MINUTE,
// EVAL_MAX_ATTEMPTS and EVAL_POLL_INTERVAL_SECONDS.
func WorkerPoolConfigFromEnv() WorkerPoolConfig {
	return WorkerPoolConfig{
		Workers:       envInt("EVAL_WORKERS", 2),
		RatePerMinute: envInt("EVAL_RATE_PER_MINUTE", 10),
		MaxAttempts:   envInt("EVAL_MAX_ATTEMPTS", 1),
		PollInterval:  time.Duration(envInt("EVAL_POLL_INTERVAL_SECONDS", 15)) * time.Second,
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// WorkerPool claims PENDING jobs and runs their test cases through the
// sandbox. Concurrency is bounded by a semaphore sized to Workers, the job
// start rate by a token bucket. Both bounds hold system-wide per process,
// independent of how many versions are mid-pipeline.
type WorkerPool struct {
	config               WorkerPoolConfig
	evalJobRepository    shared.EvalJobRepository
	evalResultRepository shared.EvalResultRepository
	runner               shared.SandboxRunner
	broker               shared.PubSubBroker

	sem     *semaphore.Weighted
	limiter *rate.Limiter

	// dispatch: claims and limiter waits, cancelled first on Stop
	ctx    context.Context
	cancel context.CancelFunc
	// in-flight sandbox runs, outlives the dispatch context so a shutdown
	// never aborts a running test before the Stop deadline
	jobCtx    context.Context
	jobCancel context.CancelFunc
	wg        sync.WaitGroup
}

func NewWorkerPool(config WorkerPoolConfig, evalJobRepository shared.EvalJobRepository, evalResultRepository shared.EvalResultRepository, runner shared.SandboxRunner, broker shared.PubSubBroker) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	jobCtx, jobCancel := context.WithCancel(context.Background())
	return &WorkerPool{
		config:               config,
		evalJobRepository:    evalJobRepository,
		evalResultRepository: evalResultRepository,
		runner:               runner,
		broker:               broker,
		sem:                  semaphore.NewWeighted(int64(config.Workers)),
		limiter:              rate.NewLimiter(rate.Limit(float64(config.RatePerMinute)/60.0), config.RatePerMinute),
		ctx:                  ctx,
		cancel:               cancel,
		jobCtx:               jobCtx,
		jobCancel:            jobCancel,
	}
}

// Start spawns the dispatch loop. Wakeups come from the pubsub broker,
// the poll ticker catches lost notifications and jobs enqueued while the
// pool was saturated.
func (p *WorkerPool) Start() error {
	wake, err := p.broker.Subscribe(database.EvalJobEnqueued)
	if err != nil {
		return err
	}

	p.wg.Add(1)
	go p.dispatch(wake)

	slog.Info("eval worker pool started", "workers", p.config.Workers, "ratePerMinute", p.config.RatePerMinute)
	return nil
}

// Stop drains the pool: no new jobs are claimed, running jobs finish
// bounded by their per-test timeouts. Only when ctx expires first are the
// still-running sandboxes cancelled.
func (p *WorkerPool) Stop(ctx context.Context) error {
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.jobCancel()
		slog.Info("eval worker pool drained")
		return nil
	case <-ctx.Done():
		p.jobCancel()
		return ctx.Err()
	}
}

func (p *WorkerPool) dispatch(wake <-chan map[string]any) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		p.drain()

		select {
		case <-p.ctx.Done():
			return
		case <-wake:
		case <-ticker.C:
		}
	}
}

// drain claims and starts jobs until the queue is empty or all workers are
// busy.
func (p *WorkerPool) drain() {
	for {
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return
		}

		job, err := p.evalJobRepository.ClaimNextPending()
		if err != nil {
			p.sem.Release(1)
			monitoring.Alert("could not claim eval job", err)
			return
		}
		if job == nil {
			p.sem.Release(1)
			return
		}

		if err := p.limiter.Wait(p.ctx); err != nil {
			// shutting down mid-claim, hand the job back
			p.requeue(job)
			p.sem.Release(1)
			return
		}

		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			defer p.sem.Release(1)
			p.runJob(job)
		}()
	}
}

func (p *WorkerPool) requeue(job *models.EvalJob) {
	job.Status = models.EvalJobStatusPending
	job.Attempts--
	if err := p.evalJobRepository.Save(nil, job); err != nil {
		monitoring.Alert(fmt.Sprintf("could not requeue eval job %s", job.ID), err)
	}
}

// runJob executes every declared test case in declaration order and
// records one result row per test case, always. A panic mid-job backfills
// ERROR results for the remaining tests so the declared and recorded
// counts match.
func (p *WorkerPool) runJob(job *models.EvalJob) {
	testCases := job.GetTestCases()
	recorded := 0

	defer func() {
		if r := recover(); r != nil {
			monitoring.Alert(fmt.Sprintf("eval job %s panicked", job.ID), errors.Errorf("%v", r))
			p.backfill(job, testCases, recorded, fmt.Sprintf("evaluation crashed: %v", r))
			p.finish(job, models.EvalJobStatusFailed, utils.Ptr(fmt.Sprintf("evaluation crashed: %v", r)))
		}
	}()

	job.StartedAt = utils.Ptr(time.Now())
	if err := p.evalJobRepository.Save(nil, job); err != nil {
		slog.Warn("could not record eval job start", "jobId", job.ID, "err", err)
	}

	if job.Attempts > p.config.MaxAttempts {
		p.backfill(job, testCases, 0, "attempt budget exhausted")
		p.finish(job, models.EvalJobStatusFailed, utils.Ptr("attempt budget exhausted"))
		return
	}

	slog.Info("running eval job", "jobId", job.ID, "skillVersionId", job.SkillVersionID, "testCases", len(testCases))

	for i, testCase := range testCases {
		// one test's outcome never aborts its siblings
		result := p.runner.RunTestCase(p.jobCtx, job.PackagePath, testCase)
		p.record(job, i, result)
		recorded++
	}

	p.finish(job, models.EvalJobStatusCompleted, nil)
}

func (p *WorkerPool) record(job *models.EvalJob, index int, result dtos.TestResult) {
	row := models.EvalResult{
		EvalJobID:  job.ID,
		TestIndex:  index,
		TestName:   result.TestName,
		Status:     result.Status,
		Output:     result.Output,
		DurationMs: result.DurationMs,
	}
	if err := p.evalResultRepository.Create(nil, &row); err != nil {
		monitoring.Alert(fmt.Sprintf("could not persist eval result %d of job %s", index, job.ID), err)
	}
}

// backfill writes ERROR results for every declared test case that has no
// recorded outcome yet.
func (p *WorkerPool) backfill(job *models.EvalJob, testCases []dtos.TestCase, from int, reason string) {
	for i := from; i < len(testCases); i++ {
		p.record(job, i, dtos.TestResult{
			TestName: testCases[i].Name,
			Status:   dtos.TestStatusError,
			Output:   reason,
		})
	}
}

func (p *WorkerPool) finish(job *models.EvalJob, status models.EvalJobStatus, jobErr *string) {
	job.Status = status
	job.Error = jobErr
	job.CompletedAt = utils.Ptr(time.Now())
	if err := p.evalJobRepository.Save(nil, job); err != nil {
		monitoring.Alert(fmt.Sprintf("could not finish eval job %s", job.ID), err)
	}
}
