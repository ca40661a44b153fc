// Package dag runs the pipeline tasks in order with a fixed retry policy.
//
// Tasks form a straight line: each starts only after its predecessor
// succeeded. A failing task is attempted again after RetryDelay, up to
// Retries extra times; when it still fails the run stops and every later
// task is reported as skipped. Core stages never retry on their own.
package dag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for task execution.
var (
	taskAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "animelist_task_attempts_total",
		Help: "Total number of task attempts by task and result",
	}, []string{"task", "result"})

	taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "animelist_task_duration_seconds",
		Help:    "Task duration in seconds including retries",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"task"})
)

// Task IDs of the seasonal catalog pipeline.
const (
	TaskExtract   = "extract_api_task"
	TaskTransform = "data_transformation_task"
	TaskLoad      = "load_data_to_postgres_task"
)

// Status is the outcome of a task within a run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "upstream_failed"
)

// RunFunc executes one attempt of a task and returns the number of rows it
// produced.
type RunFunc func(ctx context.Context) (int, error)

// Task is a named unit of work.
type Task struct {
	ID  string
	Run RunFunc
}

// Config holds the retry policy.
type Config struct {
	// Retries is the number of attempts after the first one.
	Retries int

	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration
}

// DefaultConfig returns one retry after ten seconds.
func DefaultConfig() Config {
	return Config{
		Retries:    1,
		RetryDelay: 10 * time.Second,
	}
}

// Validate checks the retry policy.
func (c Config) Validate() error {
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %v", c.RetryDelay)
	}
	return nil
}

// Report describes how a task went.
type Report struct {
	TaskID   string
	Status   Status
	Attempts int
	Rows     int
	Duration time.Duration
	Err      error
}

// TaskError is returned when a task failed on every attempt.
type TaskError struct {
	TaskID   string
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed after %d attempt(s): %v", e.TaskID, e.Attempts, e.Err)
}

// Unwrap returns the error of the last attempt.
func (e *TaskError) Unwrap() error {
	return e.Err
}

// DAG is an ordered list of tasks.
type DAG struct {
	id     string
	tasks  []Task
	config Config
	logger zerolog.Logger
}

// New creates a DAG. Task IDs must be unique and non-empty.
func New(id string, cfg Config, tasks ...Task) (*DAG, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dag config: %w", err)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("dag %s has no tasks", id)
	}

	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if task.ID == "" {
			return nil, fmt.Errorf("dag %s: task id is required", id)
		}
		if task.Run == nil {
			return nil, fmt.Errorf("dag %s: task %s has no run function", id, task.ID)
		}
		if seen[task.ID] {
			return nil, fmt.Errorf("dag %s: duplicate task id %s", id, task.ID)
		}
		seen[task.ID] = true
	}

	return &DAG{
		id:     id,
		tasks:  tasks,
		config: cfg,
		logger: log.With().Str("component", "orchestrator").Str("dag", id).Logger(),
	}, nil
}

// TaskIDs returns the task IDs in execution order.
func (d *DAG) TaskIDs() []string {
	ids := make([]string, len(d.tasks))
	for i, task := range d.tasks {
		ids[i] = task.ID
	}
	return ids
}

// Run executes every task in order. The reports cover all tasks, including
// the ones skipped after a failure.
func (d *DAG) Run(ctx context.Context) ([]Report, error) {
	reports := make([]Report, 0, len(d.tasks))
	var runErr error

	for _, task := range d.tasks {
		if runErr != nil {
			reports = append(reports, Report{TaskID: task.ID, Status: StatusSkipped})
			continue
		}
		report := d.runTask(ctx, task)
		reports = append(reports, report)
		runErr = report.Err
	}

	if runErr != nil {
		d.logger.Error().Err(runErr).Msg("DAG run failed")
	} else {
		d.logger.Info().Int("tasks", len(d.tasks)).Msg("DAG run complete")
	}
	return reports, runErr
}

// RunTask executes a single task by ID with the retry policy.
func (d *DAG) RunTask(ctx context.Context, id string) (Report, error) {
	for _, task := range d.tasks {
		if task.ID == id {
			report := d.runTask(ctx, task)
			return report, report.Err
		}
	}
	return Report{}, fmt.Errorf("dag %s has no task %q", d.id, id)
}

func (d *DAG) runTask(ctx context.Context, task Task) Report {
	start := time.Now()
	logger := d.logger.With().Str("task", task.ID).Logger()
	logger.Info().Msg("Task started")

	rows, attempts, err := d.runWithRetry(ctx, logger, task)

	report := Report{
		TaskID:   task.ID,
		Status:   StatusSuccess,
		Attempts: attempts,
		Rows:     rows,
		Duration: time.Since(start),
	}
	taskDuration.WithLabelValues(task.ID).Observe(report.Duration.Seconds())

	if err != nil {
		report.Status = StatusFailed
		report.Err = &TaskError{TaskID: task.ID, Attempts: attempts, Err: err}
		return report
	}

	logger.Info().
		Int("attempts", attempts).
		Int("rows", rows).
		Dur("duration", report.Duration).
		Msg("Task succeeded")
	return report
}

// runWithRetry runs the task until it succeeds, the retries are used up or
// ctx is done. It returns the rows of the successful attempt and the number
// of attempts made.
func (d *DAG) runWithRetry(ctx context.Context, logger zerolog.Logger, task Task) (int, int, error) {
	maxAttempts := d.config.Retries + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		rows, err := task.Run(ctx)
		if err == nil {
			taskAttemptsTotal.WithLabelValues(task.ID, "success").Inc()
			if attempt > 1 {
				logger.Info().Int("attempt", attempt).Msg("Task succeeded after retry")
			}
			return rows, attempt, nil
		}

		lastErr = err
		taskAttemptsTotal.WithLabelValues(task.ID, "failure").Inc()

		// Cancellation is not a task failure worth repeating.
		if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("Task cancelled")
			return 0, attempt, err
		}

		if attempt >= maxAttempts {
			break
		}

		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_delay", d.config.RetryDelay).
			Msg("Task failed, retrying after delay")

		select {
		case <-ctx.Done():
			logger.Warn().Int("attempt", attempt).Msg("Context cancelled during retry delay")
			return 0, attempt, ctx.Err()
		case <-time.After(d.config.RetryDelay):
		}
	}

	logger.Error().
		Err(lastErr).
		Int("max_attempts", maxAttempts).
		Msg("Task attempts exhausted")
	return 0, maxAttempts, lastErr
}
