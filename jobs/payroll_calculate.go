package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-payroll/internal/payroll"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// PeriodService is the slice of the payroll engine used by background jobs.
type PeriodService interface {
	CalculatePeriodPayroll(ctx context.Context, periodID int64) (payroll.CalculationResult, error)
	OpenCurrentPeriod(ctx context.Context) (payroll.PayPeriod, error)
}

// JobRecorder counts processed tasks.
type JobRecorder interface {
	ObserveJob(task, result string)
}

// PayrollJob runs payroll tasks against the engine.
type PayrollJob struct {
	Service PeriodService
	Logger  *slog.Logger
	Metrics JobRecorder
}

// NewPayrollJob constructs the job handler.
func NewPayrollJob(service PeriodService, logger *slog.Logger, metrics JobRecorder) *PayrollJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJob{Service: service, Logger: logger, Metrics: metrics}
}

// HandleCalculate processes TaskPayrollCalculate. Validation and not-found
// failures are permanent and skip retries. A run that already wrote payroll
// rows is not retried either, since a rerun appends rows again.
func (j *PayrollJob) HandleCalculate(ctx context.Context, task *asynq.Task) error {
	var payload PayrollCalculatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.PeriodID <= 0 {
		j.observe(TaskPayrollCalculate, "invalid")
		return fmt.Errorf("jobs: decode payload: %w", asynq.SkipRetry)
	}
	result, err := j.Service.CalculatePeriodPayroll(ctx, payload.PeriodID)
	if err != nil {
		j.Logger.Error("payroll calculate task failed", slog.Int64("period_id", payload.PeriodID), slog.Any("error", err))
		j.observe(TaskPayrollCalculate, "failure")
		if errors.Is(err, shared.ErrValidation) || errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		if len(result.Payrolls) > 0 {
			j.Logger.Warn("partial payroll calculation left for manual rerun",
				slog.Int64("period_id", payload.PeriodID), slog.Int("written", len(result.Payrolls)))
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}
	j.Logger.Info("payroll calculate task done", slog.Int64("period_id", payload.PeriodID), slog.Int("payrolls", len(result.Payrolls)))
	j.observe(TaskPayrollCalculate, "success")
	return nil
}

// HandleOpenPeriod processes TaskPayrollOpenPeriod.
func (j *PayrollJob) HandleOpenPeriod(ctx context.Context, _ *asynq.Task) error {
	period, err := j.Service.OpenCurrentPeriod(ctx)
	if err != nil {
		j.observe(TaskPayrollOpenPeriod, "failure")
		return err
	}
	j.Logger.Info("pay period open", slog.Int64("id", period.ID), slog.String("type", string(period.PeriodType)))
	j.observe(TaskPayrollOpenPeriod, "success")
	return nil
}

func (j *PayrollJob) observe(task, result string) {
	if j.Metrics != nil {
		j.Metrics.ObserveJob(task, result)
	}
}
