package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPayrollCalculate runs CalculatePeriodPayroll for one pay period.
	TaskPayrollCalculate = "payroll:calculate"
	// TaskPayrollOpenPeriod ensures the pay period containing today exists.
	TaskPayrollOpenPeriod = "payroll:open-period"
)

// PayrollCalculatePayload identifies the period to calculate.
type PayrollCalculatePayload struct {
	PeriodID int64 `json:"period_id"`
}

// NewPayrollCalculateTask constructs the calculation task. The task id is
// derived from the period so duplicate submissions collapse while queued.
func NewPayrollCalculateTask(periodID int64) (*asynq.Task, error) {
	if periodID <= 0 {
		return nil, fmt.Errorf("jobs: invalid period id %d", periodID)
	}
	data, err := json.Marshal(PayrollCalculatePayload{PeriodID: periodID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayrollCalculate, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// NewOpenPeriodTask constructs the daily period opening task.
func NewOpenPeriodTask() *asynq.Task {
	return asynq.NewTask(TaskPayrollOpenPeriod, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
}

// CalculationTaskID builds the task id that deduplicates concurrent
// calculation requests for one pay period.
func CalculationTaskID(periodID int64) string {
	return fmt.Sprintf("payroll:period:%d:calculate", periodID)
}
