package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup primes the report cache for the common date windows.
	TaskReportWarmup = "report:warmup"
	// TaskReportInvalidate drops every cached report.
	TaskReportInvalidate = "report:invalidate"
)

// ReportWarmupPayload selects which windows the warmup job primes.
type ReportWarmupPayload struct {
	// Windows lists trailing window lengths in days; 1 means today only.
	Windows    []int    `json:"windows,omitempty"`
	OrderTypes []string `json:"order_types,omitempty"`
}

// NewReportWarmupTask constructs a warmup task.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// NewReportInvalidateTask constructs a cache invalidation task.
func NewReportInvalidateTask() *asynq.Task {
	return asynq.NewTask(TaskReportInvalidate, nil)
}
