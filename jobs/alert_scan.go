// Package jobs runs background work for FreshTrack. The only recurring
// job today is the alert scan, which pulls the derived notice lists the
// same way an interactive caller would.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/freshtrack/freshtrack/internal/alerts"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAlertScan is the task type for periodic alert derivation.
	TaskAlertScan = "alerts:scan"
)

// Scan scopes for the alert scan task.
const (
	ScanAll        = "all"
	ScanExpiration = "expiration"
	ScanLowStock   = "low-stock"
)

// AlertScanPayload selects which checks a scan run performs.
type AlertScanPayload struct {
	Scope string `json:"scope"`
}

// NewAlertScanTask constructs an Asynq task for the given scope.
func NewAlertScanTask(scope string) (*asynq.Task, error) {
	data, err := json.Marshal(AlertScanPayload{Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAlertScan, data), nil
}

// AlertScanJob derives alerts on a schedule.
type AlertScanJob struct {
	deriver *alerts.Deriver
	logger  *slog.Logger
}

// NewAlertScanJob constructs the job around a deriver.
func NewAlertScanJob(deriver *alerts.Deriver, logger *slog.Logger) *AlertScanJob {
	return &AlertScanJob{deriver: deriver, logger: logger}
}

// Handle processes TaskAlertScan tasks.
func (j *AlertScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AlertScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	scope := payload.Scope
	if scope == "" {
		scope = ScanAll
	}

	if scope == ScanAll || scope == ScanExpiration {
		notices := j.deriver.CheckExpiration()
		j.logger.Info("alert scan: expiration", slog.Int("count", len(notices)))
	}
	if scope == ScanAll || scope == ScanLowStock {
		notices := j.deriver.CheckLowStock()
		j.logger.Info("alert scan: low stock", slog.Int("count", len(notices)))
	}
	return nil
}
