// File: internal/jobs/report_cleanup.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"life_lesson_backend/internal/config"
	"life_lesson_backend/internal/report"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReportCleanupJob holds dependencies for the orphaned report cleanup job.
type ReportCleanupJob struct {
	reportService report.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewReportCleanupJob creates a new ReportCleanupJob.
func NewReportCleanupJob(
	reportService report.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *ReportCleanupJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &ReportCleanupJob{
		reportService: reportService,
		logger:        logger.Named("ReportCleanupJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *ReportCleanupJob) SetupAndStart() error {
	jobSpec := j.cfg.ReportCleanupJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Report cleanup job schedule not defined (REPORT_CLEANUP_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule report cleanup job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Report cleanup job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob sweeps reports whose lesson has been deleted.
func (j *ReportCleanupJob) runJob() {
	j.logger.Info("Starting report cleanup job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	purged, err := j.reportService.PurgeOrphaned(ctx)
	if err != nil {
		j.logger.Error("Report cleanup job run failed", zap.Error(err))
	} else {
		j.logger.Info("Report cleanup job run completed", zap.Int64("reports_purged", purged))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *ReportCleanupJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping report cleanup job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Report cleanup job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Report cleanup job scheduler stop timed out.")
		}
	}
}

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
