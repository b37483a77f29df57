package main

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ExecutionLogService keeps the run history in a separate sqlite database
// so retention cleanup and VACUUM never touch the main data file.
type ExecutionLogService struct {
	db *gorm.DB
}

// NewExecutionLogService creates a new execution log service instance
func NewExecutionLogService(dbPath string) (*ExecutionLogService, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to execution log database: %w", err)
	}

	service := &ExecutionLogService{
		db: db,
	}

	if err := service.runMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run execution log migrations: %w", err)
	}

	return service, nil
}

func (s *ExecutionLogService) runMigrations() error {
	return s.db.AutoMigrate(&ExecutionLogModel{})
}

// LogExecution records one completed (or failed) run
func (s *ExecutionLogService) LogExecution(runUUID string, query QueryModel, summary ExecutionSummary, duration time.Duration, runErr error) error {
	executionLog := ExecutionLogModel{
		RunUUID:         runUUID,
		QueryID:         summary.QueryID,
		QueryName:       query.Name,
		Found:           summary.Found,
		Saved:           summary.Saved,
		MediaFilesSaved: summary.MediaFilesSaved,
		UsersUpdated:    summary.UsersUpdated,
		DurationMs:      int(duration.Milliseconds()),
		IsSuccess:       runErr == nil,
		ExecutedAt:      time.Now(),
	}
	if runErr != nil {
		executionLog.ErrorMessage = runErr.Error()
	}
	return s.db.Create(&executionLog).Error
}

// GetRecentExecutions retrieves the latest runs across all queries
func (s *ExecutionLogService) GetRecentExecutions(limit int) ([]ExecutionLogModel, error) {
	var logs []ExecutionLogModel
	err := s.db.Order("executed_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// GetExecutionsByQuery retrieves the latest runs of one query
func (s *ExecutionLogService) GetExecutionsByQuery(queryID uint, limit int) ([]ExecutionLogModel, error) {
	var logs []ExecutionLogModel
	err := s.db.Where("query_id = ?", queryID).Order("executed_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// GetExecutionCountByDay returns run count for a specific day
func (s *ExecutionLogService) GetExecutionCountByDay(date time.Time) (int64, error) {
	var count int64
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	err := s.db.Model(&ExecutionLogModel{}).
		Where("executed_at >= ? AND executed_at < ?", startOfDay, endOfDay).
		Count(&count).Error

	return count, err
}

// GetDailyExecutionStats returns daily run statistics for the last 30 days
func (s *ExecutionLogService) GetDailyExecutionStats() ([]map[string]interface{}, error) {
	var results []map[string]interface{}
	now := time.Now()

	for i := 29; i >= 0; i-- {
		dayStart := now.AddDate(0, 0, -i).Truncate(24 * time.Hour)
		count, err := s.GetExecutionCountByDay(dayStart)
		if err != nil {
			return nil, err
		}

		results = append(results, map[string]interface{}{
			"date":  dayStart.Format("2006-01-02"),
			"count": count,
		})
	}

	return results, nil
}

// CleanupOldLogs removes run records older than the given number of days
func (s *ExecutionLogService) CleanupOldLogs(retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return s.db.Unscoped().Where("executed_at < ?", cutoff).Delete(&ExecutionLogModel{}).Error
}

// VacuumDatabase reclaims space after cleanup
func (s *ExecutionLogService) VacuumDatabase() error {
	return s.db.Exec("VACUUM").Error
}

// GetDatabaseStats returns row counts for the log database
func (s *ExecutionLogService) GetDatabaseStats() (map[string]int64, error) {
	var total int64
	if err := s.db.Model(&ExecutionLogModel{}).Count(&total).Error; err != nil {
		return nil, err
	}
	var failed int64
	if err := s.db.Model(&ExecutionLogModel{}).Where("is_success = ?", false).Count(&failed).Error; err != nil {
		return nil, err
	}
	return map[string]int64{
		"execution_logs": total,
		"failed_runs":    failed,
	}, nil
}

// Close closes the log database connection
func (s *ExecutionLogService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
