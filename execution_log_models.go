package main

import (
	"time"

	"gorm.io/gorm"
)

// ExecutionLogModel records one run of one saved query
type ExecutionLogModel struct {
	gorm.Model
	RunUUID         string    `gorm:"column:run_uuid;uniqueIndex" json:"run_uuid"`
	QueryID         uint      `gorm:"column:query_id;index" json:"query_id"`
	QueryName       string    `gorm:"column:query_name" json:"query_name"`
	Found           int       `gorm:"column:found" json:"found"`
	Saved           int       `gorm:"column:saved" json:"saved"`
	MediaFilesSaved int       `gorm:"column:media_files_saved" json:"media_files_saved"`
	UsersUpdated    int       `gorm:"column:users_updated" json:"users_updated"`
	DurationMs      int       `gorm:"column:duration_ms" json:"duration_ms"`
	IsSuccess       bool      `gorm:"column:is_success" json:"is_success"`
	ErrorMessage    string    `gorm:"column:error_message" json:"error_message,omitempty"`
	ExecutedAt      time.Time `gorm:"column:executed_at;index" json:"executed_at"`
}

func (ExecutionLogModel) TableName() string {
	return "execution_logs"
}
