package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/models"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// QueryLogService appends and lists chat prompts.
type QueryLogService struct {
	db *gorm.DB
}

func NewQueryLogService(db *gorm.DB) *QueryLogService {
	return &QueryLogService{db: db}
}

// Record appends a prompt and, when known, the SQL generated for it.
func (s *QueryLogService) Record(ctx context.Context, prompt string, sql *string) error {
	entry := models.QueryLog{Prompt: prompt, SQL: sql}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record query log: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. limit is clamped into
// [1, MaxHistoryLimit].
func (s *QueryLogService) Recent(ctx context.Context, limit int) ([]models.QueryLog, error) {
	limit = min(max(limit, 1), MaxHistoryLimit)
	rows := []models.QueryLog{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list query logs: %w", err)
	}
	return rows, nil
}
