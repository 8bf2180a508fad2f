package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"ai-workspace/internal/model"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(activity *model.Activity) error {
	if err := r.db.Create(activity).Error; err != nil {
		return fmt.Errorf("create activity failed: %w", err)
	}
	return nil
}

// LastOfType returns the most recent activity for a page/type pair, or nil
// when none exists.
func (r *ActivityRepository) LastOfType(page, activityType string) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.Where("page = ? AND type = ?", page, activityType).Order("created_at DESC").First(&activity).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load last activity failed: %w", err)
	}
	return &activity, nil
}

func (r *ActivityRepository) ListSince(since time.Time, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var activities []model.Activity
	if err := r.db.Where("created_at >= ?", since).Order("created_at DESC").Limit(limit).Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("list activities failed: %w", err)
	}
	return activities, nil
}
