package app

import (
	"strings"
	"time"

	"ai-workspace/internal/model"
	"ai-workspace/internal/repository"
)

// duplicateWindow suppresses repeated identical events, which frontends tend
// to emit in bursts on re-render.
const duplicateWindow = 5 * time.Second

type ActivityService struct {
	repo *repository.ActivityRepository
}

type ActivityInput struct {
	Page     string
	Type     string
	Metadata string
}

func NewActivityService(repo *repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Record stores one activity event. Returns false when the event was dropped
// as a duplicate of one logged within the suppression window.
func (s *ActivityService) Record(input ActivityInput) (bool, error) {
	page := strings.TrimSpace(input.Page)
	activityType := strings.TrimSpace(input.Type)
	if page == "" || activityType == "" {
		return false, ErrInvalidInput
	}

	last, err := s.repo.LastOfType(page, activityType)
	if err != nil {
		return false, err
	}
	if last != nil && time.Since(last.CreatedAt) < duplicateWindow {
		return false, nil
	}

	activity := &model.Activity{
		Page:      page,
		Type:      activityType,
		Metadata:  input.Metadata,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(activity); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ActivityService) Recent(days, limit int) ([]model.Activity, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.repo.ListSince(since, limit)
}
