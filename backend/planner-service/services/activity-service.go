package services

import (
	"context"
	"fmt"
	"time"

	"planner-board/backend/planner-service/models"
	"planner-board/backend/planner-service/repositories"

	"github.com/sirupsen/logrus"
)

// ActivityService appends to and reads the per-task audit trail.
type ActivityService struct {
	repo   repositories.ActivityRepository
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewActivityService(repo repositories.ActivityRepository, logger logrus.FieldLogger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger, now: time.Now}
}

// Record stores one immutable record, filling in the timestamp and the
// action's display title when they are missing.
func (s *ActivityService) Record(ctx context.Context, rec models.ActivityRecord) (models.ActivityRecord, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	rec.Timestamp = rec.Timestamp.UTC()
	if rec.Title == "" {
		rec.Title = rec.Action.Title()
	}

	stored, err := s.repo.AppendActivity(ctx, rec)
	if err != nil {
		return models.ActivityRecord{}, fmt.Errorf("record %s activity for task %d: %w", rec.Action, rec.TaskID, err)
	}
	s.logger.WithField("task_id", rec.TaskID).Debugf("Event ID: ACTIVITY_RECORDED, Description: %s", rec.Title)
	return stored, nil
}

// ForTask returns the task's records, newest first.
func (s *ActivityService) ForTask(ctx context.Context, taskID int) ([]models.ActivityRecord, error) {
	if taskID <= 0 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidTaskID, taskID)
	}
	records, err := s.repo.ListActivity(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("load activity for task %d: %w", taskID, err)
	}
	if records == nil {
		records = []models.ActivityRecord{}
	}
	return records, nil
}

func (s *ActivityService) Name() string { return "activity" }

// AfterCommit records every task mutation.
func (s *ActivityService) AfterCommit(ctx context.Context, ev TaskEvent) error {
	_, err := s.Record(ctx, models.ActivityRecord{
		TaskID:    ev.TaskID,
		Action:    ev.Action,
		OldBucket: ev.OldBucket,
		NewBucket: ev.NewBucket,
		Timestamp: ev.At,
	})
	return err
}
