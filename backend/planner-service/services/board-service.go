package services

import (
	"context"
	"sort"
	"time"

	"planner-board/backend/planner-service/models"
)

// Column is one bucket of the board with its tasks in store order.
type Column struct {
	Bucket models.Bucket `json:"bucket"`
	Tasks  []models.Task `json:"tasks"`
}

// BoardService shapes the task list for the board and calendar views.
type BoardService struct {
	tasks *TaskService
}

func NewBoardService(tasks *TaskService) *BoardService {
	return &BoardService{tasks: tasks}
}

func (s *BoardService) Columns(ctx context.Context) ([]Column, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByBucket(tasks), nil
}

// DueBetween returns tasks due in [from, to), earliest first.
func (s *BoardService) DueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterDue(tasks, from, to), nil
}

// GroupByBucket always returns every bucket, in board order.
func GroupByBucket(tasks []models.Task) []Column {
	buckets := models.Buckets()
	columns := make([]Column, len(buckets))
	index := make(map[models.Bucket]int, len(buckets))
	for i, b := range buckets {
		columns[i] = Column{Bucket: b, Tasks: []models.Task{}}
		index[b] = i
	}
	for _, t := range tasks {
		i, ok := index[t.Bucket]
		if !ok {
			i = index[models.BucketBacklog]
		}
		columns[i].Tasks = append(columns[i].Tasks, t)
	}
	return columns
}

func FilterDue(tasks []models.Task, from, to time.Time) []models.Task {
	due := []models.Task{}
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		if !t.DueDate.Before(from) && t.DueDate.Before(to) {
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].DueDate.Equal(*due[j].DueDate) {
			return due[i].DueDate.Before(*due[j].DueDate)
		}
		return due[i].ID < due[j].ID
	})
	return due
}
