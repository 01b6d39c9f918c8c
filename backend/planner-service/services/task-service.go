package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planner-board/backend/planner-service/models"
	"planner-board/backend/planner-service/repositories"

	"github.com/sirupsen/logrus"
)

// TaskService implements the task operations on top of the list store.
// Each mutation writes the task first and then runs the post-commit hooks.
type TaskService struct {
	tasks     repositories.TaskRepository
	directory repositories.Directory
	hooks     []PostCommitHook
	logger    logrus.FieldLogger
	now       func() time.Time
}

func NewTaskService(tasks repositories.TaskRepository, directory repositories.Directory, logger logrus.FieldLogger, hooks ...PostCommitHook) *TaskService {
	return &TaskService{
		tasks:     tasks,
		directory: directory,
		hooks:     hooks,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *TaskService) List(ctx context.Context) ([]models.Task, error) {
	records, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	tasks := make([]models.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, models.NormalizeTask(rec))
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id int) (models.Task, error) {
	if err := validateID(id); err != nil {
		return models.Task{}, err
	}
	rec, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, storeError("failed to retrieve task", id, err)
	}
	return models.NormalizeTask(rec), nil
}

// Create stores a new task and returns it with the store-assigned ID.
func (s *TaskService) Create(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	draft.ApplyDefaults()
	if err := draft.Validate(); err != nil {
		return models.Task{}, err
	}

	fields := models.TaskFields{
		Title:       models.StringPtr(draft.Title),
		Description: models.StringPtr(draft.Description),
		DueDate:     draft.DueDate,
		Status:      models.StringPtr(string(draft.Status)),
		Bucket:      models.StringPtr(string(draft.Bucket)),
		Priority:    models.StringPtr(string(draft.Priority)),
		Checklist:   models.StringPtr(models.EncodeChecklist(draft.Checklist)),
	}
	if user, ok := s.resolveAssignee(ctx, draft.AssignedTo); ok {
		fields.AssigneeID = &user.ID
	}

	id, err := s.tasks.AddTask(ctx, fields)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	s.logger.WithField("task_id", id).Infof("Event ID: TASK_CREATED, Description: Task %q created in %s", draft.Title, draft.Bucket)

	s.afterCommit(ctx, TaskEvent{
		Action:    models.ActionCreate,
		TaskID:    id,
		TaskTitle: draft.Title,
		Assignee:  draft.AssignedTo,
		NewBucket: draft.Bucket,
	})

	return models.Task{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Status:      draft.Status,
		Bucket:      draft.Bucket,
		Priority:    draft.Priority,
		AssignedTo:  draft.AssignedTo,
		Checklist:   draft.Checklist,
	}, nil
}

// Update applies a partial update. The assignee is always rewritten: when no
// directory user resolves from update.AssignedTo the task is unassigned.
func (s *TaskService) Update(ctx context.Context, id int, update models.TaskUpdate) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := update.Validate(); err != nil {
		return err
	}

	fields := models.TaskFields{
		Title:       update.Title,
		Description: update.Description,
		DueDate:     update.DueDate,
	}
	if update.Status != nil {
		fields.Status = models.StringPtr(string(*update.Status))
	}
	if update.Bucket != nil {
		fields.Bucket = models.StringPtr(string(*update.Bucket))
	}
	if update.Priority != nil {
		fields.Priority = models.StringPtr(string(*update.Priority))
	}
	if update.Checklist != nil {
		fields.Checklist = models.StringPtr(models.EncodeChecklist(update.Checklist))
	}
	if user, ok := s.resolveAssignee(ctx, update.AssignedTo); ok {
		fields.AssigneeID = &user.ID
	} else {
		fields.ClearAssignee = true
	}

	if err := s.tasks.UpdateTask(ctx, id, fields); err != nil {
		return storeError("failed to update task", id, err)
	}
	s.logger.WithField("task_id", id).Info("Event ID: TASK_UPDATED, Description: Task updated")

	ev := TaskEvent{Action: models.ActionUpdate, TaskID: id, Assignee: update.AssignedTo}
	if update.Title != nil {
		ev.TaskTitle = *update.Title
	}
	s.afterCommit(ctx, ev)
	return nil
}

// UpdateChecklist replaces the whole checklist.
func (s *TaskService) UpdateChecklist(ctx context.Context, id int, items []models.ChecklistItem) error {
	if err := validateID(id); err != nil {
		return err
	}
	fields := models.TaskFields{Checklist: models.StringPtr(models.EncodeChecklist(items))}
	if err := s.tasks.UpdateTask(ctx, id, fields); err != nil {
		return storeError("failed to update checklist", id, err)
	}
	s.logger.WithField("task_id", id).Infof("Event ID: CHECKLIST_UPDATED, Description: Checklist set to %d items", len(items))

	s.afterCommit(ctx, TaskEvent{Action: models.ActionChecklist, TaskID: id})
	return nil
}

// MoveBucket reads the current bucket and then writes the new one. The two
// calls are not atomic: a write landing in between is overwritten and the
// recorded OldBucket is the value this call read.
func (s *TaskService) MoveBucket(ctx context.Context, id int, bucket models.Bucket) error {
	if err := validateID(id); err != nil {
		return err
	}
	if !bucket.IsValid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidBucket, bucket)
	}

	old, err := s.tasks.GetTaskBucket(ctx, id)
	if err != nil {
		return storeError("failed to read task bucket", id, err)
	}
	if err := s.tasks.UpdateTask(ctx, id, models.TaskFields{Bucket: models.StringPtr(string(bucket))}); err != nil {
		return storeError("failed to move task", id, err)
	}
	s.logger.WithField("task_id", id).Infof("Event ID: TASK_MOVED, Description: Task moved from %q to %q", old, bucket)

	s.afterCommit(ctx, TaskEvent{
		Action:    models.ActionMove,
		TaskID:    id,
		OldBucket: models.Bucket(old),
		NewBucket: bucket,
	})
	return nil
}

// Delete removes the task. Its activity records are kept.
func (s *TaskService) Delete(ctx context.Context, id int) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return storeError("failed to delete task", id, err)
	}
	s.logger.WithField("task_id", id).Info("Event ID: TASK_DELETED, Description: Task deleted")

	s.afterCommit(ctx, TaskEvent{Action: models.ActionDelete, TaskID: id})
	return nil
}

// resolveAssignee looks up a directory user for values containing "@".
// Lookup failures are logged and treated as unresolved.
func (s *TaskService) resolveAssignee(ctx context.Context, assignee string) (models.DirectoryUser, bool) {
	if !models.HasEmail(assignee) {
		return models.DirectoryUser{}, false
	}
	user, err := s.directory.EnsureUser(ctx, assignee)
	if err != nil {
		s.logger.WithField("assignee", assignee).Warnf("Event ID: ASSIGNEE_UNRESOLVED, Description: %v", err)
		return models.DirectoryUser{}, false
	}
	return user, true
}

func (s *TaskService) afterCommit(ctx context.Context, ev TaskEvent) {
	if ev.At.IsZero() {
		ev.At = s.now().UTC()
	}
	runHooks(ctx, s.hooks, ev, s.logger)
}

func validateID(id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", models.ErrInvalidTaskID, id)
	}
	return nil
}

func storeError(msg string, id int, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%s %d: %w", msg, id, models.ErrTaskNotFound)
	}
	return fmt.Errorf("%s %d: %w", msg, id, err)
}
