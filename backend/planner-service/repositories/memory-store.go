package repositories

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"planner-board/backend/planner-service/models"
)

type memoryTask struct {
	rec        models.TaskRecord
	assigneeID *int
}

type memoryActivity struct {
	rec models.ActivityRecord
	seq int
}

// MemoryStore keeps tasks, activity, users and sent mail in process memory.
// It backs local development and tests and is safe for concurrent use.
type MemoryStore struct {
	mu         sync.Mutex
	nextTaskID int
	nextSeq    int
	nextUserID int
	tasks      map[int]*memoryTask
	order      []int
	activity   []memoryActivity
	users      []models.DirectoryUser
	sent       []models.Email
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextTaskID: 1,
		nextSeq:    1,
		nextUserID: 1,
		tasks:      map[int]*memoryTask{},
	}
}

// AddUser registers a directory user and returns it with its ID.
func (s *MemoryStore) AddUser(name, email string) models.DirectoryUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.DirectoryUser{ID: s.nextUserID, Name: name, Email: email}
	s.nextUserID++
	s.users = append(s.users, u)
	return u
}

// SentEmails returns a copy of every message passed to SendEmail.
func (s *MemoryStore) SentEmails() []models.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Email(nil), s.sent...)
}

func (s *MemoryStore) ListTasks(ctx context.Context) ([]models.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]models.TaskRecord, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.expand(s.tasks[id]))
	}
	return records, nil
}

func (s *MemoryStore) GetTask(ctx context.Context, id int) (models.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return models.TaskRecord{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return s.expand(t), nil
}

func (s *MemoryStore) GetTaskBucket(ctx context.Context, id int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return "", fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return t.rec.Bucket, nil
}

func (s *MemoryStore) AddTask(ctx context.Context, fields models.TaskFields) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextTaskID
	s.nextTaskID++
	t := &memoryTask{rec: models.TaskRecord{ID: id}}
	s.apply(t, fields)
	s.tasks[id] = t
	s.order = append(s.order, id)
	return id, nil
}

func (s *MemoryStore) UpdateTask(ctx context.Context, id int, fields models.TaskFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	s.apply(t, fields)
	return nil
}

func (s *MemoryStore) DeleteTask(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	delete(s.tasks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) apply(t *memoryTask, f models.TaskFields) {
	if f.Title != nil {
		t.rec.Title = *f.Title
	}
	if f.Description != nil {
		t.rec.Description = *f.Description
	}
	if f.DueDate != nil {
		due := f.DueDate.UTC()
		t.rec.DueDate = &due
	}
	if f.Status != nil {
		t.rec.Status = *f.Status
	}
	if f.Bucket != nil {
		t.rec.Bucket = *f.Bucket
	}
	if f.Priority != nil {
		t.rec.Priority = *f.Priority
	}
	if f.Checklist != nil {
		t.rec.Checklist = *f.Checklist
	}
	switch {
	case f.AssigneeID != nil:
		id := *f.AssigneeID
		t.assigneeID = &id
	case f.ClearAssignee:
		t.assigneeID = nil
	}
}

// expand resolves the assignee reference the way a lookup expansion would.
func (s *MemoryStore) expand(t *memoryTask) models.TaskRecord {
	rec := t.rec
	if t.assigneeID != nil {
		for _, u := range s.users {
			if u.ID == *t.assigneeID {
				rec.AssigneeName = u.Name
				rec.AssigneeEmail = u.Email
				break
			}
		}
	}
	return rec
}

func (s *MemoryStore) AppendActivity(ctx context.Context, rec models.ActivityRecord) (models.ActivityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = strconv.Itoa(s.nextSeq)
	s.activity = append(s.activity, memoryActivity{rec: rec, seq: s.nextSeq})
	s.nextSeq++
	return rec, nil
}

func (s *MemoryStore) ListActivity(ctx context.Context, taskID int) ([]models.ActivityRecord, error) {
	s.mu.Lock()
	var matched []memoryActivity
	for _, a := range s.activity {
		if a.rec.TaskID == taskID {
			matched = append(matched, a)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].rec.Timestamp.Equal(matched[j].rec.Timestamp) {
			return matched[i].rec.Timestamp.After(matched[j].rec.Timestamp)
		}
		return matched[i].seq > matched[j].seq
	})

	records := make([]models.ActivityRecord, 0, len(matched))
	for _, a := range matched {
		records = append(records, a.rec)
	}
	return records, nil
}

func (s *MemoryStore) EnsureUser(ctx context.Context, email string) (models.DirectoryUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.DirectoryUser{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

func (s *MemoryStore) SearchUsers(ctx context.Context, query string, limit int) ([]models.DirectoryUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(query)
	var users []models.DirectoryUser
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Email), needle) || strings.Contains(strings.ToLower(u.Name), needle) {
			users = append(users, u)
			if limit > 0 && len(users) == limit {
				break
			}
		}
	}
	return users, nil
}

func (s *MemoryStore) SendEmail(ctx context.Context, email models.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email.To = append([]string(nil), email.To...)
	s.sent = append(s.sent, email)
	return nil
}
