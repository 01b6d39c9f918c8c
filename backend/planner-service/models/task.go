package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the longest title a single line text column accepts.
const MaxTitleLength = 255

// TimestampLayout is the ISO-8601 form used for every persisted timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Bucket string

const (
	BucketBacklog    Bucket = "Backlog"
	BucketToDo       Bucket = "To Do"
	BucketInProgress Bucket = "In Progress"
	BucketDone       Bucket = "Done"
)

// Buckets returns the workflow stages in board order.
func Buckets() []Bucket {
	return []Bucket{BucketBacklog, BucketToDo, BucketInProgress, BucketDone}
}

func (b Bucket) IsValid() bool {
	for _, valid := range Buckets() {
		if b == valid {
			return true
		}
	}
	return false
}

// ParseBucket matches a bucket name case-insensitively.
func ParseBucket(s string) (Bucket, error) {
	trimmed := strings.TrimSpace(s)
	for _, b := range Buckets() {
		if strings.EqualFold(trimmed, string(b)) {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBucket, s)
}

// NormalizeBucket maps stored values onto a known bucket, defaulting to Backlog.
func NormalizeBucket(s string) Bucket {
	if b := Bucket(s); b.IsValid() {
		return b
	}
	return BucketBacklog
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

func (p Priority) IsValid() bool {
	for _, valid := range Priorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// NormalizePriority defaults unknown values to Medium.
func NormalizePriority(s string) Priority {
	if p := Priority(s); p.IsValid() {
		return p
	}
	return PriorityMedium
}

type TaskStatus string

const (
	StatusNew       TaskStatus = "New"
	StatusActive    TaskStatus = "Active"
	StatusOnHold    TaskStatus = "On Hold"
	StatusCompleted TaskStatus = "Completed"
)

func Statuses() []TaskStatus {
	return []TaskStatus{StatusNew, StatusActive, StatusOnHold, StatusCompleted}
}

func (s TaskStatus) IsValid() bool {
	for _, valid := range Statuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// NormalizeStatus defaults empty or unknown values to New.
func NormalizeStatus(s string) TaskStatus {
	if st := TaskStatus(s); st.IsValid() {
		return st
	}
	return StatusNew
}

type Task struct {
	ID           int             `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	Status       TaskStatus      `json:"status"`
	Bucket       Bucket          `json:"bucket"`
	Priority     Priority        `json:"priority"`
	AssignedTo   string          `json:"assignedTo"`
	AssigneeName string          `json:"assigneeName,omitempty"`
	Checklist    []ChecklistItem `json:"checklist"`
}

// TaskRecord is a task item as the list store returns it, before defaults.
type TaskRecord struct {
	ID            int
	Title         string
	Description   string
	DueDate       *time.Time
	Status        string
	Bucket        string
	Priority      string
	Checklist     string
	AssigneeName  string
	AssigneeEmail string
}

// NormalizeTask applies field defaults and decodes the checklist blob.
func NormalizeTask(rec TaskRecord) Task {
	return Task{
		ID:           rec.ID,
		Title:        rec.Title,
		Description:  rec.Description,
		DueDate:      rec.DueDate,
		Status:       NormalizeStatus(rec.Status),
		Bucket:       NormalizeBucket(rec.Bucket),
		Priority:     NormalizePriority(rec.Priority),
		AssignedTo:   rec.AssigneeEmail,
		AssigneeName: rec.AssigneeName,
		Checklist:    DecodeChecklist(rec.Checklist),
	}
}

// TaskDraft is the input for creating a task. Zero values take defaults.
type TaskDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Status      TaskStatus      `json:"status"`
	Bucket      Bucket          `json:"bucket"`
	Priority    Priority        `json:"priority"`
	AssignedTo  string          `json:"assignedTo"`
	Checklist   []ChecklistItem `json:"checklist"`
}

func (d *TaskDraft) ApplyDefaults() {
	if d.Status == "" {
		d.Status = StatusNew
	}
	if d.Bucket == "" {
		d.Bucket = BucketBacklog
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if d.Checklist == nil {
		d.Checklist = []ChecklistItem{}
	}
}

// Validate checks a draft after defaults have been applied.
func (d TaskDraft) Validate() error {
	if err := ValidateTitle(d.Title); err != nil {
		return err
	}
	if !d.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, d.Status)
	}
	if !d.Bucket.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidBucket, d.Bucket)
	}
	if !d.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, d.Priority)
	}
	return nil
}

// TaskUpdate is a partial update. Nil fields are left unchanged.
//
// AssignedTo is always applied: a value without "@", or one the directory
// cannot resolve, unassigns the task.
type TaskUpdate struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Status      *TaskStatus     `json:"status,omitempty"`
	Bucket      *Bucket         `json:"bucket,omitempty"`
	Priority    *Priority       `json:"priority,omitempty"`
	Checklist   []ChecklistItem `json:"checklist,omitempty"`
	AssignedTo  string          `json:"assignedTo"`
}

func (u TaskUpdate) Validate() error {
	if u.Title != nil {
		if err := ValidateTitle(*u.Title); err != nil {
			return err
		}
	}
	if u.Status != nil && !u.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *u.Status)
	}
	if u.Bucket != nil && !u.Bucket.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidBucket, *u.Bucket)
	}
	if u.Priority != nil && !u.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, *u.Priority)
	}
	return nil
}

// TaskFields is the typed set of columns written to the store.
// Nil pointers are not sent.
type TaskFields struct {
	Title         *string
	Description   *string
	DueDate       *time.Time
	Status        *string
	Bucket        *string
	Priority      *string
	Checklist     *string
	AssigneeID    *int
	ClearAssignee bool
}

func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, n, MaxTitleLength)
	}
	return nil
}

// HasEmail reports whether an assignee value looks like an email address.
func HasEmail(s string) bool {
	return strings.Contains(s, "@")
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts RFC 3339 with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func StringPtr(s string) *string {
	return &s
}
