package models

import "time"

type ActivityAction string

const (
	ActionCreate    ActivityAction = "Create"
	ActionUpdate    ActivityAction = "Update"
	ActionMove      ActivityAction = "Move"
	ActionChecklist ActivityAction = "Checklist"
	ActionDelete    ActivityAction = "Delete"
)

// Title returns the human-readable label stored with each record.
func (a ActivityAction) Title() string {
	switch a {
	case ActionCreate:
		return "Task Created"
	case ActionUpdate:
		return "Task Updated"
	case ActionMove:
		return "Task Moved"
	case ActionChecklist:
		return "Checklist Updated"
	case ActionDelete:
		return "Task Deleted"
	default:
		return string(a)
	}
}

type ActivityRecord struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	TaskID    int            `json:"taskId"`
	Action    ActivityAction `json:"action"`
	OldBucket Bucket         `json:"oldBucket,omitempty"`
	NewBucket Bucket         `json:"newBucket,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
