package models

import "errors"

var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrTitleTooLong    = errors.New("title exceeds maximum length")
	ErrInvalidBucket   = errors.New("invalid bucket")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidTaskID   = errors.New("invalid task ID")
	ErrTaskNotFound    = errors.New("task not found")
)
