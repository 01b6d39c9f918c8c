package services

import (
	"context"
	"time"

	"planner-board/backend/planner-service/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var hookFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "planner_post_commit_hook_failures_total",
		Help: "Post-commit hook runs that returned an error",
	},
	[]string{"hook", "action"},
)

// TaskEvent describes a task mutation that has already been written.
type TaskEvent struct {
	Action    models.ActivityAction
	TaskID    int
	TaskTitle string
	// Assignee is the email the caller supplied, resolved or not.
	Assignee  string
	OldBucket models.Bucket
	NewBucket models.Bucket
	At        time.Time
}

// PostCommitHook runs after the primary write of a task mutation.
// Its error is logged and counted but never returned to the caller.
type PostCommitHook interface {
	Name() string
	AfterCommit(ctx context.Context, ev TaskEvent) error
}

func runHooks(ctx context.Context, hooks []PostCommitHook, ev TaskEvent, logger logrus.FieldLogger) {
	for _, hook := range hooks {
		if err := hook.AfterCommit(ctx, ev); err != nil {
			hookFailures.WithLabelValues(hook.Name(), string(ev.Action)).Inc()
			logger.WithFields(logrus.Fields{
				"hook":    hook.Name(),
				"action":  string(ev.Action),
				"task_id": ev.TaskID,
			}).Errorf("Event ID: POST_COMMIT_HOOK_FAILED, Description: %v", err)
		}
	}
}
