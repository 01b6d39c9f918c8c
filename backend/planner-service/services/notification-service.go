package services

import (
	"context"
	"fmt"
	"html"

	"planner-board/backend/planner-service/models"
	"planner-board/backend/planner-service/repositories"

	"github.com/sirupsen/logrus"
)

// NotificationService mails assignees about tasks assigned to them.
type NotificationService struct {
	mailer repositories.Mailer
	logger logrus.FieldLogger
}

func NewNotificationService(mailer repositories.Mailer, logger logrus.FieldLogger) *NotificationService {
	return &NotificationService{mailer: mailer, logger: logger}
}

func assignmentEmail(to, taskTitle string) models.Email {
	return models.Email{
		To:      []string{to},
		Subject: "New Task Assigned: " + taskTitle,
		Body: fmt.Sprintf(`<p>Hello,</p>
<p>You have been assigned a new task:</p>
<p><b>%s</b></p>
<p>Please open the Planner Dashboard.</p>`, html.EscapeString(taskTitle)),
	}
}

// Notify sends the assignment message. Delivery is best effort: failures are
// logged and never returned.
func (s *NotificationService) Notify(ctx context.Context, email, taskTitle string) {
	if err := s.send(ctx, email, taskTitle); err != nil {
		s.logger.WithField("to", email).Warnf("Event ID: EMAIL_SEND_FAILED, Description: %v", err)
		return
	}
	s.logger.WithField("to", email).Infof("Event ID: EMAIL_SENT, Description: Assignment notification sent for %q", taskTitle)
}

func (s *NotificationService) send(ctx context.Context, email, taskTitle string) error {
	if !models.HasEmail(email) {
		return fmt.Errorf("invalid recipient %q", email)
	}
	return s.mailer.SendEmail(ctx, assignmentEmail(email, taskTitle))
}

func (s *NotificationService) Name() string { return "notification" }

// AfterCommit mails the supplied assignee after a create or an update.
// Unresolved addresses are still mailed.
func (s *NotificationService) AfterCommit(ctx context.Context, ev TaskEvent) error {
	if ev.Action != models.ActionCreate && ev.Action != models.ActionUpdate {
		return nil
	}
	if !models.HasEmail(ev.Assignee) {
		return nil
	}
	title := ev.TaskTitle
	if title == "" {
		title = models.ActionUpdate.Title()
	}
	return s.send(ctx, ev.Assignee, title)
}
