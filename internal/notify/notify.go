// Package notify decides who should be told about portal events. Delivery is
// owned elsewhere; this package only produces the decisions and hands them to
// a Notifier sink.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/allwin2012/Hr.io/internal/domain"
)

type Kind string

const (
	KindLeaveSubmitted Kind = "leave.submitted"
	KindLeaveReviewed  Kind = "leave.reviewed"
	KindTaskDelegated  Kind = "task.delegated"
)

type Notification struct {
	RecipientID string
	Kind        Kind
	Message     string
}

// Notifier receives notification decisions. Implementations own transport.
type Notifier interface {
	Publish(ctx context.Context, n Notification)
}

// ForLeaveSubmitted notifies the requester's direct superior, when known.
func ForLeaveSubmitted(r domain.LeaveRequest) []Notification {
	if r.ManagerID == "" {
		return nil
	}
	return []Notification{{
		RecipientID: r.ManagerID,
		Kind:        KindLeaveSubmitted,
		Message:     fmt.Sprintf("%s requested %s (%s to %s)", r.Requester.DisplayName, r.Type, r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02")),
	}}
}

// ForLeaveReviewed notifies the requester of the decision.
func ForLeaveReviewed(r domain.LeaveRequest) []Notification {
	if r.Requester.IsZero() {
		return nil
	}
	return []Notification{{
		RecipientID: r.Requester.ID,
		Kind:        KindLeaveReviewed,
		Message:     fmt.Sprintf("Your %s request was %s", r.Type, r.Status),
	}}
}

// ForTaskDelegated notifies the new assignee.
func ForTaskDelegated(t domain.Task) []Notification {
	if t.Assignee == nil || t.Assignee.ID == "" {
		return nil
	}
	return []Notification{{
		RecipientID: t.Assignee.ID,
		Kind:        KindTaskDelegated,
		Message:     fmt.Sprintf("Task %q was assigned to you", t.Title),
	}}
}

// LogNotifier is the default sink: it records the decision through zap and
// delivers nothing.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger ...*zap.Logger) *LogNotifier {
	l := zap.L().Named("notify")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify")
	}
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) Publish(_ context.Context, msg Notification) {
	n.logger.Info("notification decided",
		zap.String("recipient_id", msg.RecipientID),
		zap.String("kind", string(msg.Kind)),
		zap.String("message", msg.Message),
	)
}
