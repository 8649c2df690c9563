package domain

import "time"

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "inprogress"
	TaskStatusCompleted  = "completed"
)

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Task is a unit of work owned by its creator and optionally assigned.
// Split is set on a parent that has been delegated into subtasks; such a
// parent no longer accepts direct status mutation.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Assignee    *Ref      `json:"assignee,omitempty"`
	CreatedBy   Ref       `json:"created_by"`
	DueDate     time.Time `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	ParentID    string    `json:"parent_id,omitempty"`
	Split       bool      `json:"split,omitempty"`
}

func (t Task) EntityID() string { return t.ID }

// IsOverdue is recomputed on every read, never stored.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate.Before(now) && t.Status != TaskStatusCompleted
}

// IsAssignee reports whether the given principal id is the current assignee.
func (t Task) IsAssignee(principalID string) bool {
	return t.Assignee != nil && t.Assignee.ID == principalID
}

// IsCreator reports whether the given principal id created the task.
func (t Task) IsCreator(principalID string) bool {
	return t.CreatedBy.ID == principalID
}

// CanTransitionTask allows only forward movement through
// todo -> inprogress -> completed. Regressions go through an explicit reopen,
// not through this machine.
func CanTransitionTask(from, to string) bool {
	switch from {
	case TaskStatusTodo:
		return to == TaskStatusInProgress || to == TaskStatusCompleted
	case TaskStatusInProgress:
		return to == TaskStatusCompleted
	default:
		return false
	}
}
