package task

import (
	"time"

	"github.com/allwin2012/Hr.io/internal/domain"
)

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"required"`
	Priority    string `json:"priority" validate:"required,oneof=High Medium Low"`
	AssigneeID  string `json:"assignee_id"`
}

// EditTaskRequest is the whitelisted patch: only these fields are mutable.
// Nil means unchanged.
type EditTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty" validate:"omitempty,oneof=High Medium Low"`
	DueDate     *string `json:"due_date,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=todo inprogress completed"`
}

type DelegateTaskRequest struct {
	Assignee domain.Ref
	Split    bool
	// Subtasks are the titles of the child tasks when splitting.
	Subtasks []string
}

// taskPatch is the wire body for PUT /api/tasks/:id. Pointer fields keep
// untouched attributes out of the payload.
type taskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Status      *string `json:"status,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	Split       *bool   `json:"split,omitempty"`
}

type createTaskWire struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
}

type taskWire struct {
	ID          string      `json:"id"`
	AltID       string      `json:"_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Priority    string      `json:"priority"`
	Status      string      `json:"status"`
	Assignee    *domain.Ref `json:"assignee"`
	CreatedBy   domain.Ref  `json:"created_by"`
	DueDate     string      `json:"due_date"`
	CreatedAt   string      `json:"created_at"`
	ParentID    string      `json:"parent_id"`
	Split       bool        `json:"split"`
}

func (w taskWire) toDomain() (domain.Task, error) {
	due, err := parseInstant(w.DueDate)
	if err != nil {
		return domain.Task{}, err
	}
	created, err := parseInstant(w.CreatedAt)
	if err != nil {
		created = time.Time{}
	}
	id := w.ID
	if id == "" {
		id = w.AltID
	}
	return domain.Task{
		ID:          id,
		Title:       w.Title,
		Description: w.Description,
		Priority:    w.Priority,
		Status:      w.Status,
		Assignee:    w.Assignee,
		CreatedBy:   w.CreatedBy,
		DueDate:     due,
		CreatedAt:   created,
		ParentID:    w.ParentID,
		Split:       w.Split,
	}, nil
}

// parseInstant accepts both the date-only form the original UI sent and full
// RFC3339 instants. Due dates are kept as absolute instants to avoid
// timezone drift on redisplay.
func parseInstant(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
