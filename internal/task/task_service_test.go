package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/allwin2012/Hr.io/internal/domain"
	"github.com/allwin2012/Hr.io/internal/notify"
	"github.com/allwin2012/Hr.io/internal/shared/apperror"
	taskerrors "github.com/allwin2012/Hr.io/internal/task/errors"
)

type fakeTaskGateway struct {
	list []domain.Task

	createErr error
	updateErr error
	deleteErr error

	created   []createTaskWire
	patches   []taskPatch
	deleted   []string
	listCalls int
}

func (f *fakeTaskGateway) List(ctx context.Context) ([]domain.Task, error) {
	f.listCalls++
	return f.list, nil
}

func (f *fakeTaskGateway) Create(ctx context.Context, req createTaskWire) (domain.Task, error) {
	if f.createErr != nil {
		return domain.Task{}, f.createErr
	}
	f.created = append(f.created, req)
	due, _ := parseInstant(req.DueDate)
	t := domain.Task{
		ID:          fmt.Sprintf("tk-new-%d", len(f.created)),
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      domain.TaskStatusTodo,
		CreatedBy:   domain.Ref{ID: "emp-1", DisplayName: "Asha"},
		DueDate:     due,
		ParentID:    req.ParentID,
	}
	if req.AssigneeID != "" {
		t.Assignee = &domain.Ref{ID: req.AssigneeID}
	}
	f.list = append(f.list, t)
	return t, nil
}

func (f *fakeTaskGateway) Update(ctx context.Context, id string, patch taskPatch) (domain.Task, error) {
	if f.updateErr != nil {
		return domain.Task{}, f.updateErr
	}
	f.patches = append(f.patches, patch)
	for i, t := range f.list {
		if t.ID != id {
			continue
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.DueDate != nil {
			due, err := parseInstant(*patch.DueDate)
			if err != nil {
				return domain.Task{}, taskerrors.ErrInvalidDueDate
			}
			t.DueDate = due
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.AssigneeID != nil {
			t.Assignee = &domain.Ref{ID: *patch.AssigneeID}
		}
		if patch.Split != nil {
			t.Split = *patch.Split
		}
		f.list[i] = t
		return t, nil
	}
	return domain.Task{}, taskerrors.ErrTaskNotFound
}

func (f *fakeTaskGateway) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	for i, t := range f.list {
		if t.ID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			break
		}
	}
	return nil
}

type captureNotifier struct {
	published []notify.Notification
}

func (c *captureNotifier) Publish(_ context.Context, n notify.Notification) {
	c.published = append(c.published, n)
}

var (
	creator  = domain.Principal{ID: "emp-1", Name: "Asha", Role: domain.RoleEmployee}
	assignee = domain.Principal{ID: "emp-2", Name: "Ravi", Role: domain.RoleEmployee}
	stranger = domain.Principal{ID: "emp-9", Name: "Kiran", Role: domain.RoleEmployee}
	hrRep    = domain.Principal{ID: "hr-1", Name: "Meera", Role: domain.RoleHR}
)

func fixture(id, status string) domain.Task {
	return domain.Task{
		ID:        id,
		Title:     "Prepare onboarding deck",
		Priority:  domain.PriorityMedium,
		Status:    status,
		Assignee:  &domain.Ref{ID: assignee.ID, DisplayName: assignee.Name},
		CreatedBy: domain.Ref{ID: creator.ID, DisplayName: creator.Name},
		DueDate:   time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func seeded(t *testing.T, gw *fakeTaskGateway) Service {
	t.Helper()
	svc := NewService(gw, nil)
	assert.NoError(t, svc.Refresh(context.Background()))
	return svc
}

func TestService_StatusTransitions(t *testing.T) {
	t.Run("stranger may not start a task", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		_, err := svc.Start(context.Background(), stranger, "tk-1")

		assert.ErrorIs(t, err, taskerrors.ErrNotAssigneeOrCreator)
		got, _ := svc.Get("tk-1")
		assert.Equal(t, domain.TaskStatusTodo, got.Status)
		assert.Empty(t, gw.patches)
	})

	t.Run("creator starts a task", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		updated, err := svc.Start(context.Background(), creator, "tk-1")

		assert.NoError(t, err)
		assert.Equal(t, domain.TaskStatusInProgress, updated.Status)
		got, _ := svc.Get("tk-1")
		assert.Equal(t, domain.TaskStatusInProgress, got.Status)
	})

	t.Run("assignee completes an in-progress task", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusInProgress)}}
		svc := seeded(t, gw)

		updated, err := svc.Complete(context.Background(), assignee, "tk-1")

		assert.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompleted, updated.Status)
	})

	t.Run("todo may jump straight to completed", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		updated, err := svc.Complete(context.Background(), creator, "tk-1")

		assert.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompleted, updated.Status)
	})

	t.Run("completed task refuses further transitions", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusCompleted)}}
		svc := seeded(t, gw)

		_, err := svc.Start(context.Background(), creator, "tk-1")
		assert.ErrorIs(t, err, taskerrors.ErrInvalidTaskTransition)

		_, err = svc.Complete(context.Background(), creator, "tk-1")
		assert.ErrorIs(t, err, taskerrors.ErrInvalidTaskTransition)
	})

	t.Run("split parent refuses status mutation", func(t *testing.T) {
		parent := fixture("tk-1", domain.TaskStatusTodo)
		parent.Split = true
		gw := &fakeTaskGateway{list: []domain.Task{parent}}
		svc := seeded(t, gw)

		_, err := svc.Start(context.Background(), creator, "tk-1")
		assert.ErrorIs(t, err, taskerrors.ErrTaskSplit)
	})

	t.Run("cold collection is fetched before the mutation", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		// No prior Refresh: a fresh process mutates straight by id.
		svc := NewService(gw, nil)

		updated, err := svc.Start(context.Background(), creator, "tk-1")

		assert.NoError(t, err)
		assert.Equal(t, domain.TaskStatusInProgress, updated.Status)
		assert.Equal(t, 1, gw.listCalls)
	})

	t.Run("cold delete resolves the task first", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := NewService(gw, nil)

		assert.NoError(t, svc.Remove(context.Background(), creator, "tk-1"))
		assert.Equal(t, []string{"tk-1"}, gw.deleted)
	})

	t.Run("unknown task", func(t *testing.T) {
		svc := seeded(t, &fakeTaskGateway{})

		_, err := svc.Start(context.Background(), creator, "tk-404")
		assert.ErrorIs(t, err, taskerrors.ErrTaskNotFound)
	})

	t.Run("server denial rolls back and resyncs", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)
		listCallsBefore := gw.listCalls
		gw.updateErr = apperror.ErrForbidden

		_, err := svc.Start(context.Background(), creator, "tk-1")

		assert.True(t, apperror.IsForbidden(err))
		got, _ := svc.Get("tk-1")
		assert.Equal(t, domain.TaskStatusTodo, got.Status)
		assert.Greater(t, gw.listCalls, listCallsBefore)
	})

	t.Run("transport failure rolls back without resync", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)
		listCallsBefore := gw.listCalls
		gw.updateErr = apperror.ErrTransport

		_, err := svc.Start(context.Background(), creator, "tk-1")

		assert.True(t, apperror.IsTransport(err))
		got, _ := svc.Get("tk-1")
		assert.Equal(t, domain.TaskStatusTodo, got.Status)
		assert.Equal(t, listCallsBefore, gw.listCalls)
	})
}

func TestService_Reopen(t *testing.T) {
	t.Run("creator reopens a completed task", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusCompleted)}}
		svc := seeded(t, gw)

		updated, err := svc.Reopen(context.Background(), creator, "tk-1")

		assert.NoError(t, err)
		assert.Equal(t, domain.TaskStatusTodo, updated.Status)
	})

	t.Run("assignee may not reopen", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusCompleted)}}
		svc := seeded(t, gw)

		_, err := svc.Reopen(context.Background(), assignee, "tk-1")
		assert.ErrorIs(t, err, taskerrors.ErrNotTaskCreator)
	})

	t.Run("only completed tasks reopen", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusInProgress)}}
		svc := seeded(t, gw)

		_, err := svc.Reopen(context.Background(), creator, "tk-1")
		assert.ErrorIs(t, err, taskerrors.ErrInvalidTaskTransition)
	})
}

func TestService_Create(t *testing.T) {
	t.Run("success lands in the collection", func(t *testing.T) {
		gw := &fakeTaskGateway{}
		svc := seeded(t, gw)

		created, err := svc.Create(context.Background(), creator, CreateTaskRequest{
			Title:    "Quarterly review notes",
			DueDate:  "2026-09-30",
			Priority: domain.PriorityHigh,
		})

		assert.NoError(t, err)
		got, ok := svc.Get(created.ID)
		assert.True(t, ok)
		assert.Equal(t, domain.TaskStatusTodo, got.Status)
	})

	t.Run("missing title fails validation", func(t *testing.T) {
		gw := &fakeTaskGateway{}
		svc := seeded(t, gw)

		_, err := svc.Create(context.Background(), creator, CreateTaskRequest{
			DueDate:  "2026-09-30",
			Priority: domain.PriorityHigh,
		})

		assert.True(t, apperror.IsValidation(err))
		assert.Empty(t, gw.created)
	})

	t.Run("invalid priority fails validation", func(t *testing.T) {
		svc := seeded(t, &fakeTaskGateway{})

		_, err := svc.Create(context.Background(), creator, CreateTaskRequest{
			Title:    "x",
			DueDate:  "2026-09-30",
			Priority: "Urgent",
		})

		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("invalid due date", func(t *testing.T) {
		svc := seeded(t, &fakeTaskGateway{})

		_, err := svc.Create(context.Background(), creator, CreateTaskRequest{
			Title:    "x",
			DueDate:  "soon",
			Priority: domain.PriorityLow,
		})

		assert.ErrorIs(t, err, taskerrors.ErrInvalidDueDate)
	})
}

func TestService_Edit(t *testing.T) {
	strptr := func(s string) *string { return &s }

	t.Run("assignee may not edit", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		_, err := svc.Edit(context.Background(), assignee, "tk-1", EditTaskRequest{Title: strptr("renamed")})
		assert.ErrorIs(t, err, taskerrors.ErrNotTaskCreator)
	})

	t.Run("creator renames and reprioritizes", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		updated, err := svc.Edit(context.Background(), creator, "tk-1", EditTaskRequest{
			Title:    strptr("Prepare onboarding deck v2"),
			Priority: strptr(domain.PriorityHigh),
		})

		assert.NoError(t, err)
		assert.Equal(t, "Prepare onboarding deck v2", updated.Title)
		assert.Equal(t, domain.PriorityHigh, updated.Priority)

		// Untouched fields stay out of the wire patch.
		assert.Len(t, gw.patches, 1)
		assert.Nil(t, gw.patches[0].Status)
		assert.Nil(t, gw.patches[0].DueDate)
	})

	t.Run("status regression through edit is refused", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusInProgress)}}
		svc := seeded(t, gw)

		_, err := svc.Edit(context.Background(), creator, "tk-1", EditTaskRequest{Status: strptr(domain.TaskStatusTodo)})
		assert.ErrorIs(t, err, taskerrors.ErrInvalidTaskTransition)
	})

	t.Run("forward status through edit is allowed", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		updated, err := svc.Edit(context.Background(), creator, "tk-1", EditTaskRequest{Status: strptr(domain.TaskStatusInProgress)})
		assert.NoError(t, err)
		assert.Equal(t, domain.TaskStatusInProgress, updated.Status)
	})

	t.Run("invalid due date", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		_, err := svc.Edit(context.Background(), creator, "tk-1", EditTaskRequest{DueDate: strptr("whenever")})
		assert.ErrorIs(t, err, taskerrors.ErrInvalidDueDate)
	})
}

func TestService_Delegate(t *testing.T) {
	t.Run("assignee may not delegate", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		_, err := svc.Delegate(context.Background(), assignee, "tk-1", DelegateTaskRequest{
			Assignee: domain.Ref{ID: stranger.ID},
		})
		assert.ErrorIs(t, err, taskerrors.ErrNotTaskCreator)
	})

	t.Run("assignee is required", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		_, err := svc.Delegate(context.Background(), creator, "tk-1", DelegateTaskRequest{})
		assert.ErrorIs(t, err, taskerrors.ErrAssigneeRequired)
	})

	t.Run("plain delegation reassigns and notifies", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		notifier := &captureNotifier{}
		svc := NewService(gw, notifier)
		assert.NoError(t, svc.Refresh(context.Background()))

		updated, err := svc.Delegate(context.Background(), creator, "tk-1", DelegateTaskRequest{
			Assignee: domain.Ref{ID: stranger.ID, DisplayName: stranger.Name},
		})

		assert.NoError(t, err)
		assert.Equal(t, stranger.ID, updated.Assignee.ID)

		assert.Len(t, notifier.published, 1)
		assert.Equal(t, notify.KindTaskDelegated, notifier.published[0].Kind)
		assert.Equal(t, stranger.ID, notifier.published[0].RecipientID)
	})

	t.Run("split requires subtask titles", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		_, err := svc.Delegate(context.Background(), creator, "tk-1", DelegateTaskRequest{
			Assignee: domain.Ref{ID: stranger.ID},
			Split:    true,
		})
		assert.ErrorIs(t, err, taskerrors.ErrSubtasksRequired)
	})

	t.Run("split creates subtasks inheriting priority and due date", func(t *testing.T) {
		parent := fixture("tk-1", domain.TaskStatusTodo)
		parent.Priority = domain.PriorityHigh
		gw := &fakeTaskGateway{list: []domain.Task{parent}}
		svc := seeded(t, gw)

		updated, err := svc.Delegate(context.Background(), creator, "tk-1", DelegateTaskRequest{
			Assignee: domain.Ref{ID: stranger.ID},
			Split:    true,
			Subtasks: []string{"Draft slides", "Collect feedback"},
		})

		assert.NoError(t, err)
		assert.True(t, updated.Split)

		assert.Len(t, gw.created, 2)
		for _, c := range gw.created {
			assert.Equal(t, "tk-1", c.ParentID)
			assert.Equal(t, domain.PriorityHigh, c.Priority)
			assert.Equal(t, stranger.ID, c.AssigneeID)
		}

		// The whole collection was re-fetched: parent plus both children.
		assert.Len(t, svc.List(), 3)
		got, _ := svc.Get("tk-1")
		assert.True(t, got.Split)
	})
}

func TestService_Remove(t *testing.T) {
	t.Run("creator deletes", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		assert.NoError(t, svc.Remove(context.Background(), creator, "tk-1"))
		_, ok := svc.Get("tk-1")
		assert.False(t, ok)
		assert.Equal(t, []string{"tk-1"}, gw.deleted)
	})

	t.Run("assignee may not delete", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		err := svc.Remove(context.Background(), assignee, "tk-1")
		assert.ErrorIs(t, err, taskerrors.ErrCannotDelete)
		_, ok := svc.Get("tk-1")
		assert.True(t, ok)
	})

	t.Run("HR deletes without ownership", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)

		assert.NoError(t, svc.Remove(context.Background(), hrRep, "tk-1"))
	})

	t.Run("failed delete restores the task", func(t *testing.T) {
		gw := &fakeTaskGateway{list: []domain.Task{fixture("tk-1", domain.TaskStatusTodo)}}
		svc := seeded(t, gw)
		gw.deleteErr = apperror.ErrTransport

		err := svc.Remove(context.Background(), creator, "tk-1")
		assert.True(t, apperror.IsTransport(err))

		got, ok := svc.Get("tk-1")
		assert.True(t, ok)
		assert.Equal(t, domain.TaskStatusTodo, got.Status)
	})
}

func TestService_Overdue(t *testing.T) {
	now := time.Date(2026, 9, 20, 12, 0, 0, 0, time.UTC)

	overdue := fixture("tk-1", domain.TaskStatusTodo)
	overdue.DueDate = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	doneLate := fixture("tk-2", domain.TaskStatusCompleted)
	doneLate.DueDate = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	future := fixture("tk-3", domain.TaskStatusTodo)
	future.DueDate = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	gw := &fakeTaskGateway{list: []domain.Task{overdue, doneLate, future}}
	svc := seeded(t, gw)

	got := svc.Overdue(now)
	assert.Len(t, got, 1)
	assert.Equal(t, "tk-1", got[0].ID)
}
