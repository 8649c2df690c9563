package task

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/allwin2012/Hr.io/internal/authz"
	"github.com/allwin2012/Hr.io/internal/domain"
	"github.com/allwin2012/Hr.io/internal/notify"
	"github.com/allwin2012/Hr.io/internal/shared/apperror"
	"github.com/allwin2012/Hr.io/internal/store"
	taskerrors "github.com/allwin2012/Hr.io/internal/task/errors"
)

// Service is the client-side task lifecycle and delegation engine.
//
//go:generate mockgen -source=task_service.go -destination=mock/task_service_mock.go -package=mock
type Service interface {
	Refresh(ctx context.Context) error
	List() []domain.Task
	Get(id string) (domain.Task, bool)
	Overdue(now time.Time) []domain.Task
	Create(ctx context.Context, p domain.Principal, req CreateTaskRequest) (domain.Task, error)
	Start(ctx context.Context, p domain.Principal, id string) (domain.Task, error)
	Complete(ctx context.Context, p domain.Principal, id string) (domain.Task, error)
	Reopen(ctx context.Context, p domain.Principal, id string) (domain.Task, error)
	Edit(ctx context.Context, p domain.Principal, id string, req EditTaskRequest) (domain.Task, error)
	Delegate(ctx context.Context, p domain.Principal, id string, req DelegateTaskRequest) (domain.Task, error)
	Remove(ctx context.Context, p domain.Principal, id string) error
}

type service struct {
	gw       Gateway
	tasks    *store.Collection[domain.Task]
	fetcher  *store.Fetcher[domain.Task]
	validate *validator.Validate
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewService(gw Gateway, notifier notify.Notifier, logger ...*zap.Logger) Service {
	l := zap.L().Named("task.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("task.service")
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(l)
	}
	tasks := store.NewCollection[domain.Task]()
	return &service{
		gw:       gw,
		tasks:    tasks,
		fetcher:  store.NewFetcher(tasks, gw.List, l),
		validate: apperror.NewValidator(),
		notifier: notifier,
		logger:   l,
	}
}

func (s *service) Refresh(ctx context.Context) error {
	return s.fetcher.Refresh(ctx)
}

func (s *service) List() []domain.Task {
	return s.tasks.Snapshot()
}

func (s *service) Get(id string) (domain.Task, bool) {
	return s.tasks.Get(id)
}

// Overdue derives the overdue set on read; nothing is stored.
func (s *service) Overdue(now time.Time) []domain.Task {
	var out []domain.Task
	for _, t := range s.tasks.Snapshot() {
		if t.IsOverdue(now) {
			out = append(out, t)
		}
	}
	return out
}

func (s *service) Create(ctx context.Context, p domain.Principal, req CreateTaskRequest) (domain.Task, error) {
	s.logger.Debug("create task requested",
		zap.String("creator_id", p.ID),
		zap.String("title", req.Title),
	)

	if err := s.validate.Struct(req); err != nil {
		return domain.Task{}, apperror.MapValidationError(err)
	}
	if _, err := parseInstant(req.DueDate); err != nil {
		return domain.Task{}, taskerrors.ErrInvalidDueDate
	}

	created, err := s.gw.Create(ctx, createTaskWire{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		s.logger.Warn("create task rejected by server", zap.Error(err))
		return domain.Task{}, err
	}

	s.tasks.StageUpsert(created).Commit(created)
	s.logger.Info("create task success", zap.String("task_id", created.ID))
	return created, nil
}

// Start moves a task to inprogress.
func (s *service) Start(ctx context.Context, p domain.Principal, id string) (domain.Task, error) {
	return s.transition(ctx, p, id, domain.TaskStatusInProgress)
}

// Complete moves a task to completed.
func (s *service) Complete(ctx context.Context, p domain.Principal, id string) (domain.Task, error) {
	return s.transition(ctx, p, id, domain.TaskStatusCompleted)
}

func (s *service) transition(ctx context.Context, p domain.Principal, id, target string) (domain.Task, error) {
	s.logger.Debug("task transition requested",
		zap.String("task_id", id),
		zap.String("actor_id", p.ID),
		zap.String("target_status", target),
	)

	t, err := s.lookup(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if !authz.CanMutateTask(p, t, authz.TaskActionStatus) {
		return domain.Task{}, taskerrors.ErrNotAssigneeOrCreator
	}
	if t.Split {
		return domain.Task{}, taskerrors.ErrTaskSplit
	}
	if !domain.CanTransitionTask(t.Status, target) {
		s.logger.Warn("task transition invalid",
			zap.String("task_id", id),
			zap.String("from_status", t.Status),
			zap.String("to_status", target),
		)
		return domain.Task{}, taskerrors.ErrInvalidTaskTransition
	}

	optimistic := t
	optimistic.Status = target
	mut := s.tasks.StageUpsert(optimistic)

	updated, err := s.gw.Update(ctx, id, taskPatch{Status: &target})
	if err != nil {
		return domain.Task{}, s.reject(ctx, mut, id, err)
	}
	mut.Commit(updated)

	s.logger.Info("task transition success",
		zap.String("task_id", id),
		zap.String("status", updated.Status),
	)
	return updated, nil
}

// Reopen is the only sanctioned status regression: completed back to todo,
// creator only.
func (s *service) Reopen(ctx context.Context, p domain.Principal, id string) (domain.Task, error) {
	t, err := s.lookup(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if !t.IsCreator(p.ID) {
		return domain.Task{}, taskerrors.ErrNotTaskCreator
	}
	if t.Split {
		return domain.Task{}, taskerrors.ErrTaskSplit
	}
	if t.Status != domain.TaskStatusCompleted {
		return domain.Task{}, taskerrors.ErrInvalidTaskTransition
	}

	target := domain.TaskStatusTodo
	optimistic := t
	optimistic.Status = target
	mut := s.tasks.StageUpsert(optimistic)

	updated, err := s.gw.Update(ctx, id, taskPatch{Status: &target})
	if err != nil {
		return domain.Task{}, s.reject(ctx, mut, id, err)
	}
	mut.Commit(updated)

	s.logger.Info("task reopened", zap.String("task_id", id))
	return updated, nil
}

// Edit applies a whitelisted patch. Status changes through the patch obey
// the same forward-only machine as Start/Complete.
func (s *service) Edit(ctx context.Context, p domain.Principal, id string, req EditTaskRequest) (domain.Task, error) {
	t, err := s.lookup(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if !authz.CanMutateTask(p, t, authz.TaskActionEdit) {
		return domain.Task{}, taskerrors.ErrNotTaskCreator
	}
	if err := s.validate.Struct(req); err != nil {
		return domain.Task{}, apperror.MapValidationError(err)
	}

	patch := taskPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	}

	optimistic := t
	if req.Title != nil {
		optimistic.Title = *req.Title
	}
	if req.Description != nil {
		optimistic.Description = *req.Description
	}
	if req.Priority != nil {
		optimistic.Priority = *req.Priority
	}
	if req.DueDate != nil {
		due, err := parseInstant(*req.DueDate)
		if err != nil {
			return domain.Task{}, taskerrors.ErrInvalidDueDate
		}
		optimistic.DueDate = due
		patch.DueDate = req.DueDate
	}
	if req.Status != nil && *req.Status != t.Status {
		if t.Split {
			return domain.Task{}, taskerrors.ErrTaskSplit
		}
		if !domain.CanTransitionTask(t.Status, *req.Status) {
			return domain.Task{}, taskerrors.ErrInvalidTaskTransition
		}
		optimistic.Status = *req.Status
		patch.Status = req.Status
	}

	mut := s.tasks.StageUpsert(optimistic)

	updated, err := s.gw.Update(ctx, id, patch)
	if err != nil {
		return domain.Task{}, s.reject(ctx, mut, id, err)
	}
	mut.Commit(updated)

	s.logger.Info("edit task success", zap.String("task_id", id))
	return updated, nil
}

// Delegate reassigns a task, optionally splitting it into subtasks that
// inherit priority and due date but live independent lifecycles. A split
// parent refuses further status mutation.
func (s *service) Delegate(ctx context.Context, p domain.Principal, id string, req DelegateTaskRequest) (domain.Task, error) {
	s.logger.Debug("delegate task requested",
		zap.String("task_id", id),
		zap.String("actor_id", p.ID),
		zap.String("assignee_id", req.Assignee.ID),
		zap.Bool("split", req.Split),
	)

	t, err := s.lookup(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if !authz.CanMutateTask(p, t, authz.TaskActionDelegate) {
		return domain.Task{}, taskerrors.ErrNotTaskCreator
	}
	if req.Assignee.IsZero() {
		return domain.Task{}, taskerrors.ErrAssigneeRequired
	}
	if req.Split && len(req.Subtasks) == 0 {
		return domain.Task{}, taskerrors.ErrSubtasksRequired
	}

	if !req.Split {
		assignee := req.Assignee
		optimistic := t
		optimistic.Assignee = &assignee
		mut := s.tasks.StageUpsert(optimistic)

		updated, err := s.gw.Update(ctx, id, taskPatch{AssigneeID: &assignee.ID})
		if err != nil {
			return domain.Task{}, s.reject(ctx, mut, id, err)
		}
		mut.Commit(updated)

		for _, n := range notify.ForTaskDelegated(updated) {
			s.notifier.Publish(ctx, n)
		}
		s.logger.Info("delegate task success", zap.String("task_id", id))
		return updated, nil
	}

	// Splitting touches several entities, so the collection is re-fetched
	// afterwards instead of patched piecewise.
	due := t.DueDate.Format(time.RFC3339)
	for _, title := range req.Subtasks {
		if _, err := s.gw.Create(ctx, createTaskWire{
			Title:      title,
			Priority:   t.Priority,
			DueDate:    due,
			AssigneeID: req.Assignee.ID,
			ParentID:   t.ID,
		}); err != nil {
			s.logger.Warn("delegate split subtask create failed",
				zap.String("task_id", id),
				zap.Error(err),
			)
			s.resync(ctx)
			return domain.Task{}, err
		}
	}

	split := true
	updated, err := s.gw.Update(ctx, id, taskPatch{AssigneeID: &req.Assignee.ID, Split: &split})
	if err != nil {
		s.resync(ctx)
		return domain.Task{}, err
	}

	s.resync(ctx)

	for _, n := range notify.ForTaskDelegated(updated) {
		s.notifier.Publish(ctx, n)
	}
	s.logger.Info("delegate task split success",
		zap.String("task_id", id),
		zap.Int("subtasks", len(req.Subtasks)),
	)
	return updated, nil
}

// Remove deletes a task. Irreversible; callers must confirm with the user
// before invoking.
func (s *service) Remove(ctx context.Context, p domain.Principal, id string) error {
	t, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanMutateTask(p, t, authz.TaskActionDelete) {
		return taskerrors.ErrCannotDelete
	}

	mut := s.tasks.StageRemove(id)
	if err := s.gw.Delete(ctx, id); err != nil {
		return s.reject(ctx, mut, id, err)
	}
	mut.CommitRemoval()

	s.logger.Info("remove task success", zap.String("task_id", id))
	return nil
}

// lookup resolves the task locally, fetching the collection first when the
// id is not held yet. A fresh process mutates by id without a prior list
// command, so the first lookup may have nothing local to resolve against.
func (s *service) lookup(ctx context.Context, id string) (domain.Task, error) {
	if t, ok := s.tasks.Get(id); ok {
		return t, nil
	}
	if err := s.fetcher.Refresh(ctx); err != nil && !errors.Is(err, store.ErrSuperseded) {
		return domain.Task{}, err
	}
	t, ok := s.tasks.Get(id)
	if !ok {
		return domain.Task{}, taskerrors.ErrTaskNotFound
	}
	return t, nil
}

// reject rolls back an optimistic mutation and, when the server denied the
// action (a stale client-side allow), re-fetches so the local view returns
// to the authoritative state.
func (s *service) reject(ctx context.Context, mut *store.Mutation[domain.Task], id string, err error) error {
	mut.Rollback()
	if apperror.IsForbidden(err) || apperror.IsInvalidState(err) {
		s.logger.Info("server denied task mutation, resyncing",
			zap.String("task_id", id),
			zap.Error(err),
		)
		s.resync(ctx)
	} else {
		s.logger.Warn("task mutation failed",
			zap.String("task_id", id),
			zap.Error(err),
		)
	}
	return err
}

func (s *service) resync(ctx context.Context) {
	s.tasks.Invalidate()
	if err := s.fetcher.Refresh(ctx); err != nil && !errors.Is(err, store.ErrSuperseded) {
		s.logger.Warn("task resync failed", zap.Error(err))
	}
}
