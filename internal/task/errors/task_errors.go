package taskerrors

import (
	"net/http"

	"github.com/allwin2012/Hr.io/internal/shared/apperror"
)

var (
	ErrTaskNotFound = apperror.New(
		apperror.CodeNotFound,
		"task not found",
		http.StatusNotFound,
	)
	ErrNotAssigneeOrCreator = apperror.New(
		apperror.CodeForbidden,
		"only the assignee or the creator may change task status",
		http.StatusForbidden,
	)
	ErrNotTaskCreator = apperror.New(
		apperror.CodeForbidden,
		"only the task creator may do this",
		http.StatusForbidden,
	)
	ErrCannotDelete = apperror.New(
		apperror.CodeForbidden,
		"only the creator, HR or Admin may delete a task",
		http.StatusForbidden,
	)
	ErrInvalidTaskTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid task status transition",
		http.StatusConflict,
	)
	ErrTaskSplit = apperror.New(
		apperror.CodeInvalidState,
		"task was split into subtasks and no longer accepts status changes",
		http.StatusConflict,
	)
	ErrInvalidDueDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid due date, expected YYYY-MM-DD or RFC3339",
		http.StatusBadRequest,
	)
	ErrAssigneeRequired = apperror.New(
		apperror.CodeInvalidInput,
		"an assignee is required to delegate a task",
		http.StatusBadRequest,
	)
	ErrSubtasksRequired = apperror.New(
		apperror.CodeInvalidInput,
		"at least one subtask title is required when splitting",
		http.StatusBadRequest,
	)
)
