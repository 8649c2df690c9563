package leaveerrors

import (
	"net/http"

	"github.com/allwin2012/Hr.io/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end_date must not be before start_date",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInvalidInput,
		"requested days exceed the remaining balance for this leave type",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrNotAuthorizedToReview = apperror.New(
		apperror.CodeForbidden,
		"only the requester's manager, HR or Admin may review this request",
		http.StatusForbidden,
	)
	ErrAlreadyReviewed = apperror.New(
		apperror.CodeInvalidState,
		"leave request has already been reviewed",
		http.StatusConflict,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be Approved or Rejected",
		http.StatusBadRequest,
	)
	ErrCommentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"a comment is required when rejecting a request",
		http.StatusBadRequest,
	)
)
