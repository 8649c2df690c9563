package autherrors

import (
	"net/http"

	"github.com/allwin2012/Hr.io/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"invalid email or password",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthorized,
		"session token is expired",
		http.StatusUnauthorized,
	)
	ErrNotLoggedIn = apperror.New(
		apperror.CodeUnauthorized,
		"you are not logged in",
		http.StatusUnauthorized,
	)
)
