package auth

import "github.com/allwin2012/Hr.io/internal/domain"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginWire struct {
	Token string `json:"token"`
	User  struct {
		ID         string `json:"id"`
		AltID      string `json:"_id"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		Role       string `json:"role"`
		Department string `json:"department"`
		ManagerID  string `json:"manager_id"`
	} `json:"user"`
}

func (w loginWire) principal() domain.Principal {
	id := w.User.ID
	if id == "" {
		id = w.User.AltID
	}
	return domain.Principal{
		ID:         id,
		Name:       w.User.Name,
		Email:      w.User.Email,
		Role:       domain.Role(w.User.Role),
		Department: w.User.Department,
		ManagerID:  w.User.ManagerID,
	}
}
