package domain

import (
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleHR       Role = "HR"
	RoleAdmin    Role = "Admin"
)

// Elevated reports whether the role carries company-wide review and delete
// rights regardless of ownership.
func (r Role) Elevated() bool {
	return r == RoleHR || r == RoleAdmin
}

// Principal is the authenticated actor performing an action.
type Principal struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
	ManagerID  string `json:"manager_id,omitempty"`
}

// Ref is a resolved reference to a principal. The remote API historically
// returned either a bare id string or an embedded object; Ref decodes both
// shapes once at fetch time so nothing downstream type-sniffs.
type Ref struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

func (r Ref) IsZero() bool { return r.ID == "" }

func (r *Ref) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*r = Ref{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	var obj struct {
		ID          string `json:"id"`
		AltID       string `json:"_id"`
		DisplayName string `json:"display_name"`
		Name        string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	id := obj.ID
	if id == "" {
		id = obj.AltID
	}
	name := obj.DisplayName
	if name == "" {
		name = obj.Name
	}
	*r = Ref{ID: id, DisplayName: name}
	return nil
}
