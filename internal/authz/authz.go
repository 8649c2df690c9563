// Package authz contains the pure permission predicates gating every leave
// and task mutation. Predicates are advisory on the client (the remote API is
// the authority of record and re-validates); they are re-evaluated against
// the current principal on every attempt, never cached.
package authz

import "github.com/allwin2012/Hr.io/internal/domain"

// TaskAction is the kind of mutation being attempted on a task.
type TaskAction string

const (
	TaskActionStatus   TaskAction = "status"
	TaskActionEdit     TaskAction = "edit"
	TaskActionDelegate TaskAction = "delegate"
	TaskActionDelete   TaskAction = "delete"
)

// CanReviewLeave reports whether p may approve or reject r: the request must
// still be Pending and p must be the requester's direct superior or hold an
// elevated role.
func CanReviewLeave(p domain.Principal, r domain.LeaveRequest) bool {
	if r.Status != domain.LeaveStatusPending {
		return false
	}
	if p.Role.Elevated() {
		return true
	}
	return r.ManagerID != "" && p.ID == r.ManagerID
}

// CanMutateTask reports whether p may perform action on t.
func CanMutateTask(p domain.Principal, t domain.Task, action TaskAction) bool {
	switch action {
	case TaskActionStatus:
		return t.IsAssignee(p.ID) || t.IsCreator(p.ID)
	case TaskActionDelete:
		return t.IsCreator(p.ID) || p.Role.Elevated()
	case TaskActionEdit, TaskActionDelegate:
		return t.IsCreator(p.ID)
	default:
		return false
	}
}
