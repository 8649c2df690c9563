package domain

import "time"

const (
	LeaveStatusPending  = "Pending"
	LeaveStatusApproved = "Approved"
	LeaveStatusRejected = "Rejected"
)

const (
	LeaveTypeCasual = "Casual Leave"
	LeaveTypeSick   = "Sick Leave"
	LeaveTypeEarned = "Earned Leave"
)

// LeaveRequest is a single leave application. Pending is the initial status;
// Approved and Rejected are terminal.
type LeaveRequest struct {
	ID        string    `json:"id"`
	Requester Ref       `json:"requester"`
	ManagerID string    `json:"manager_id,omitempty"`
	Type      string    `json:"type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
}

func (r LeaveRequest) EntityID() string { return r.ID }

// TotalDays counts calendar days in the requested range, inclusive.
func (r LeaveRequest) TotalDays() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}

// Terminal reports whether no further status transition is permitted.
func (r LeaveRequest) Terminal() bool {
	return r.Status == LeaveStatusApproved || r.Status == LeaveStatusRejected
}

// CanTransitionLeave encodes the leave status machine: Pending may move to
// Approved or Rejected, nothing else moves anywhere.
func CanTransitionLeave(from, to string) bool {
	if from != LeaveStatusPending {
		return false
	}
	return to == LeaveStatusApproved || to == LeaveStatusRejected
}

// LeaveBalance is a per-type allowance snapshot. The server owns the numbers;
// the client only projects Remaining for display and advisory checks.
type LeaveBalance struct {
	Type  string `json:"type"`
	Used  int    `json:"used"`
	Total int    `json:"total"`
}

func (b LeaveBalance) Remaining() int { return b.Total - b.Used }
