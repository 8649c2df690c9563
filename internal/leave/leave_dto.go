package leave

import (
	"time"

	"github.com/allwin2012/Hr.io/internal/domain"
)

type ApplyLeaveRequest struct {
	Type      string `json:"type" validate:"required,oneof='Casual Leave' 'Sick Leave' 'Earned Leave'"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

type updateStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// leaveWire is the request shape on the wire: dates travel as YYYY-MM-DD
// strings and requester may be a bare id or an embedded object.
type leaveWire struct {
	ID        string     `json:"id"`
	AltID     string     `json:"_id"`
	Requester domain.Ref `json:"requester"`
	ManagerID string     `json:"manager_id"`
	Type      string     `json:"type"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Reason    string     `json:"reason"`
	Status    string     `json:"status"`
	Comment   string     `json:"comment"`
}

func (w leaveWire) toDomain() (domain.LeaveRequest, error) {
	start, err := parseDate(w.StartDate)
	if err != nil {
		return domain.LeaveRequest{}, err
	}
	end, err := parseDate(w.EndDate)
	if err != nil {
		return domain.LeaveRequest{}, err
	}
	id := w.ID
	if id == "" {
		id = w.AltID
	}
	return domain.LeaveRequest{
		ID:        id,
		Requester: w.Requester,
		ManagerID: w.ManagerID,
		Type:      w.Type,
		StartDate: start,
		EndDate:   end,
		Reason:    w.Reason,
		Status:    w.Status,
		Comment:   w.Comment,
	}, nil
}

type balanceWire struct {
	Type  string `json:"type"`
	Used  int    `json:"used"`
	Total int    `json:"total"`
}

func (w balanceWire) toDomain() domain.LeaveBalance {
	return domain.LeaveBalance{Type: w.Type, Used: w.Used, Total: w.Total}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
