package leave

import (
	"context"

	leaveerrors "github.com/allwin2012/Hr.io/internal/leave/errors"

	"github.com/allwin2012/Hr.io/internal/api"
	"github.com/allwin2012/Hr.io/internal/domain"
)

// Gateway is the remote side of the leave engine. The HR service is the
// authority of record; everything here is a thin, normalizing wrapper over
// its endpoints.
//
//go:generate mockgen -source=leave_gateway.go -destination=mock/leave_gateway_mock.go -package=mock
type Gateway interface {
	MyRequests(ctx context.Context) ([]domain.LeaveRequest, error)
	Balances(ctx context.Context) ([]domain.LeaveBalance, error)
	RequestsToReview(ctx context.Context) ([]domain.LeaveRequest, error)
	Submit(ctx context.Context, req ApplyLeaveRequest) (domain.LeaveRequest, error)
	UpdateStatus(ctx context.Context, id, status, comment string) (domain.LeaveRequest, error)
}

type httpGateway struct {
	client *api.Client
}

func NewGateway(client *api.Client) Gateway {
	return &httpGateway{client: client}
}

func (g *httpGateway) MyRequests(ctx context.Context) ([]domain.LeaveRequest, error) {
	var wire []leaveWire
	if err := g.client.Get(ctx, "/api/leave/my-requests", &wire); err != nil {
		return nil, err
	}
	return decodeLeaveList(wire)
}

func (g *httpGateway) Balances(ctx context.Context) ([]domain.LeaveBalance, error) {
	var wire []balanceWire
	if err := g.client.Get(ctx, "/api/leave/balances", &wire); err != nil {
		return nil, err
	}
	out := make([]domain.LeaveBalance, len(wire))
	for i, w := range wire {
		out[i] = w.toDomain()
	}
	return out, nil
}

func (g *httpGateway) RequestsToReview(ctx context.Context) ([]domain.LeaveRequest, error) {
	var wire []leaveWire
	if err := g.client.Get(ctx, "/api/leave/requests-to-review", &wire); err != nil {
		return nil, err
	}
	return decodeLeaveList(wire)
}

func (g *httpGateway) Submit(ctx context.Context, req ApplyLeaveRequest) (domain.LeaveRequest, error) {
	var wire leaveWire
	if err := g.client.Post(ctx, "/api/leave/request", req, &wire); err != nil {
		return domain.LeaveRequest{}, err
	}
	r, err := wire.toDomain()
	if err != nil {
		return domain.LeaveRequest{}, leaveerrors.ErrInvalidDateFormat
	}
	return r, nil
}

func (g *httpGateway) UpdateStatus(ctx context.Context, id, status, comment string) (domain.LeaveRequest, error) {
	body := updateStatusRequest{Status: status, Comment: comment}
	var wire leaveWire
	if err := g.client.Put(ctx, "/api/leave/update-status/"+id, body, &wire); err != nil {
		return domain.LeaveRequest{}, err
	}
	r, err := wire.toDomain()
	if err != nil {
		return domain.LeaveRequest{}, leaveerrors.ErrInvalidDateFormat
	}
	return r, nil
}

func decodeLeaveList(wire []leaveWire) ([]domain.LeaveRequest, error) {
	out := make([]domain.LeaveRequest, 0, len(wire))
	for _, w := range wire {
		r, err := w.toDomain()
		if err != nil {
			return nil, leaveerrors.ErrInvalidDateFormat
		}
		out = append(out, r)
	}
	return out, nil
}
