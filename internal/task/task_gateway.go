package task

import (
	"context"

	"github.com/allwin2012/Hr.io/internal/api"
	"github.com/allwin2012/Hr.io/internal/domain"
	taskerrors "github.com/allwin2012/Hr.io/internal/task/errors"
)

type Gateway interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, req createTaskWire) (domain.Task, error)
	Update(ctx context.Context, id string, patch taskPatch) (domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type httpGateway struct {
	client *api.Client
}

func NewGateway(client *api.Client) Gateway {
	return &httpGateway{client: client}
}

func (g *httpGateway) List(ctx context.Context) ([]domain.Task, error) {
	var wire []taskWire
	if err := g.client.Get(ctx, "/api/tasks", &wire); err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(wire))
	for _, w := range wire {
		t, err := w.toDomain()
		if err != nil {
			return nil, taskerrors.ErrInvalidDueDate
		}
		out = append(out, t)
	}
	return out, nil
}

func (g *httpGateway) Create(ctx context.Context, req createTaskWire) (domain.Task, error) {
	var wire taskWire
	if err := g.client.Post(ctx, "/api/tasks", req, &wire); err != nil {
		return domain.Task{}, err
	}
	t, err := wire.toDomain()
	if err != nil {
		return domain.Task{}, taskerrors.ErrInvalidDueDate
	}
	return t, nil
}

func (g *httpGateway) Update(ctx context.Context, id string, patch taskPatch) (domain.Task, error) {
	var wire taskWire
	if err := g.client.Put(ctx, "/api/tasks/"+id, patch, &wire); err != nil {
		return domain.Task{}, err
	}
	t, err := wire.toDomain()
	if err != nil {
		return domain.Task{}, taskerrors.ErrInvalidDueDate
	}
	return t, nil
}

func (g *httpGateway) Delete(ctx context.Context, id string) error {
	return g.client.Delete(ctx, "/api/tasks/"+id)
}
