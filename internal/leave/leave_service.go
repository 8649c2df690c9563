package leave

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/allwin2012/Hr.io/internal/authz"
	"github.com/allwin2012/Hr.io/internal/domain"
	leaveerrors "github.com/allwin2012/Hr.io/internal/leave/errors"
	"github.com/allwin2012/Hr.io/internal/notify"
	"github.com/allwin2012/Hr.io/internal/shared/apperror"
	"github.com/allwin2012/Hr.io/internal/store"
)

// Service is the client-side leave engine: permission gate, optimistic
// mutation, remote call, reconciliation.
//
//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Refresh(ctx context.Context) error
	RefreshReviewQueue(ctx context.Context) error
	MyRequests() []domain.LeaveRequest
	ReviewQueue() []domain.LeaveRequest
	Balances(ctx context.Context) ([]domain.LeaveBalance, error)
	Submit(ctx context.Context, requester domain.Principal, req ApplyLeaveRequest) (domain.LeaveRequest, error)
	Review(ctx context.Context, reviewer domain.Principal, id, decision, comment string) (domain.LeaveRequest, error)
}

type service struct {
	gw           Gateway
	requests     *store.Collection[domain.LeaveRequest]
	queue        *store.Collection[domain.LeaveRequest]
	fetcher      *store.Fetcher[domain.LeaveRequest]
	queueFetcher *store.Fetcher[domain.LeaveRequest]
	validate     *validator.Validate
	sf           singleflight.Group
	notifier     notify.Notifier
	logger       *zap.Logger
}

func NewService(gw Gateway, notifier notify.Notifier, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(l)
	}
	requests := store.NewCollection[domain.LeaveRequest]()
	queue := store.NewCollection[domain.LeaveRequest]()
	return &service{
		gw:           gw,
		requests:     requests,
		queue:        queue,
		fetcher:      store.NewFetcher(requests, gw.MyRequests, l),
		queueFetcher: store.NewFetcher(queue, gw.RequestsToReview, l),
		validate:     apperror.NewValidator(),
		notifier:     notifier,
		logger:       l,
	}
}

// Refresh re-fetches the caller's own requests. A refresh superseded by a
// newer one reports store.ErrSuperseded, which callers may ignore.
func (s *service) Refresh(ctx context.Context) error {
	return s.fetcher.Refresh(ctx)
}

// RefreshReviewQueue re-fetches the requests awaiting this reviewer.
func (s *service) RefreshReviewQueue(ctx context.Context) error {
	return s.queueFetcher.Refresh(ctx)
}

func (s *service) MyRequests() []domain.LeaveRequest {
	return s.requests.Snapshot()
}

func (s *service) ReviewQueue() []domain.LeaveRequest {
	return s.queue.Snapshot()
}

// Balances fetches the per-type allowances. Concurrent callers share one
// round-trip.
func (s *service) Balances(ctx context.Context) ([]domain.LeaveBalance, error) {
	v, err, _ := s.sf.Do("balances", func() (any, error) {
		return s.gw.Balances(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.LeaveBalance), nil
}

// Submit validates the application locally, applies the advisory balance
// check, and posts it. The authoritative record comes back from the server;
// the local list is re-fetched rather than patched so the requester always
// sees the server's view.
func (s *service) Submit(ctx context.Context, requester domain.Principal, req ApplyLeaveRequest) (domain.LeaveRequest, error) {
	s.logger.Debug("submit leave requested",
		zap.String("requester_id", requester.ID),
		zap.String("type", req.Type),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if err := s.validate.Struct(req); err != nil {
		s.logger.Warn("submit leave validation failed", zap.Error(err))
		return domain.LeaveRequest{}, apperror.MapValidationError(err)
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return domain.LeaveRequest{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return domain.LeaveRequest{}, leaveerrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return domain.LeaveRequest{}, leaveerrors.ErrInvalidDateRange
	}

	// Advisory only; the server re-checks against its own ledger.
	days := int(end.Sub(start).Hours()/24) + 1
	if balances, err := s.Balances(ctx); err == nil {
		for _, b := range balances {
			if b.Type == req.Type && days > b.Remaining() {
				s.logger.Warn("submit leave over balance",
					zap.String("type", req.Type),
					zap.Int("requested_days", days),
					zap.Int("remaining", b.Remaining()),
				)
				return domain.LeaveRequest{}, leaveerrors.ErrInsufficientBalance
			}
		}
	}

	created, err := s.gw.Submit(ctx, req)
	if err != nil {
		s.logger.Warn("submit leave rejected by server", zap.Error(err))
		return domain.LeaveRequest{}, err
	}

	for _, n := range notify.ForLeaveSubmitted(created) {
		s.notifier.Publish(ctx, n)
	}

	if err := s.fetcher.Refresh(ctx); err != nil && !errors.Is(err, store.ErrSuperseded) {
		s.logger.Warn("submit leave refresh failed", zap.Error(err))
	}

	s.logger.Info("submit leave success",
		zap.String("leave_id", created.ID),
		zap.String("type", created.Type),
	)
	return created, nil
}

// Review transitions a pending request to Approved or Rejected. The decision
// is gated locally, applied optimistically to the review queue, then pushed;
// a server-side rejection rolls the optimistic patch back and re-fetches so
// the view reflects the authoritative state.
func (s *service) Review(ctx context.Context, reviewer domain.Principal, id, decision, comment string) (domain.LeaveRequest, error) {
	s.logger.Debug("review leave requested",
		zap.String("leave_id", id),
		zap.String("reviewer_id", reviewer.ID),
		zap.String("decision", decision),
	)

	if decision != domain.LeaveStatusApproved && decision != domain.LeaveStatusRejected {
		return domain.LeaveRequest{}, leaveerrors.ErrInvalidDecision
	}
	if decision == domain.LeaveStatusRejected && comment == "" {
		return domain.LeaveRequest{}, leaveerrors.ErrCommentRequired
	}

	col, r, err := s.lookupForReview(ctx, id)
	if err != nil {
		return domain.LeaveRequest{}, err
	}

	if !domain.CanTransitionLeave(r.Status, decision) {
		s.logger.Warn("review leave invalid transition",
			zap.String("leave_id", id),
			zap.String("from_status", r.Status),
			zap.String("to_status", decision),
		)
		return domain.LeaveRequest{}, leaveerrors.ErrAlreadyReviewed
	}
	if !authz.CanReviewLeave(reviewer, r) {
		return domain.LeaveRequest{}, leaveerrors.ErrNotAuthorizedToReview
	}

	optimistic := r
	optimistic.Status = decision
	optimistic.Comment = comment
	mut := col.StageUpsert(optimistic)

	updated, err := s.gw.UpdateStatus(ctx, id, decision, comment)
	if err != nil {
		mut.Rollback()
		switch {
		case apperror.IsInvalidState(err):
			// Another reviewer already acted. Non-fatal: refresh and let the
			// caller re-render the authoritative state.
			s.logger.Info("review leave lost race, refreshing",
				zap.String("leave_id", id),
			)
			s.resync(ctx, col)
			return domain.LeaveRequest{}, leaveerrors.ErrAlreadyReviewed
		case apperror.IsForbidden(err):
			s.resync(ctx, col)
			return domain.LeaveRequest{}, err
		default:
			s.logger.Warn("review leave failed", zap.String("leave_id", id), zap.Error(err))
			return domain.LeaveRequest{}, err
		}
	}

	mut.Commit(updated)

	for _, n := range notify.ForLeaveReviewed(updated) {
		s.notifier.Publish(ctx, n)
	}

	s.logger.Info("review leave success",
		zap.String("leave_id", id),
		zap.String("status", updated.Status),
	)
	return updated, nil
}

// lookupForReview resolves the request from the review queue or the caller's
// own list, fetching the queue first when neither holds the id yet. A fresh
// process may review by id without a prior queue command.
func (s *service) lookupForReview(ctx context.Context, id string) (*store.Collection[domain.LeaveRequest], domain.LeaveRequest, error) {
	if r, ok := s.queue.Get(id); ok {
		return s.queue, r, nil
	}
	if r, ok := s.requests.Get(id); ok {
		return s.requests, r, nil
	}
	if err := s.queueFetcher.Refresh(ctx); err != nil && !errors.Is(err, store.ErrSuperseded) {
		return nil, domain.LeaveRequest{}, err
	}
	if r, ok := s.queue.Get(id); ok {
		return s.queue, r, nil
	}
	return nil, domain.LeaveRequest{}, leaveerrors.ErrLeaveNotFound
}

// resync re-fetches the collection the rolled-back mutation touched.
func (s *service) resync(ctx context.Context, col *store.Collection[domain.LeaveRequest]) {
	f := s.queueFetcher
	if col == s.requests {
		f = s.fetcher
	}
	col.Invalidate()
	if err := f.Refresh(ctx); err != nil && !errors.Is(err, store.ErrSuperseded) {
		s.logger.Warn("review resync failed", zap.Error(err))
	}
}
