package auth

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/allwin2012/Hr.io/internal/api"
	autherrors "github.com/allwin2012/Hr.io/internal/auth/errors"
	"github.com/allwin2012/Hr.io/internal/domain"
	"github.com/allwin2012/Hr.io/internal/session"
	"github.com/allwin2012/Hr.io/internal/shared/apperror"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Gateway interface {
	Login(ctx context.Context, req LoginRequest) (token string, principal domain.Principal, err error)
}

type httpGateway struct {
	client *api.Client
}

func NewGateway(client *api.Client) Gateway {
	return &httpGateway{client: client}
}

func (g *httpGateway) Login(ctx context.Context, req LoginRequest) (string, domain.Principal, error) {
	var wire loginWire
	if err := g.client.Post(ctx, "/api/auth/login", req, &wire); err != nil {
		if apperror.CodeOf(err) == apperror.CodeUnauthorized {
			return "", domain.Principal{}, autherrors.ErrInvalidCredentials
		}
		return "", domain.Principal{}, err
	}
	return wire.Token, wire.principal(), nil
}

// Service binds the login endpoint to the session context: a successful
// login installs the credential and arms the auto-logout guard.
type Service interface {
	Login(ctx context.Context, email, password string) (domain.Principal, error)
	Logout()
	Current() (domain.Principal, bool)
}

type service struct {
	gw       Gateway
	sess     *session.Context
	validate *validator.Validate
	logger   *zap.Logger
}

func NewService(gw Gateway, sess *session.Context, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{gw: gw, sess: sess, validate: apperror.NewValidator(), logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (domain.Principal, error) {
	req := LoginRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return domain.Principal{}, apperror.MapValidationError(err)
	}

	token, principal, err := s.gw.Login(ctx, req)
	if err != nil {
		s.logger.Warn("login failed", zap.String("email", email), zap.Error(err))
		return domain.Principal{}, err
	}

	// A token that arrives already expired is refused outright.
	if err := s.sess.Login(token, principal); err != nil {
		s.logger.Warn("login token already expired", zap.String("email", email))
		return domain.Principal{}, autherrors.ErrTokenExpired
	}

	s.logger.Info("login success",
		zap.String("principal_id", principal.ID),
		zap.String("role", string(principal.Role)),
	)
	return principal, nil
}

func (s *service) Logout() {
	s.sess.Logout()
}

func (s *service) Current() (domain.Principal, bool) {
	return s.sess.Current()
}
