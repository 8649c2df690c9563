// Package cli is the cobra command tree of the portal. Commands are thin:
// they parse flags, gate on the current session, and delegate to the engine
// services.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/allwin2012/Hr.io/internal/api"
	"github.com/allwin2012/Hr.io/internal/auth"
	autherrors "github.com/allwin2012/Hr.io/internal/auth/errors"
	"github.com/allwin2012/Hr.io/internal/config"
	"github.com/allwin2012/Hr.io/internal/domain"
	"github.com/allwin2012/Hr.io/internal/leave"
	"github.com/allwin2012/Hr.io/internal/session"
	"github.com/allwin2012/Hr.io/internal/task"
)

type App struct {
	cfg   config.Config
	sess  *session.Context
	auth  auth.Service
	leave leave.Service
	task  task.Service

	out io.Writer
	in  io.Reader
}

func NewApp(cfg config.Config) *App {
	sess := session.NewContext(session.NewGuard())
	client := api.New(cfg.APIBaseURL, sess.Token,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	app := &App{
		cfg:   cfg,
		sess:  sess,
		auth:  auth.NewService(auth.NewGateway(client), sess),
		leave: leave.NewService(leave.NewGateway(client), nil),
		task:  task.NewService(task.NewGateway(client), nil),
		out:   os.Stdout,
		in:    os.Stdin,
	}

	sess.OnExpire(func() {
		clearSession(cfg.SessionFile)
		fmt.Fprintln(app.out, "Session expired, please log in again.")
	})
	loadSession(cfg.SessionFile, sess)
	return app
}

// requirePrincipal gates authenticated commands.
func (a *App) requirePrincipal() (domain.Principal, error) {
	p, ok := a.sess.Current()
	if !ok {
		return domain.Principal{}, autherrors.ErrNotLoggedIn
	}
	return p, nil
}

func NewRootCmd() *cobra.Command {
	app := NewApp(config.Load())
	return newRootCmd(app)
}

func newRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "HR self-service portal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newLeaveCmd(app),
		newTaskCmd(app),
	)
	return root
}
