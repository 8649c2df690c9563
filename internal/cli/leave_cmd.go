package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/allwin2012/Hr.io/internal/domain"
	"github.com/allwin2012/Hr.io/internal/leave"
	"github.com/allwin2012/Hr.io/internal/store"
)

func newLeaveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Leave requests and balances",
	}
	cmd.AddCommand(
		newLeaveListCmd(app),
		newLeaveBalancesCmd(app),
		newLeaveApplyCmd(app),
		newLeaveQueueCmd(app),
		newLeaveReviewCmd(app, domain.LeaveStatusApproved),
		newLeaveReviewCmd(app, domain.LeaveStatusRejected),
	)
	return cmd
}

func newLeaveListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List my leave requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePrincipal(); err != nil {
				return err
			}
			if err := app.leave.Refresh(cmd.Context()); err != nil && !errors.Is(err, store.ErrSuperseded) {
				return err
			}
			printLeaveTable(app, app.leave.MyRequests())
			return nil
		},
	}
}

func newLeaveBalancesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show my leave balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePrincipal(); err != nil {
				return err
			}
			balances, err := app.leave.Balances(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tUSED\tTOTAL\tREMAINING")
			for _, b := range balances {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", b.Type, b.Used, b.Total, b.Remaining())
			}
			return w.Flush()
		},
	}
}

func newLeaveApplyCmd(app *App) *cobra.Command {
	var req leave.ApplyLeaveRequest

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Submit a leave request",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.requirePrincipal()
			if err != nil {
				return err
			}
			created, err := app.leave.Submit(cmd.Context(), p, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Submitted %s request %s (%s)\n", created.Type, created.ID, created.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Type, "type", "", "leave type (Casual Leave, Sick Leave, Earned Leave)")
	cmd.Flags().StringVar(&req.StartDate, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.EndDate, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Reason, "reason", "", "reason")
	return cmd
}

func newLeaveQueueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "review-queue",
		Short: "List requests awaiting my review",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePrincipal(); err != nil {
				return err
			}
			if err := app.leave.RefreshReviewQueue(cmd.Context()); err != nil && !errors.Is(err, store.ErrSuperseded) {
				return err
			}
			printLeaveTable(app, app.leave.ReviewQueue())
			return nil
		},
	}
}

func newLeaveReviewCmd(app *App, decision string) *cobra.Command {
	var comment string
	use, short := "approve <request-id>", "Approve a pending leave request"
	if decision == domain.LeaveStatusRejected {
		use, short = "reject <request-id>", "Reject a pending leave request"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.requirePrincipal()
			if err != nil {
				return err
			}
			updated, err := app.leave.Review(cmd.Context(), p, args[0], decision, comment)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Request %s is now %s\n", updated.ID, updated.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "reviewer comment")
	return cmd
}

func printLeaveTable(app *App, requests []domain.LeaveRequest) {
	w := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREQUESTER\tTYPE\tFROM\tTO\tDAYS\tSTATUS\tCOMMENT")
	for _, r := range requests {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID,
			r.Requester.DisplayName,
			r.Type,
			r.StartDate.Format("2006-01-02"),
			r.EndDate.Format("2006-01-02"),
			r.TotalDays(),
			r.Status,
			r.Comment,
		)
	}
	_ = w.Flush()
}
