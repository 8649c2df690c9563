package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/allwin2012/Hr.io/internal/domain"
	"github.com/allwin2012/Hr.io/internal/store"
	"github.com/allwin2012/Hr.io/internal/task"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Tasks and delegation",
	}
	cmd.AddCommand(
		newTaskListCmd(app),
		newTaskCreateCmd(app),
		newTaskTransitionCmd(app, "start", "Start a task"),
		newTaskTransitionCmd(app, "complete", "Mark a task completed"),
		newTaskTransitionCmd(app, "reopen", "Reopen a completed task"),
		newTaskEditCmd(app),
		newTaskDelegateCmd(app),
		newTaskDeleteCmd(app),
	)
	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var overdueOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requirePrincipal(); err != nil {
				return err
			}
			if err := app.task.Refresh(cmd.Context()); err != nil && !errors.Is(err, store.ErrSuperseded) {
				return err
			}
			tasks := app.task.List()
			if overdueOnly {
				tasks = app.task.Overdue(time.Now())
			}
			now := time.Now()
			w := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tSTATUS\tDUE\tASSIGNEE")
			for _, t := range tasks {
				due := t.DueDate.Format("2006-01-02")
				if t.IsOverdue(now) {
					due += " (overdue)"
				}
				assignee := ""
				if t.Assignee != nil {
					assignee = t.Assignee.DisplayName
					if assignee == "" {
						assignee = t.Assignee.ID
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority, t.Status, due, assignee)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&overdueOnly, "overdue", false, "only overdue tasks")
	return cmd
}

func newTaskCreateCmd(app *App) *cobra.Command {
	var req task.CreateTaskRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.requirePrincipal()
			if err != nil {
				return err
			}
			created, err := app.task.Create(cmd.Context(), p, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Created task %s\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "task title")
	cmd.Flags().StringVar(&req.Description, "description", "", "task description")
	cmd.Flags().StringVar(&req.DueDate, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Priority, "priority", domain.PriorityMedium, "priority (High, Medium, Low)")
	cmd.Flags().StringVar(&req.AssigneeID, "assignee", "", "assignee principal id")
	return cmd
}

func newTaskTransitionCmd(app *App, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.requirePrincipal()
			if err != nil {
				return err
			}
			var t domain.Task
			switch verb {
			case "start":
				t, err = app.task.Start(cmd.Context(), p, args[0])
			case "complete":
				t, err = app.task.Complete(cmd.Context(), p, args[0])
			default:
				t, err = app.task.Reopen(cmd.Context(), p, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Task %s is now %s\n", t.ID, t.Status)
			return nil
		},
	}
}

func newTaskEditCmd(app *App) *cobra.Command {
	var title, description, priority, due, status string

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task you created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.requirePrincipal()
			if err != nil {
				return err
			}
			var req task.EditTaskRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("priority") {
				req.Priority = &priority
			}
			if cmd.Flags().Changed("due") {
				req.DueDate = &due
			}
			if cmd.Flags().Changed("status") {
				req.Status = &status
			}
			updated, err := app.task.Edit(cmd.Context(), p, args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Updated task %s\n", updated.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority (High, Medium, Low)")
	cmd.Flags().StringVar(&due, "due", "", "new due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "new status (todo, inprogress, completed)")
	return cmd
}

func newTaskDelegateCmd(app *App) *cobra.Command {
	var assigneeID, assigneeName string
	var subtasks []string
	var split bool

	cmd := &cobra.Command{
		Use:   "delegate <task-id>",
		Short: "Delegate a task, optionally splitting into subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.requirePrincipal()
			if err != nil {
				return err
			}
			updated, err := app.task.Delegate(cmd.Context(), p, args[0], task.DelegateTaskRequest{
				Assignee: domain.Ref{ID: assigneeID, DisplayName: assigneeName},
				Split:    split,
				Subtasks: subtasks,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Task %s delegated\n", updated.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&assigneeID, "to", "", "assignee principal id")
	cmd.Flags().StringVar(&assigneeName, "name", "", "assignee display name")
	cmd.Flags().BoolVar(&split, "split", false, "split into subtasks")
	cmd.Flags().StringSliceVar(&subtasks, "subtask", nil, "subtask title (repeatable)")
	return cmd
}

func newTaskDeleteCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task (irreversible)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.requirePrincipal()
			if err != nil {
				return err
			}
			// Deletion is irreversible: it always goes through an explicit
			// confirmation unless --force was given.
			if !force && !app.confirm(fmt.Sprintf("Delete task %s? This cannot be undone", args[0])) {
				fmt.Fprintln(app.out, "Aborted.")
				return nil
			}
			if err := app.task.Remove(cmd.Context(), p, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Task %s deleted\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation")
	return cmd
}

func (a *App) confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N]: ", prompt)
	reader := bufio.NewReader(a.in)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
