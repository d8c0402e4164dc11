package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"todo-backend/internal/app"
	"todo-backend/internal/task/domain"
	"todo-backend/internal/task/usecase"

	"github.com/spf13/cobra"
)

// reminderFlags are shared by add and edit
type reminderFlags struct {
	at string
	in time.Duration
}

func (f *reminderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.at, "remind-at", "", "reminder time (RFC3339)")
	cmd.Flags().DurationVar(&f.in, "remind-in", 0, "reminder offset from now, e.g. 1h30m")
}

func (f *reminderFlags) resolve(now time.Time) (*time.Time, error) {
	switch {
	case f.at != "" && f.in != 0:
		return nil, fmt.Errorf("use either --remind-at or --remind-in")
	case f.at != "":
		t, err := time.Parse(time.RFC3339, f.at)
		if err != nil {
			return nil, fmt.Errorf("invalid --remind-at: %w", err)
		}
		return &t, nil
	case f.in != 0:
		t := now.Add(f.in)
		return &t, nil
	default:
		return nil, nil
	}
}

func (f *reminderFlags) changed(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("remind-at") || cmd.Flags().Changed("remind-in")
}

// NewAddCommand creates a task
func NewAddCommand(open Opener) *cobra.Command {
	var (
		description string
		priority    string
		reminder    reminderFlags
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Long: `Add a task.

Examples:
  todo add "Buy milk"
  todo add "Call dentist" -p high --remind-in 1h`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("title must not be blank")
			}
			return withApp(cmd, open, func(a *app.App) error {
				at, err := reminder.resolve(a.Clock.Now())
				if err != nil {
					return err
				}
				task, err := a.Tasks.AddTask(domain.Draft{
					Title:       title,
					Description: description,
					Priority:    domain.ParsePriority(priority),
					Reminder:    at,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", shortID(task.ID), task.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(domain.PriorityMedium), "low, medium or high")
	reminder.register(cmd)
	return cmd
}

// NewListCommand prints the day-grouped view
func NewListCommand(open Opener) *cobra.Command {
	var (
		hideCompleted bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks grouped by day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				groups := a.Tasks.GroupedByDay(hideCompleted)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), groups)
				}
				printGroups(cmd.OutOrStdout(), groups)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&hideCompleted, "hide-completed", false, "hide completed tasks")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

// NewToggleCommand flips completion of one task
func NewToggleCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [id]",
		Short: "Mark a task done or not done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				id, err := resolveID(a.Tasks.Tasks(), args[0])
				if err != nil {
					return err
				}
				task, err := a.Tasks.ToggleCompleted(id)
				if err != nil {
					return err
				}
				state := "open"
				if task.IsCompleted {
					state = "done"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s is %s\n", shortID(task.ID), task.Title, state)
				return nil
			})
		},
	}
}

// NewEditCommand changes the fields given as flags
func NewEditCommand(open Opener) *cobra.Command {
	var (
		title         string
		description   string
		priority      string
		clearReminder bool
		reminder      reminderFlags
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearReminder && reminder.changed(cmd) {
				return fmt.Errorf("--clear-reminder cannot be combined with a new reminder")
			}
			return withApp(cmd, open, func(a *app.App) error {
				id, err := resolveID(a.Tasks.Tasks(), args[0])
				if err != nil {
					return err
				}
				task, err := a.Tasks.GetTask(id)
				if err != nil {
					return err
				}

				flags := cmd.Flags()
				if flags.Changed("title") {
					if strings.TrimSpace(title) == "" {
						return fmt.Errorf("title must not be blank")
					}
					task.Title = strings.TrimSpace(title)
				}
				if flags.Changed("description") {
					task.Description = description
				}
				if flags.Changed("priority") {
					task.Priority = domain.ParsePriority(priority)
				}
				if clearReminder {
					task.Reminder = nil
				}
				if reminder.changed(cmd) {
					at, err := reminder.resolve(a.Clock.Now())
					if err != nil {
						return err
					}
					task.Reminder = at
				}

				updated, err := a.Tasks.UpdateTask(*task)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", shortID(updated.ID), updated.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().BoolVar(&clearReminder, "clear-reminder", false, "remove the reminder")
	reminder.register(cmd)
	return cmd
}

// NewRemoveCommand deletes tasks
func NewRemoveCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id...]",
		Aliases: []string{"remove"},
		Short:   "Remove tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				tasks := a.Tasks.Tasks()
				ids := make([]string, 0, len(args))
				for _, arg := range args {
					id, err := resolveID(tasks, arg)
					if err != nil {
						return err
					}
					ids = append(ids, id)
				}
				if err := a.Tasks.RemoveTasks(ids); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d task(s)\n", len(ids))
				return nil
			})
		},
	}
}

// NewStatsCommand prints completion statistics
func NewStatsCommand(open Opener) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				stats := a.Tasks.Statistics()
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total:      %d\n", stats.Total)
				fmt.Fprintf(out, "Completed:  %d\n", stats.Completed)
				fmt.Fprintf(out, "Pending:    %d\n", stats.Pending)
				fmt.Fprintf(out, "Completion: %.1f%%\n", stats.CompletionRate)
				for _, p := range domain.Priorities {
					fmt.Fprintf(out, "  %-8s %d\n", p, stats.ByPriority[p])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

// NewSearchCommand runs a typo-tolerant search
func NewSearchCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search task titles and descriptions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(a *app.App) error {
				tasks := a.Tasks.Search(strings.Join(args, " "))
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matching tasks")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, t := range tasks {
					printTask(w, t)
				}
				return w.Flush()
			})
		},
	}
}

func printGroups(out io.Writer, groups []domain.DayGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(out, "No tasks")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", g.Label, len(g.Tasks))
		for _, t := range g.Tasks {
			printTask(w, t)
		}
	}
	w.Flush()
}

func printTask(w io.Writer, t domain.Task) {
	box := "[ ]"
	if t.IsCompleted {
		box = "[x]"
	}
	reminder := ""
	if t.Reminder != nil {
		reminder = "⏰ " + t.Reminder.Format("02.01 15:04")
	}
	fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", box, shortID(t.ID), t.Priority, t.Title, reminder)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveID accepts a full id or any unambiguous prefix of one
func resolveID(tasks []domain.Task, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("%w: empty id", usecase.ErrTaskNotFound)
	}
	for _, t := range tasks {
		if t.ID == ref {
			return t.ID, nil
		}
	}
	var match string
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", usecase.ErrTaskNotFound, ref)
	}
	return match, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
