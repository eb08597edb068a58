package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/tasklists/internal/client"
	"github.com/pscheid92/tasklists/internal/domain"
	"github.com/spf13/cobra"
)

const minTaskRefChars = 4

func newTasksCmd(app *App) *cobra.Command {
	var listRef string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Show and manage tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.loadStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			lists := st.Lists()
			if listRef != "" {
				list, err := findList(lists, listRef)
				if err != nil {
					return err
				}
				lists = []domain.List{list}
			}
			renderTasks(cmd.OutOrStdout(), lists, st.Tasks(), app.clock.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&listRef, "list", "", "Only show tasks of this list")
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksCompleteCmd(app, "done", "Mark a task completed", true))
	cmd.AddCommand(newTasksCompleteCmd(app, "undone", "Mark a task open again", false))
	cmd.AddCommand(newTasksRemoveCmd(app))
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var (
		description string
		date        string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "add <list> <name>",
		Short: "Add a task to a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.loadStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			list, err := findList(st.Lists(), args[0])
			if err != nil {
				return err
			}

			due := app.clock.Now().UTC().Truncate(24 * time.Hour)
			if date != "" {
				due, err = time.Parse(dateLayout, date)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
			}

			task, err := st.AddTask(cmd.Context(), client.NewTask{
				Name:        strings.TrimSpace(args[1]),
				Description: description,
				Date:        due,
				ListID:      list.ID,
				Tags:        tags,
			})
			if err != nil {
				return apiError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", renderTask(newStyles(cmd.OutOrStdout()), *task), list.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&date, "date", "", "Due date as YYYY-MM-DD (default today)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag, repeatable")
	return cmd
}

func newTasksCompleteCmd(app *App, use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.loadStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			task, err := findTask(st.Tasks(), args[0])
			if err != nil {
				return err
			}
			if err := st.MarkTaskCompleted(cmd.Context(), task.ID, completed); err != nil {
				return apiError(err)
			}

			updated, err := findTask(st.Tasks(), task.ID.String())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTask(newStyles(cmd.OutOrStdout()), updated))
			return nil
		},
	}
}

func newTasksRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.loadStore(cmd.Context(), true)
			if err != nil {
				return err
			}
			task, err := findTask(st.Tasks(), args[0])
			if err != nil {
				return err
			}
			if err := st.RemoveTask(cmd.Context(), task.ID); err != nil {
				return apiError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", task.Name)
			return nil
		},
	}
}

// findTask matches ref as a full task ID or as a unique ID prefix.
func findTask(tasks []domain.Task, ref string) (domain.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if id, err := uuid.Parse(ref); err == nil {
		for _, t := range tasks {
			if t.ID == id {
				return t, nil
			}
		}
		return domain.Task{}, fmt.Errorf("task %q not found", ref)
	}

	if len(ref) < minTaskRefChars {
		return domain.Task{}, fmt.Errorf("task reference %q is too short, use at least %d characters", ref, minTaskRefChars)
	}

	var matches []domain.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID.String(), ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Task{}, fmt.Errorf("task %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return domain.Task{}, fmt.Errorf("task reference %q is ambiguous", ref)
	}
}
