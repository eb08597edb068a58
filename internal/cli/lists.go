package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pscheid92/tasklists/internal/domain"
	"github.com/spf13/cobra"
)

func newListsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Show and manage lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.loadStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			renderLists(cmd.OutOrStdout(), st.Lists(), app.clock.Now())
			return nil
		},
	}
	cmd.AddCommand(newListsAddCmd(app))
	cmd.AddCommand(newListsRenameCmd(app))
	cmd.AddCommand(newListsArchiveCmd(app))
	cmd.AddCommand(newListsMoveCmd(app))
	cmd.AddCommand(newListsRemoveCmd(app))
	return cmd
}

func newListsAddCmd(app *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.store()
			if err != nil {
				return err
			}
			list, err := st.AddList(cmd.Context(), strings.TrimSpace(args[0]), description)
			if err != nil {
				return apiError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created list %s (%s)\n", list.Name, list.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "List description")
	return cmd
}

func newListsRenameCmd(app *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "rename <list> <name>",
		Short: "Rename a list or change its description",
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
			if !cmd.Flags().Changed("description") {
				description = list.Description
			}
			if err := st.UpdateList(cmd.Context(), list.ID, strings.TrimSpace(args[1]), description); err != nil {
				return apiError(err)
			}

			updated, err := findList(st.Lists(), list.ID.String())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed list to %s (%s)\n", updated.Name, updated.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func newListsArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <list>",
		Short: "Archive a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.loadStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			list, err := findList(st.Lists(), args[0])
			if err != nil {
				return err
			}
			if err := st.ArchiveList(cmd.Context(), list.ID); err != nil {
				return apiError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived list %s\n", list.Name)
			return nil
		},
	}
}

func newListsMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <list> <position>",
		Short: "Move a list to a 1-based position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.loadStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			lists := st.Lists()
			list, err := findList(lists, args[0])
			if err != nil {
				return err
			}
			position, err := strconv.Atoi(args[1])
			if err != nil || position < 1 || position > len(lists) {
				return fmt.Errorf("position must be between 1 and %d", len(lists))
			}

			from := slices.IndexFunc(lists, func(l domain.List) bool { return l.ID == list.ID })
			if err := st.ChangeListPriority(cmd.Context(), from, position-1); err != nil {
				return apiError(err)
			}
			renderLists(cmd.OutOrStdout(), st.Lists(), app.clock.Now())
			return nil
		},
	}
}

func newListsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <list>",
		Aliases: []string{"delete"},
		Short:   "Delete a list and its tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.loadStore(cmd.Context(), false)
			if err != nil {
				return err
			}
			list, err := findList(st.Lists(), args[0])
			if err != nil {
				return err
			}
			if err := st.RemoveList(cmd.Context(), list.ID); err != nil {
				return apiError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted list %s\n", list.Name)
			return nil
		},
	}
}

// findList matches ref against list IDs, slugs and names, in that order.
func findList(lists []domain.List, ref string) (domain.List, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		for _, l := range lists {
			if l.ID == id {
				return l, nil
			}
		}
	}
	for _, l := range lists {
		if l.Slug == ref {
			return l, nil
		}
	}
	for _, l := range lists {
		if strings.EqualFold(l.Name, ref) {
			return l, nil
		}
	}
	return domain.List{}, fmt.Errorf("list %q not found", ref)
}
