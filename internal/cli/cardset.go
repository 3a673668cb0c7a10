package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cardsets/internal/tree"
	"github.com/mesh-intelligence/cardsets/pkg/types"
)

func newCreateCmd(a *app) *cobra.Command {
	var cs types.CardSet
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a card set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs.Name = args[0]
			return a.withTable(func(table types.CardSetTable, _ *tree.Service) error {
				if err := table.Create(&cs); err != nil {
					return fmt.Errorf("create card set %q: %w", args[0], err)
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), toJSON(&cs))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created card set: %s\n", cs.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&cs.Parent, "parent", "", "name of the parent card set")
	cmd.Flags().StringVar(&cs.Author, "author", "", "author")
	cmd.Flags().StringVar(&cs.Comment, "comment", "", "comment")
	cmd.Flags().StringVar(&cs.Annotations, "annotations", "", "annotations")
	cmd.Flags().BoolVar(&cs.InUse, "in-use", false, "mark the card set as in use")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Display a card set with its ancestry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(func(table types.CardSetTable, svc *tree.Service) error {
				cs, err := table.Get(args[0])
				if err != nil {
					return fmt.Errorf("card set %q: %w", args[0], err)
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), toJSON(cs))
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Name:        %s\n", cs.Name)
				fmt.Fprintf(w, "ID:          %s\n", cs.CardSetID)
				fmt.Fprintf(w, "Parent:      %s\n", cs.Parent)
				fmt.Fprintf(w, "Author:      %s\n", cs.Author)
				fmt.Fprintf(w, "Comment:     %s\n", cs.Comment)
				fmt.Fprintf(w, "Annotations: %s\n", cs.Annotations)
				fmt.Fprintf(w, "In use:      %t\n", cs.InUse)
				fmt.Fprintf(w, "Created:     %s\n", cs.CreatedAt.Format(timeFormat))
				fmt.Fprintf(w, "Updated:     %s\n", cs.UpdatedAt.Format(timeFormat))

				// A broken chain is worth showing but does not fail the command.
				chain, err := svc.Ancestors(cs.Name)
				if loop := loopNames(err); loop != nil {
					fmt.Fprintf(w, "Loop:        %s\n", formatLoop(loop))
				} else if err == nil && len(chain) > 0 {
					fmt.Fprintf(w, "Path:        %s\n", strings.Join(append(reversed(chain), cs.Name), " > "))
				}
				return nil
			})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var (
		parent string
		inUse  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List card sets by name",
		Long:  "List card sets by name. --parent \"\" lists only roots.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := types.Filter{}
			if cmd.Flags().Changed("parent") {
				filter[types.FilterParent] = parent
			}
			if cmd.Flags().Changed("in-use") {
				filter[types.FilterInUse] = inUse
			}
			return a.withTable(func(table types.CardSetTable, _ *tree.Service) error {
				sets, err := table.Fetch(filter)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), toJSONList(sets))
				}
				writeNames(cmd.OutOrStdout(), sets)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "only card sets with this parent")
	cmd.Flags().BoolVar(&inUse, "in-use", false, "only card sets with this in-use mark")
	return cmd
}

func newChildrenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "children <name>",
		Short: "List the direct children of a card set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(func(table types.CardSetTable, svc *tree.Service) error {
				cs, err := table.Get(args[0])
				if err != nil {
					return fmt.Errorf("card set %q: %w", args[0], err)
				}
				children, err := svc.FindChildren(cs)
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), toJSONList(children))
				}
				writeNames(cmd.OutOrStdout(), children)
				return nil
			})
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	var (
		author, comment, annotations string
		inUse                        bool
	)
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Change a card set's author, comment, annotations or in-use mark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(func(table types.CardSetTable, _ *tree.Service) error {
				cs, err := table.Get(args[0])
				if err != nil {
					return fmt.Errorf("card set %q: %w", args[0], err)
				}
				changed := cmd.Flags().Changed
				if changed("author") {
					cs.Author = author
				}
				if changed("comment") {
					cs.Comment = comment
				}
				if changed("annotations") {
					cs.Annotations = annotations
				}
				if changed("in-use") {
					cs.InUse = inUse
				}
				if err := table.Update(cs); err != nil {
					return fmt.Errorf("update %q: %w", args[0], err)
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), toJSON(cs))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated card set: %s\n", cs.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "author")
	cmd.Flags().StringVar(&comment, "comment", "", "comment")
	cmd.Flags().StringVar(&annotations, "annotations", "", "annotations")
	cmd.Flags().BoolVar(&inUse, "in-use", false, "mark (or with =false, unmark) the card set as in use")
	return cmd
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a card set, repointing its children",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(func(table types.CardSetTable, _ *tree.Service) error {
				if err := table.Rename(args[0], args[1]); err != nil {
					return fmt.Errorf("rename %q: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed card set: %s -> %s\n",
					types.CanonicalName(args[0]), types.CanonicalName(args[1]))
				return nil
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a card set, moving its children to its parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(func(_ types.CardSetTable, svc *tree.Service) error {
				if err := svc.DeleteCardSet(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted card set: %s\n", types.CanonicalName(args[0]))
				return nil
			})
		},
	}
}

func reversed(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[len(names)-1-i] = name
	}
	return out
}
