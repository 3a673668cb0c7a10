package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cardsets/internal/tree"
	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// loopNames returns the loop carried by err, or nil when err is not a
// *tree.LoopError.
func loopNames(err error) []string {
	var loopErr *tree.LoopError
	if errors.As(err, &loopErr) {
		return loopErr.Names
	}
	return nil
}

type reparentJSON struct {
	Name   string   `json:"name"`
	Parent string   `json:"parent"`
	Loop   []string `json:"loop"`
}

func newReparentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reparent <name> [parent]",
		Short: "Move a card set under a new parent, or make it a root",
		Long: "Move a card set under a new parent. Without a parent the card set\n" +
			"becomes a root. The move is made even when it closes a loop; the loop\n" +
			"is then reported on stderr.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, parent := types.CanonicalName(args[0]), ""
			if len(args) == 2 {
				parent = types.CanonicalName(args[1])
			}
			return a.withTable(func(_ types.CardSetTable, svc *tree.Service) error {
				loop, err := svc.Reparent(name, parent)
				if err != nil {
					return err
				}
				if len(loop) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: card sets now form a loop: %s\n", formatLoop(loop))
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), reparentJSON{Name: name, Parent: parent, Loop: loop})
				}
				if parent == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Card set %s is now a root\n", name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Card set %s moved under %s\n", name, parent)
				}
				return nil
			})
		},
	}
}

func newBreakLoopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "break-loop <name>",
		Short: "Clear a card set's parent to break the loop it sits in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(func(_ types.CardSetTable, svc *tree.Service) error {
				if err := svc.BreakLoop(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Card set %s is now a root\n", types.CanonicalName(args[0]))
				return nil
			})
		},
	}
}

func newLoopsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "loops",
		Short: "List every parent loop in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(func(_ types.CardSetTable, svc *tree.Service) error {
				loops, err := svc.Loops()
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), loops)
				}
				for _, loop := range loops {
					fmt.Fprintln(cmd.OutOrStdout(), formatLoop(loop))
				}
				return nil
			})
		},
	}
}

type checkJSON struct {
	Name   string   `json:"name"`
	Looped bool     `json:"looped"`
	Loop   []string `json:"loop"`
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <name>",
		Short: "Report whether a card set's ancestry runs into a loop",
		Long:  "Report whether a card set's ancestry runs into a loop. Exits 1 when it does.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(func(table types.CardSetTable, svc *tree.Service) error {
				cs, err := table.Get(args[0])
				if err != nil {
					return fmt.Errorf("card set %q: %w", args[0], err)
				}
				loop, err := svc.LoopNames(cs)
				if err != nil {
					return err
				}

				if a.flags.jsonMode {
					if err := writeJSON(cmd.OutOrStdout(), checkJSON{Name: cs.Name, Looped: len(loop) > 0, Loop: loop}); err != nil {
						return err
					}
				} else if len(loop) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No loop reached from %s\n", cs.Name)
				}
				if len(loop) > 0 {
					return &tree.LoopError{Names: loop}
				}
				return nil
			})
		},
	}
}
