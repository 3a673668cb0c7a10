package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cardsets/internal/tree"
	"github.com/mesh-intelligence/cardsets/pkg/types"
)

// nodeJSON is the --json shape of one node of the tree listing.
type nodeJSON struct {
	Name          string     `json:"name"`
	InUse         bool       `json:"in_use"`
	MissingParent bool       `json:"missing_parent,omitempty"`
	Children      []nodeJSON `json:"children"`
}

type loopJSON struct {
	Names []string `json:"names"`
	Tree  nodeJSON `json:"tree"`
}

type forestJSON struct {
	Roots []nodeJSON `json:"roots"`
	Loops []loopJSON `json:"loops"`
}

func toNodeJSON(n *tree.Node) nodeJSON {
	out := nodeJSON{
		Name:          n.CardSet.Name,
		InUse:         n.CardSet.InUse,
		MissingParent: n.MissingParent,
		Children:      make([]nodeJSON, 0, len(n.Children)),
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, toNodeJSON(child))
	}
	return out
}

func toForestJSON(f *tree.Forest) forestJSON {
	out := forestJSON{
		Roots: make([]nodeJSON, 0, len(f.Roots)),
		Loops: make([]loopJSON, 0, len(f.Loops)),
	}
	for _, root := range f.Roots {
		out.Roots = append(out.Roots, toNodeJSON(root))
	}
	for _, loop := range f.Loops {
		out.Loops = append(out.Loops, loopJSON{Names: loop.Names, Tree: toNodeJSON(loop.Tree)})
	}
	return out
}

// writeForest prints the forest as an indented outline. Each loop's subtree
// is introduced by a "loop:" line and its members are marked with "*".
func writeForest(w io.Writer, f *tree.Forest) {
	loopAt := make(map[*tree.Node][]string, len(f.Loops))
	inLoop := make(map[string]bool)
	for _, loop := range f.Loops {
		loopAt[loop.Tree] = loop.Names
		for _, name := range loop.Names {
			inLoop[name] = true
		}
	}

	f.Walk(func(node *tree.Node, depth int) {
		if names, ok := loopAt[node]; ok {
			fmt.Fprintf(w, "loop: %s\n", formatLoop(names))
		}
		line := strings.Repeat("  ", depth) + node.CardSet.Name
		if inLoop[node.CardSet.Name] {
			line += " *"
		}
		if node.MissingParent {
			line += fmt.Sprintf(" (missing parent %q)", node.CardSet.Parent)
		}
		fmt.Fprintln(w, line)
	})
}

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show all card sets as a nested tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withTable(func(_ types.CardSetTable, svc *tree.Service) error {
				forest, err := svc.Forest()
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), toForestJSON(forest))
				}
				writeForest(cmd.OutOrStdout(), forest)
				return nil
			})
		},
	}
}
