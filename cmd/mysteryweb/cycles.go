package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mysteryweb/internal/graph"
	"mysteryweb/internal/traversal"
)

func cyclesCmd() *cobra.Command {
	var puzzlesOnly bool
	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "List directed cycles in the relationship graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			data, err := s.src.Load(ctx)
			if err != nil {
				return err
			}
			edges := graph.NewResolver(s.log).ResolveAllRelationships(data, graph.ResolveOptions{PuzzleDependencies: true})
			if puzzlesOnly {
				kept := edges[:0]
				for _, e := range edges {
					if e.Type == graph.RelChain || e.Type == graph.RelDependency {
						kept = append(kept, e)
					}
				}
				edges = kept
			}

			cycles := traversal.New(s.log).DetectCycles(traversal.Links(edges))
			out := cmd.OutOrStdout()
			if len(cycles) == 0 {
				fmt.Fprintln(out, "No cycles found.")
				return nil
			}
			fmt.Fprintf(out, "Cycles (%d):\n", len(cycles))
			for _, cycle := range cycles {
				fmt.Fprintf(out, "  - %s -> %s\n", strings.Join(cycle, " -> "), cycle[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&puzzlesOnly, "puzzles", false, "Only follow puzzle chain and dependency edges")
	return cmd
}
