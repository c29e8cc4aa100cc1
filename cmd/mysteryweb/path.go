package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mysteryweb/internal/graph"
	"mysteryweb/internal/traversal"
)

func pathCmd() *cobra.Command {
	var all bool
	var maxPaths int
	cmd := &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Show how two entities are connected",
		Args:  cobra.ExactArgs(2),
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
			maps := data.Lookup()
			edges := graph.NewResolver(s.log).ResolveAllRelationships(data, graph.ResolveOptions{
				Lookup:             maps,
				PuzzleDependencies: true,
			})
			links := traversal.Links(edges)
			engine := traversal.New(s.log)

			var paths [][]string
			if all {
				paths = engine.FindAllPaths(links, args[0], args[1], maxPaths)
			} else if path := engine.FindPath(links, args[0], args[1]); path != nil {
				paths = [][]string{path}
			}

			out := cmd.OutOrStdout()
			if len(paths) == 0 {
				fmt.Fprintf(out, "No path between %s and %s.\n", args[0], args[1])
				return nil
			}
			for _, path := range paths {
				labels := make([]string, len(path))
				for i, id := range path {
					labels[i] = maps.LabelOf(id)
				}
				fmt.Fprintf(out, "%s (%d hops)\n", strings.Join(labels, " -> "), len(path)-1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List every simple path")
	cmd.Flags().IntVar(&maxPaths, "max", traversal.DefaultMaxPaths, "Maximum paths with --all")
	return cmd
}
