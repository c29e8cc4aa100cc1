package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mysteryweb/internal/builder"
	"mysteryweb/internal/entity"
	"mysteryweb/internal/layout"
)

func webCmd() *cobra.Command {
	var nodeType string
	var depth int
	var maxNodes int
	var expand []string
	var algorithm string
	var output string
	cmd := &cobra.Command{
		Use:   "web <entity-id>",
		Short: "Build the connection web around one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var startType entity.Type
			if nodeType != "" {
				t, ok := entity.ParseType(nodeType)
				if !ok {
					return fmt.Errorf("unknown entity type %q", nodeType)
				}
				startType = t
			}

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			layoutCfg, err := s.cfg.LayoutFor()
			if err != nil {
				return err
			}
			if algorithm != "" {
				if layoutCfg.Algorithm, err = layout.ParseAlgorithm(algorithm); err != nil {
					return err
				}
			}
			if depth == 0 {
				depth = s.cfg.Build.MaxDepth
			}
			if maxNodes == 0 {
				maxNodes = s.cfg.Build.MaxNodes
			}

			data, err := s.src.Load(ctx)
			if err != nil {
				return err
			}

			b, recorder := s.newBuilder()
			gd, err := b.BuildFullConnectionGraph(ctx, data, args[0], startType, builder.WebOptions{
				MaxDepth:      depth,
				MaxNodes:      maxNodes,
				ExpandedNodes: expand,
				Layout:        layoutCfg,
			})
			if err != nil {
				return err
			}
			if d := gd.DepthMetadata; d != nil {
				s.log.Info("connection web built",
					"start", args[0],
					"nodes", len(gd.Nodes),
					"reachable", d.TotalReachableNodes,
					"complete", d.IsCompleteNetwork)
			}
			logBuildStats(s.log, "connection web stats", recorder)
			return writeJSON(cmd.OutOrStdout(), output, gd)
		},
	}
	cmd.Flags().StringVar(&nodeType, "type", "", "Entity type of the start node")
	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum hops from the start (default 10)")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "Maximum nodes to visit (default 250)")
	cmd.Flags().StringSliceVar(&expand, "expand", nil, "Node ids allowed beyond depth 2")
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "force or force-clustered")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write JSON to this file instead of stdout")
	return cmd
}
