package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mysteryweb/internal/graph"
	"mysteryweb/internal/layout"
)

func layoutCmd() *cobra.Command {
	var algorithm string
	var direction string
	var output string
	cmd := &cobra.Command{
		Use:   "layout <graph.json|->",
		Short: "Re-position the nodes of a previously built graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			layoutCfg, err := cfg.LayoutFor()
			if err != nil {
				return err
			}
			if algorithm != "" {
				if layoutCfg.Algorithm, err = layout.ParseAlgorithm(algorithm); err != nil {
					return err
				}
			}
			if layoutCfg.Algorithm == "" {
				layoutCfg.Algorithm = layout.Dagre
			}
			if direction != "" {
				d := layout.Direction(strings.ToUpper(direction))
				switch d {
				case layout.TopBottom, layout.BottomTop, layout.LeftRight, layout.RightLeft:
					layoutCfg.Direction = d
				default:
					return fmt.Errorf("unsupported layout direction: %q", direction)
				}
			}

			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			var gd graph.GraphData
			if err := json.Unmarshal(raw, &gd); err != nil {
				return fmt.Errorf("decoding graph %s: %w", args[0], err)
			}

			nodes, edges, err := layout.New(log).Apply(ctx, gd.Nodes, gd.Edges, layoutCfg)
			if err != nil {
				return err
			}
			gd.Nodes, gd.Edges = nodes, edges
			gd.Metadata.Layout = string(layoutCfg.Algorithm)
			log.Info("layout applied", "algorithm", layoutCfg.Algorithm, "nodes", len(nodes))
			return writeJSON(cmd.OutOrStdout(), output, &gd)
		},
	}
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "Defaults to the configured algorithm, then dagre: none, dagre, pure-dagre, force, force-clustered")
	cmd.Flags().StringVar(&direction, "direction", "", "Rank direction for hierarchical layouts: TB, BT, LR, RL")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write JSON to this file instead of stdout")
	return cmd
}
