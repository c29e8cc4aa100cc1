package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mysteryweb/internal/builder"
	"mysteryweb/internal/entity"
	"mysteryweb/internal/graph"
	"mysteryweb/internal/layout"
)

type buildFlags struct {
	view          string
	character     string
	algorithm     string
	exclude       []string
	relationships []string
	orphans       bool
	noIntegrity   bool
	dependencies  bool
	output        string
}

func buildCmd() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a laid-out graph and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.view, "view", "default", "default, puzzle-focus, content-status or character-journey")
	cmd.Flags().StringVar(&flags.character, "character", "", "Character id for the character-journey view")
	cmd.Flags().StringVar(&flags.algorithm, "algorithm", "", "Layout override: none, dagre, pure-dagre, force, force-clustered")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "Entity types to leave out")
	cmd.Flags().StringSliceVar(&flags.relationships, "rel", nil, "Only keep these relationship types")
	cmd.Flags().BoolVar(&flags.orphans, "orphans", false, "Keep entities without relationships")
	cmd.Flags().BoolVar(&flags.noIntegrity, "no-integrity", false, "Skip dangling-reference placeholders")
	cmd.Flags().BoolVar(&flags.dependencies, "dependencies", false, "Add puzzle-to-puzzle dependency edges")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write JSON to this file instead of stdout")
	return cmd
}

func runBuild(cmd *cobra.Command, flags buildFlags) error {
	ctx := cmd.Context()

	view, err := builder.ParseView(flags.view)
	if err != nil {
		return err
	}
	if view == builder.ViewConnectionWeb {
		return fmt.Errorf("use the web command for the connection-web view")
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
	if flags.algorithm != "" {
		if layoutCfg.Algorithm, err = layout.ParseAlgorithm(flags.algorithm); err != nil {
			return err
		}
	}

	opts := builder.Options{
		View:                      view,
		IncludeOrphans:            flags.orphans || s.cfg.Build.IncludeOrphans,
		SkipIntegrity:             flags.noIntegrity || !s.cfg.IntegrityEnabled(),
		IncludePuzzleDependencies: flags.dependencies,
		Layout:                    layoutCfg,
	}
	for _, raw := range flags.exclude {
		t, ok := entity.ParseType(raw)
		if !ok {
			return fmt.Errorf("unknown entity type %q", raw)
		}
		opts.ExcludeEntityTypes = append(opts.ExcludeEntityTypes, t)
	}
	for _, raw := range flags.relationships {
		opts.FilterRelationships = append(opts.FilterRelationships, graph.RelationshipType(raw))
	}

	data, err := s.src.Load(ctx)
	if err != nil {
		return err
	}

	b, recorder := s.newBuilder()
	var gd *graph.GraphData
	switch view {
	case builder.ViewPuzzleFocus:
		gd, err = b.BuildPuzzleFocusGraph(ctx, data, opts)
	case builder.ViewContentStatus:
		gd, err = b.BuildContentStatusGraph(ctx, data, opts)
	case builder.ViewCharacterJourney:
		gd, err = b.BuildCharacterJourneyGraph(ctx, data, flags.character, opts)
	default:
		gd, err = b.BuildGraphData(ctx, data, opts)
	}
	if err != nil {
		return err
	}

	s.log.Info("graph built",
		"view", gd.Metadata.View,
		"layout", gd.Metadata.Layout,
		"nodes", len(gd.Nodes),
		"edges", len(gd.Edges),
		"duration_ms", gd.Metadata.Metrics.DurationMS,
		"layout_ms", totalMillis(recorder.Observations(builder.MetricLayoutTime)))
	return writeJSON(cmd.OutOrStdout(), flags.output, gd)
}
