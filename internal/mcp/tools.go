package mcp

import (
	"context"
	"fmt"
	"sort"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"mysteryweb/internal/builder"
	"mysteryweb/internal/entity"
	"mysteryweb/internal/graph"
	"mysteryweb/internal/layout"
	"mysteryweb/internal/traversal"
	"mysteryweb/internal/validate"
)

type BuildGraphInput struct {
	View          string   `json:"view,omitempty" jsonschema:"default, puzzle-focus, content-status or character-journey"`
	CharacterID   string   `json:"character_id,omitempty" jsonschema:"character whose journey to show"`
	Algorithm     string   `json:"algorithm,omitempty" jsonschema:"none, dagre, pure-dagre, force or force-clustered"`
	ExcludeTypes  []string `json:"exclude_types,omitempty" jsonschema:"entity types to leave out"`
	Relationships []string `json:"relationships,omitempty" jsonschema:"only keep these relationship types"`
	IncludeOrphan bool     `json:"include_orphans,omitempty" jsonschema:"keep entities without edges"`
}

type ConnectionWebInput struct {
	NodeID   string   `json:"node_id" jsonschema:"entity to start from"`
	NodeType string   `json:"node_type,omitempty" jsonschema:"entity type of node_id"`
	MaxDepth int      `json:"max_depth,omitempty" jsonschema:"maximum hops from the start"`
	MaxNodes int      `json:"max_nodes,omitempty" jsonschema:"maximum nodes to visit"`
	Expanded []string `json:"expanded,omitempty" jsonschema:"only these node ids are added beyond depth 2"`
}

type FindPathInput struct {
	From     string `json:"from" jsonschema:"start entity id"`
	To       string `json:"to" jsonschema:"end entity id"`
	All      bool   `json:"all,omitempty" jsonschema:"enumerate every simple path"`
	MaxPaths int    `json:"max_paths,omitempty" jsonschema:"limit for all paths"`
}

type IntegrityReportInput struct{}

type ListEntitiesInput struct {
	Type string `json:"type,omitempty" jsonschema:"character, element, puzzle or timeline"`
}

type NodeOutput struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Label         string  `json:"label"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	IsPlaceholder bool    `json:"is_placeholder,omitempty"`
	Distance      *int    `json:"distance,omitempty"`
}

type EdgeOutput struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

type DepthOutput struct {
	MaxReachableDepth   int  `json:"max_reachable_depth"`
	TotalReachableNodes int  `json:"total_reachable_nodes"`
	IsCompleteNetwork   bool `json:"is_complete_network"`
	NodesAtCurrentDepth int  `json:"nodes_at_current_depth"`
	CurrentDepthLimit   int  `json:"current_depth_limit"`
}

type GraphOutput struct {
	View           string       `json:"view"`
	Layout         string       `json:"layout"`
	Nodes          []NodeOutput `json:"nodes"`
	Edges          []EdgeOutput `json:"edges"`
	Components     int          `json:"components"`
	IntegrityScore *int         `json:"integrity_score,omitempty"`
	Warnings       []string     `json:"warnings,omitempty"`
	Depth          *DepthOutput `json:"depth,omitempty"`
}

type FindPathOutput struct {
	Paths [][]string `json:"paths"`
}

type IssueOutput struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Entity   string `json:"entity"`
	Type     string `json:"type,omitempty"`
}

type IntegrityReportOutput struct {
	Score               int           `json:"score"`
	BrokenRelationships int           `json:"broken_relationships"`
	TotalRelationships  int           `json:"total_relationships"`
	Issues              []IssueOutput `json:"issues"`
}

type EntitySummaryOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type ListEntitiesOutput struct {
	Entities []EntitySummaryOutput `json:"entities"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "build_graph",
		Description: "Build a laid-out investigation graph for one view",
	}, s.handleBuildGraph)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "connection_web",
		Description: "Explore everything reachable from one entity within depth and node limits",
	}, s.handleConnectionWeb)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "find_path",
		Description: "Find how two entities are connected",
	}, s.handleFindPath)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "integrity_report",
		Description: "Report dangling references, cycles and disconnected content",
	}, s.handleIntegrityReport)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_entities",
		Description: "List entities with an optional type filter",
	}, s.handleListEntities)
}

func (s *Server) load(ctx context.Context) (*entity.Dataset, error) {
	data, err := s.src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	return data, nil
}

func (s *Server) handleBuildGraph(ctx context.Context, req *sdk.CallToolRequest, input BuildGraphInput) (*sdk.CallToolResult, GraphOutput, error) {
	view, err := builder.ParseView(input.View)
	if err != nil {
		return nil, GraphOutput{}, err
	}
	opts := builder.Options{View: view, IncludeOrphans: input.IncludeOrphan}
	if input.Algorithm != "" {
		alg, err := layout.ParseAlgorithm(input.Algorithm)
		if err != nil {
			return nil, GraphOutput{}, err
		}
		opts.Layout.Algorithm = alg
	}
	for _, raw := range input.ExcludeTypes {
		t, ok := entity.ParseType(raw)
		if !ok {
			return nil, GraphOutput{}, fmt.Errorf("unknown entity type %q", raw)
		}
		opts.ExcludeEntityTypes = append(opts.ExcludeEntityTypes, t)
	}
	for _, raw := range input.Relationships {
		opts.FilterRelationships = append(opts.FilterRelationships, graph.RelationshipType(raw))
	}

	data, err := s.load(ctx)
	if err != nil {
		return nil, GraphOutput{}, err
	}

	var gd *graph.GraphData
	switch view {
	case builder.ViewPuzzleFocus:
		gd, err = s.builder.BuildPuzzleFocusGraph(ctx, data, opts)
	case builder.ViewContentStatus:
		gd, err = s.builder.BuildContentStatusGraph(ctx, data, opts)
	case builder.ViewCharacterJourney:
		gd, err = s.builder.BuildCharacterJourneyGraph(ctx, data, input.CharacterID, opts)
	case builder.ViewConnectionWeb:
		return nil, GraphOutput{}, fmt.Errorf("use the connection_web tool for the connection-web view")
	default:
		gd, err = s.builder.BuildGraphData(ctx, data, opts)
	}
	if err != nil {
		return nil, GraphOutput{}, err
	}
	return nil, graphOutput(gd), nil
}

func (s *Server) handleConnectionWeb(ctx context.Context, req *sdk.CallToolRequest, input ConnectionWebInput) (*sdk.CallToolResult, GraphOutput, error) {
	if input.NodeID == "" {
		return nil, GraphOutput{}, fmt.Errorf("node_id is required")
	}
	var nodeType entity.Type
	if input.NodeType != "" {
		t, ok := entity.ParseType(input.NodeType)
		if !ok {
			return nil, GraphOutput{}, fmt.Errorf("unknown entity type %q", input.NodeType)
		}
		nodeType = t
	}

	data, err := s.load(ctx)
	if err != nil {
		return nil, GraphOutput{}, err
	}
	gd, err := s.builder.BuildFullConnectionGraph(ctx, data, input.NodeID, nodeType, builder.WebOptions{
		MaxDepth:      input.MaxDepth,
		MaxNodes:      input.MaxNodes,
		ExpandedNodes: input.Expanded,
	})
	if err != nil {
		return nil, GraphOutput{}, err
	}
	return nil, graphOutput(gd), nil
}

func (s *Server) handleFindPath(ctx context.Context, req *sdk.CallToolRequest, input FindPathInput) (*sdk.CallToolResult, FindPathOutput, error) {
	if input.From == "" || input.To == "" {
		return nil, FindPathOutput{}, fmt.Errorf("from and to are required")
	}
	data, err := s.load(ctx)
	if err != nil {
		return nil, FindPathOutput{}, err
	}

	edges := graph.NewResolver(s.log).ResolveAllRelationships(data, graph.ResolveOptions{PuzzleDependencies: true})
	links := traversal.Links(edges)
	engine := s.builder.Engine()

	out := FindPathOutput{Paths: [][]string{}}
	if input.All {
		if paths := engine.FindAllPaths(links, input.From, input.To, input.MaxPaths); paths != nil {
			out.Paths = paths
		}
		return nil, out, nil
	}
	if path := engine.FindPath(links, input.From, input.To); path != nil {
		out.Paths = append(out.Paths, path)
	}
	return nil, out, nil
}

func (s *Server) handleIntegrityReport(ctx context.Context, req *sdk.CallToolRequest, input IntegrityReportInput) (*sdk.CallToolResult, IntegrityReportOutput, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, IntegrityReportOutput{}, err
	}
	report, err := validate.Run(ctx, data, validate.Options{Engine: s.builder.Engine(), Log: s.log})
	if err != nil {
		return nil, IntegrityReportOutput{}, err
	}

	out := IntegrityReportOutput{
		Score:               report.Integrity.IntegrityScore,
		BrokenRelationships: report.Integrity.BrokenRelationships,
		TotalRelationships:  report.Integrity.TotalRelationships,
		Issues:              make([]IssueOutput, 0, len(report.Issues)),
	}
	for _, issue := range report.Issues {
		out.Issues = append(out.Issues, IssueOutput{
			Severity: string(issue.Severity),
			Code:     issue.Code,
			Message:  issue.Message,
			Entity:   issue.Entity,
			Type:     string(issue.Type),
		})
	}
	return nil, out, nil
}

func (s *Server) handleListEntities(ctx context.Context, req *sdk.CallToolRequest, input ListEntitiesInput) (*sdk.CallToolResult, ListEntitiesOutput, error) {
	var only entity.Type
	if input.Type != "" {
		t, ok := entity.ParseType(input.Type)
		if !ok {
			return nil, ListEntitiesOutput{}, fmt.Errorf("unknown entity type %q", input.Type)
		}
		only = t
	}
	data, err := s.load(ctx)
	if err != nil {
		return nil, ListEntitiesOutput{}, err
	}

	out := ListEntitiesOutput{Entities: []EntitySummaryOutput{}}
	add := func(t entity.Type, id, name string) {
		if only != "" && t != only {
			return
		}
		out.Entities = append(out.Entities, EntitySummaryOutput{ID: id, Name: entity.Label(id, name), Type: string(t)})
	}
	for _, c := range data.Characters {
		add(entity.TypeCharacter, c.ID, c.Name)
	}
	for _, e := range data.Elements {
		add(entity.TypeElement, e.ID, e.Name)
	}
	for _, p := range data.Puzzles {
		add(entity.TypePuzzle, p.ID, p.Name)
	}
	for _, ev := range data.Timeline {
		add(entity.TypeTimeline, ev.ID, ev.Name)
	}
	sort.SliceStable(out.Entities, func(i, j int) bool { return out.Entities[i].ID < out.Entities[j].ID })
	return nil, out, nil
}

func graphOutput(gd *graph.GraphData) GraphOutput {
	out := GraphOutput{
		View:       gd.Metadata.View,
		Layout:     gd.Metadata.Layout,
		Nodes:      make([]NodeOutput, 0, len(gd.Nodes)),
		Edges:      make([]EdgeOutput, 0, len(gd.Edges)),
		Components: gd.Metadata.Metrics.Components,
		Warnings:   gd.Metadata.Metrics.Warnings,
	}
	for _, n := range gd.Nodes {
		out.Nodes = append(out.Nodes, NodeOutput{
			ID:            n.ID,
			Type:          string(n.Type),
			Label:         n.Data.Label,
			X:             n.Position.X,
			Y:             n.Position.Y,
			IsPlaceholder: n.Data.Metadata.IsPlaceholder,
			Distance:      n.Data.Metadata.Distance,
		})
	}
	for _, e := range gd.Edges {
		out.Edges = append(out.Edges, EdgeOutput{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Type:   string(e.Type),
			Weight: e.Data.Weight,
		})
	}
	if gd.Metadata.IntegrityReport != nil {
		score := gd.Metadata.IntegrityReport.Score
		out.IntegrityScore = &score
	}
	if d := gd.DepthMetadata; d != nil {
		out.Depth = &DepthOutput{
			MaxReachableDepth:   d.MaxReachableDepth,
			TotalReachableNodes: d.TotalReachableNodes,
			IsCompleteNetwork:   d.IsCompleteNetwork,
			NodesAtCurrentDepth: d.NodesAtCurrentDepth,
			CurrentDepthLimit:   d.CurrentDepthLimit,
		}
	}
	return out
}
