package mcp

import (
	"context"
	"errors"
	"testing"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/source"
)

type failingSource struct{}

func (failingSource) Load(ctx context.Context) (*entity.Dataset, error) {
	return nil, errors.New("boom")
}

func (failingSource) Close(ctx context.Context) error { return nil }

func testDataset() *entity.Dataset {
	return &entity.Dataset{
		Characters: []entity.Character{
			{ID: "char-alex", Name: "Alex", OwnedElementIDs: []string{"el-letter"}},
		},
		Elements: []entity.Element{
			{ID: "el-letter", Name: "Letter", RequiredForPuzzleIDs: []string{"pz-safe"}},
			{ID: "el-key", Name: "Key", RewardedByPuzzleIDs: []string{"pz-safe"}, OwnerID: "char-ghost"},
		},
		Puzzles: []entity.Puzzle{
			{ID: "pz-safe", Name: "Safe"},
		},
	}
}

func testServer() *Server {
	return NewServer(&source.Static{Data: testDataset()}, nil, "test", nil)
}

func TestBuildGraph(t *testing.T) {
	server := testServer()

	_, output, err := server.handleBuildGraph(context.Background(), nil, BuildGraphInput{Algorithm: "none", IncludeOrphan: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.View != "default" || output.Layout != "none" {
		t.Fatalf("unexpected metadata: %+v", output)
	}
	var placeholder bool
	for _, n := range output.Nodes {
		if n.ID == "char-ghost" && n.IsPlaceholder {
			placeholder = true
		}
	}
	if !placeholder {
		t.Fatalf("expected placeholder for char-ghost, got %+v", output.Nodes)
	}
	if output.IntegrityScore == nil || *output.IntegrityScore == 100 {
		t.Fatalf("expected reduced integrity score, got %v", output.IntegrityScore)
	}
	if len(output.Edges) != 3 {
		t.Fatalf("expected 3 edges, got %+v", output.Edges)
	}
}

func TestBuildGraph_BadInput(t *testing.T) {
	server := testServer()
	cases := []BuildGraphInput{
		{View: "sideways"},
		{Algorithm: "circle"},
		{ExcludeTypes: []string{"npc"}},
		{View: "connection-web"},
	}
	for _, input := range cases {
		if _, _, err := server.handleBuildGraph(context.Background(), nil, input); err == nil {
			t.Fatalf("expected error for %+v", input)
		}
	}
}

func TestBuildGraph_SourceError(t *testing.T) {
	server := NewServer(failingSource{}, nil, "test", nil)
	if _, _, err := server.handleBuildGraph(context.Background(), nil, BuildGraphInput{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConnectionWeb(t *testing.T) {
	server := testServer()

	_, output, err := server.handleConnectionWeb(context.Background(), nil, ConnectionWebInput{NodeID: "char-alex", MaxDepth: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Depth == nil || output.Depth.CurrentDepthLimit != 1 {
		t.Fatalf("expected depth metadata, got %+v", output.Depth)
	}
	for _, n := range output.Nodes {
		if n.Distance == nil || *n.Distance > 1 {
			t.Fatalf("node %s beyond depth limit", n.ID)
		}
	}

	if _, _, err := server.handleConnectionWeb(context.Background(), nil, ConnectionWebInput{}); err == nil {
		t.Fatalf("expected error for missing node id")
	}
}

func TestFindPath(t *testing.T) {
	server := testServer()

	_, output, err := server.handleFindPath(context.Background(), nil, FindPathInput{From: "char-alex", To: "pz-safe"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Paths) != 1 || len(output.Paths[0]) != 3 {
		t.Fatalf("unexpected paths: %+v", output.Paths)
	}

	_, output, err = server.handleFindPath(context.Background(), nil, FindPathInput{From: "char-alex", To: "nowhere"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Paths) != 0 {
		t.Fatalf("expected no path, got %+v", output.Paths)
	}

	_, output, err = server.handleFindPath(context.Background(), nil, FindPathInput{From: "char-alex", To: "el-key", All: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Paths) != 1 {
		t.Fatalf("expected one path to the key, got %+v", output.Paths)
	}
}

func TestIntegrityReport(t *testing.T) {
	server := testServer()

	_, output, err := server.handleIntegrityReport(context.Background(), nil, IntegrityReportInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.BrokenRelationships != 1 {
		t.Fatalf("expected 1 broken relationship, got %d", output.BrokenRelationships)
	}
	if len(output.Issues) == 0 || output.Issues[0].Code != "dangling_reference" {
		t.Fatalf("unexpected issues: %+v", output.Issues)
	}
}

func TestListEntities(t *testing.T) {
	server := testServer()

	_, output, err := server.handleListEntities(context.Background(), nil, ListEntitiesInput{Type: "element"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Entities) != 2 || output.Entities[0].ID != "el-key" {
		t.Fatalf("unexpected list output: %+v", output)
	}

	if _, _, err := server.handleListEntities(context.Background(), nil, ListEntitiesInput{Type: "npc"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
