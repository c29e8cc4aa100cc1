package graph

import (
	"testing"

	"mysteryweb/internal/entity"
)

func TestTransformEntitiesOrderAndExclusion(t *testing.T) {
	nodes := NewTransformer(nil).TransformEntities(sampleDataset())
	want := []string{"c1", "e1", "e2", "p1", "p2", "t1"}
	if len(nodes) != len(want) {
		t.Fatalf("expected %d nodes, got %d", len(want), len(nodes))
	}
	for i, id := range want {
		if nodes[i].ID != id {
			t.Fatalf("expected node %d to be %s, got %s", i, id, nodes[i].ID)
		}
	}

	nodes = NewTransformer(nil).TransformEntities(sampleDataset(), entity.TypeTimeline, entity.TypeCharacter)
	for _, n := range nodes {
		if n.Type == entity.TypeTimeline || n.Type == entity.TypeCharacter {
			t.Fatalf("expected %s to be excluded", n.Type)
		}
	}
}

func TestTransformEnrichesElements(t *testing.T) {
	index := IndexNodes(NewTransformer(nil).TransformEntities(sampleDataset()))

	e2 := index["e2"].Data.Metadata
	if !e2.IsRequirement || !e2.IsReward || !e2.IsDualRole {
		t.Fatalf("expected e2 to be dual role, got %+v", e2)
	}
	if e2.RewardedByCount != 1 {
		t.Fatalf("expected rewardedByCount 1, got %d", e2.RewardedByCount)
	}
	if e2.TimelineEventName != "The argument" {
		t.Fatalf("expected timeline event name, got %q", e2.TimelineEventName)
	}

	e1 := index["e1"].Data.Metadata
	if !e1.IsRequirement || e1.IsReward {
		t.Fatalf("expected e1 requirement only, got %+v", e1)
	}
}

func TestTransformPuzzleHierarchy(t *testing.T) {
	data := &entity.Dataset{
		Puzzles: []entity.Puzzle{
			{ID: "p1"},
			{ID: "p2", ParentItemID: "p1"},
			{ID: "p3", SubPuzzleIDs: []string{"p4"}},
			{ID: "p4"},
		},
	}
	index := IndexNodes(NewTransformer(nil).TransformEntities(data))
	if !index["p1"].Data.Metadata.IsParent {
		t.Fatalf("expected p1 to be marked parent from child side")
	}
	if got := index["p4"].Data.Metadata.ParentID; got != "p3" {
		t.Fatalf("expected p4 parent p3, got %q", got)
	}
	if !index["p4"].Data.Metadata.IsChild {
		t.Fatalf("expected p4 to be a child")
	}
}

func TestPuzzleComplexity(t *testing.T) {
	tests := []struct {
		puzzle entity.Puzzle
		want   string
	}{
		{entity.Puzzle{}, "low"},
		{entity.Puzzle{PuzzleElementIDs: []string{"a", "b"}, RewardIDs: []string{"c", "d"}}, "medium"},
		{entity.Puzzle{SubPuzzleIDs: []string{"a", "b", "c", "d"}}, "high"},
	}
	for _, tt := range tests {
		if got := puzzleComplexity(tt.puzzle); got != tt.want {
			t.Fatalf("expected %s, got %s", tt.want, got)
		}
	}
}
