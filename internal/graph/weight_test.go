package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mysteryweb/internal/entity"
)

func elementNode(id string, meta NodeMetadata) *Node {
	meta.EntityType = entity.TypeElement
	return &Node{ID: id, Type: entity.TypeElement, Data: NodeData{Metadata: meta}}
}

func puzzleNode(id string, meta NodeMetadata) *Node {
	meta.EntityType = entity.TypePuzzle
	return &Node{ID: id, Type: entity.TypePuzzle, Data: NodeData{Metadata: meta}}
}

func TestCalculateSmartWeight(t *testing.T) {
	tests := []struct {
		name   string
		source *Node
		target *Node
		rel    RelationshipType
		base   float64
		want   float64
	}{
		{"dual role requirement", elementNode("e1", NodeMetadata{IsDualRole: true}), puzzleNode("p1", NodeMetadata{}), RelRequirement, 1, 3},
		{"sf pattern requirement", elementNode("e1", NodeMetadata{HasSFPatterns: true}), puzzleNode("p1", NodeMetadata{}), RelRequirement, 1, 1.5},
		{"dual role wins over sf", elementNode("e1", NodeMetadata{IsDualRole: true, HasSFPatterns: true}), puzzleNode("p1", NodeMetadata{}), RelRequirement, 1, 3},
		{"multi reward", puzzleNode("p1", NodeMetadata{}), elementNode("e1", NodeMetadata{RewardedByCount: 2}), RelReward, 1, 2},
		{"single reward", puzzleNode("p1", NodeMetadata{}), elementNode("e1", NodeMetadata{RewardedByCount: 1}), RelReward, 1, 1},
		{"parent child", puzzleNode("p1", NodeMetadata{}), puzzleNode("p2", NodeMetadata{ParentID: "p1"}), RelChain, 1, 5},
		{"shared thread", puzzleNode("p1", NodeMetadata{NarrativeThreads: []string{"a", "b"}}), puzzleNode("p2", NodeMetadata{NarrativeThreads: []string{"b"}}), RelDependency, 1, 2},
		{"ownership", nil, nil, RelOwnership, 2, 3},
		{"timeline", nil, nil, RelTimeline, 1, 0.7},
		{"non-positive base", nil, nil, RelContainer, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := "s", "t"
			if tt.source != nil {
				src = tt.source.ID
			}
			if tt.target != nil {
				dst = tt.target.ID
			}
			got := CalculateSmartWeight(src, dst, tt.rel, tt.source, tt.target, tt.base)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCalculateSmartWeightIsPure(t *testing.T) {
	source := elementNode("e1", NodeMetadata{IsDualRole: true})
	target := puzzleNode("p1", NodeMetadata{})
	first := CalculateSmartWeight("e1", "p1", RelRequirement, source, target, 1.25)
	second := CalculateSmartWeight("e1", "p1", RelRequirement, source, target, 1.25)
	assert.Equal(t, first, second)
	assert.False(t, source.Data.Metadata.IsRequirement)
}

func TestLinkStrength(t *testing.T) {
	assert.Equal(t, 0.1, linkStrength(0.2))
	assert.Equal(t, 1.0, linkStrength(15))
	assert.InDelta(t, 0.3, linkStrength(1.5), 1e-9)
}
