package graph

import "mysteryweb/internal/entity"

const (
	dualRoleMultiplier        = 3.0
	sfPatternMultiplier       = 1.5
	multiRewardMultiplier     = 2.0
	puzzleHierarchyMultiplier = 5.0
	sharedThreadMultiplier    = 2.0
	ownershipMultiplier       = 1.5
	timelineMultiplier        = 0.7
)

// CalculateSmartWeight derives an edge's layout attraction from the
// metadata of its endpoints. A baseWeight <= 0 is treated as 1. The result
// depends only on the arguments.
func CalculateSmartWeight(source, target string, rel RelationshipType, sourceNode, targetNode *Node, baseWeight float64) float64 {
	weight := baseWeight
	if weight <= 0 {
		weight = 1
	}

	if sourceNode != nil && targetNode != nil {
		st, tt := nodeKind(sourceNode), nodeKind(targetNode)
		switch {
		case st == entity.TypeElement && tt == entity.TypePuzzle:
			meta := sourceNode.Data.Metadata
			if meta.IsDualRole {
				weight *= dualRoleMultiplier
			} else if meta.HasSFPatterns {
				weight *= sfPatternMultiplier
			}
		case st == entity.TypePuzzle && tt == entity.TypeElement:
			meta := targetNode.Data.Metadata
			if meta.IsDualRole {
				weight *= dualRoleMultiplier
			} else if meta.RewardedByCount > 1 {
				weight *= multiRewardMultiplier
			}
		case st == entity.TypePuzzle && tt == entity.TypePuzzle:
			sm, tm := sourceNode.Data.Metadata, targetNode.Data.Metadata
			if sm.ParentID == target || tm.ParentID == source {
				weight *= puzzleHierarchyMultiplier
			} else if sharesThread(sm.NarrativeThreads, tm.NarrativeThreads) {
				weight *= sharedThreadMultiplier
			}
		}
	}

	switch rel {
	case RelOwnership:
		weight *= ownershipMultiplier
	case RelTimeline:
		weight *= timelineMultiplier
	}
	return weight
}

// nodeKind is the node's entity type; placeholders report the type they stand in for.
func nodeKind(n *Node) entity.Type {
	if n.Type == entity.TypePlaceholder {
		return n.Data.Metadata.EntityType
	}
	return n.Type
}

// linkStrength maps a weight into the (0.1, 1] range force layouts expect.
func linkStrength(weight float64) float64 {
	s := weight / 5
	if s < 0.1 {
		return 0.1
	}
	if s > 1 {
		return 1
	}
	return s
}
