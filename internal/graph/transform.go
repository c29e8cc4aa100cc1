package graph

import (
	"strings"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/logger"
)

// Transformer turns entities into typed graph nodes. It holds no state
// between calls.
type Transformer struct {
	log logger.Logger
}

func NewTransformer(log logger.Logger) *Transformer {
	return &Transformer{log: logger.OrNop(log)}
}

func (t *Transformer) TransformCharacters(characters []entity.Character) []Node {
	nodes := make([]Node, 0, len(characters))
	for _, c := range characters {
		nodes = append(nodes, Node{
			ID:   c.ID,
			Type: entity.TypeCharacter,
			Data: NodeData{
				Label:  entity.Label(c.ID, c.Name),
				Entity: c,
				Metadata: NodeMetadata{
					EntityType: entity.TypeCharacter,
					Role:       characterRole(c.Tier),
					Category:   strings.ToLower(c.Type),
				},
			},
		})
	}
	return nodes
}

func (t *Transformer) TransformElements(elements []entity.Element) []Node {
	nodes := make([]Node, 0, len(elements))
	for _, e := range elements {
		nodes = append(nodes, Node{
			ID:   e.ID,
			Type: entity.TypeElement,
			Data: NodeData{
				Label:  entity.Label(e.ID, e.Name),
				Entity: e,
				Metadata: NodeMetadata{
					EntityType:       entity.TypeElement,
					Category:         elementCategory(e.BasicType),
					Status:           e.Status,
					OwnerID:          e.OwnerID,
					ContainerID:      e.ContainerID,
					TimelineEventID:  e.TimelineEventID,
					IsRequirement:    len(e.RequiredForPuzzleIDs) > 0,
					IsReward:         len(e.RewardedByPuzzleIDs) > 0,
					RewardedByCount:  len(e.RewardedByPuzzleIDs),
					HasSFPatterns:    !e.SFPatterns.IsEmpty(),
					NarrativeThreads: e.NarrativeThreads,
				},
			},
		})
	}
	return nodes
}

func (t *Transformer) TransformPuzzles(puzzles []entity.Puzzle) []Node {
	nodes := make([]Node, 0, len(puzzles))
	for _, p := range puzzles {
		nodes = append(nodes, Node{
			ID:   p.ID,
			Type: entity.TypePuzzle,
			Data: NodeData{
				Label:  entity.Label(p.ID, p.Name),
				Entity: p,
				Metadata: NodeMetadata{
					EntityType:       entity.TypePuzzle,
					Category:         strings.ToLower(p.Timing),
					Complexity:       puzzleComplexity(p),
					IsParent:         len(p.SubPuzzleIDs) > 0,
					IsChild:          p.ParentItemID != "",
					ParentID:         p.ParentItemID,
					NarrativeThreads: p.NarrativeThreads,
				},
			},
		})
	}
	return nodes
}

func (t *Transformer) TransformTimeline(events []entity.TimelineEvent) []Node {
	nodes := make([]Node, 0, len(events))
	for _, ev := range events {
		nodes = append(nodes, Node{
			ID:   ev.ID,
			Type: entity.TypeTimeline,
			Data: NodeData{
				Label:  entity.Label(ev.ID, ev.Name),
				Entity: ev,
				Metadata: NodeMetadata{
					EntityType: entity.TypeTimeline,
					Category:   "event",
				},
			},
		})
	}
	return nodes
}

// TransformEntities converts the whole dataset, skipping excluded types, and
// enriches element nodes with cross references. Order: characters, elements,
// puzzles, timeline.
func (t *Transformer) TransformEntities(data *entity.Dataset, exclude ...entity.Type) []Node {
	if data == nil {
		return nil
	}
	return t.TransformWithLookup(data, data.Lookup(), exclude...)
}

// TransformWithLookup is TransformEntities with enrichment drawn from maps,
// which may index a larger dataset than data.
func (t *Transformer) TransformWithLookup(data *entity.Dataset, maps *entity.LookupMaps, exclude ...entity.Type) []Node {
	skip := make(map[entity.Type]bool, len(exclude))
	for _, typ := range exclude {
		skip[typ] = true
	}

	var nodes []Node
	if !skip[entity.TypeCharacter] {
		nodes = append(nodes, t.TransformCharacters(data.Characters)...)
	}
	if !skip[entity.TypeElement] {
		elements := t.TransformElements(data.Elements)
		enrichElements(elements, maps)
		nodes = append(nodes, elements...)
	}
	if !skip[entity.TypePuzzle] {
		puzzles := t.TransformPuzzles(data.Puzzles)
		enrichPuzzles(puzzles, maps)
		nodes = append(nodes, puzzles...)
	}
	if !skip[entity.TypeTimeline] {
		nodes = append(nodes, t.TransformTimeline(data.Timeline)...)
	}

	t.log.Debug("transformed entities",
		"characters", len(data.Characters),
		"elements", len(data.Elements),
		"puzzles", len(data.Puzzles),
		"timeline", len(data.Timeline),
		"nodes", len(nodes))
	return nodes
}

func enrichElements(nodes []Node, maps *entity.LookupMaps) {
	refs := buildCrossRefs(maps)
	for i := range nodes {
		meta := &nodes[i].Data.Metadata
		id := nodes[i].ID
		meta.IsRequirement = refs.isRequirement(id)
		meta.RewardedByCount = refs.rewardCount(id)
		meta.IsReward = meta.RewardedByCount > 0
		meta.IsDualRole = meta.IsRequirement && meta.IsReward
		if meta.TimelineEventID != "" {
			if ev, ok := maps.Timeline[meta.TimelineEventID]; ok {
				meta.TimelineEventName = entity.Label(ev.ID, ev.Name)
			}
		}
	}
}

// enrichPuzzles completes hierarchy flags declared from only one side.
func enrichPuzzles(nodes []Node, maps *entity.LookupMaps) {
	children := make(map[string]bool)
	parentOf := make(map[string]string)
	for _, p := range maps.Puzzles {
		if p.ParentItemID != "" {
			children[p.ParentItemID] = true
		}
		for _, sub := range p.SubPuzzleIDs {
			if sub != "" {
				parentOf[sub] = p.ID
			}
		}
	}
	for i := range nodes {
		meta := &nodes[i].Data.Metadata
		if children[nodes[i].ID] {
			meta.IsParent = true
		}
		if meta.ParentID == "" {
			if parent, ok := parentOf[nodes[i].ID]; ok {
				meta.ParentID = parent
				meta.IsChild = true
			}
		}
	}
}

func characterRole(tier string) string {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "core":
		return "core"
	case "secondary":
		return "secondary"
	case "tertiary":
		return "tertiary"
	case "":
		return "unassigned"
	}
	return strings.ToLower(tier)
}

func elementCategory(basicType string) string {
	lower := strings.ToLower(basicType)
	switch {
	case lower == "":
		return "unknown"
	case strings.Contains(lower, "memory"):
		return "memory"
	case strings.Contains(lower, "document"):
		return "document"
	case strings.Contains(lower, "container"):
		return "container"
	case strings.Contains(lower, "prop"), strings.Contains(lower, "set dressing"):
		return "prop"
	}
	return lower
}

func puzzleComplexity(p entity.Puzzle) string {
	score := len(p.PuzzleElementIDs) + len(p.RewardIDs) + 2*len(p.SubPuzzleIDs)
	switch {
	case score >= 8:
		return "high"
	case score >= 4:
		return "medium"
	}
	return "low"
}
