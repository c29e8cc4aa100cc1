package builder

import (
	"context"
	"fmt"
	"time"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/graph"
	"mysteryweb/internal/layout"
)

// minJourneyEntities is the smallest filtered journey shown before falling
// back to the whole dataset.
const minJourneyEntities = 3

// BuildPuzzleFocusGraph shows requirement and reward flow between elements
// and puzzles. Timeline events are excluded and orphans dropped, except
// puzzles in a parent/child hierarchy.
func (b *Builder) BuildPuzzleFocusGraph(ctx context.Context, data *entity.Dataset, opts Options) (*graph.GraphData, error) {
	opts.View = ViewPuzzleFocus
	opts.FilterRelationships = []graph.RelationshipType{graph.RelRequirement, graph.RelReward}
	opts.ExcludeEntityTypes = appendType(opts.ExcludeEntityTypes, entity.TypeTimeline)
	opts.IncludeOrphans = false
	opts.PreserveHierarchy = true
	return b.BuildGraphData(ctx, data, opts)
}

// BuildContentStatusGraph shows every entity, connected or not.
func (b *Builder) BuildContentStatusGraph(ctx context.Context, data *entity.Dataset, opts Options) (*graph.GraphData, error) {
	opts.View = ViewContentStatus
	opts.IncludeOrphans = true
	return b.BuildGraphData(ctx, data, opts)
}

var journeyRanks = map[entity.Type]int{
	entity.TypeCharacter: 0,
	entity.TypePuzzle:    1,
	entity.TypeElement:   2,
	entity.TypeTimeline:  3,
}

// BuildCharacterJourneyGraph restricts the dataset to one character's
// world when characterID is set, then ranks nodes by type for a
// hierarchical layout. A filtered set smaller than three entities falls
// back to the full dataset.
func (b *Builder) BuildCharacterJourneyGraph(ctx context.Context, data *entity.Dataset, characterID string, opts Options) (*graph.GraphData, error) {
	opts.View = ViewCharacterJourney
	layoutCfg := opts.Layout
	if !layoutCfg.Algorithm.IsHierarchical() {
		layoutCfg.Algorithm = layout.PureDagre
	}
	opts.Layout.Algorithm = layout.None

	subset := data
	var warnings []string
	if characterID != "" && data != nil {
		filtered := journeySubset(data, characterID)
		if filtered.Len() < minJourneyEntities {
			msg := fmt.Sprintf("journey for %s has %d entities; showing full dataset", characterID, filtered.Len())
			b.log.Warn("character journey too small, falling back", "character", characterID, "entities", filtered.Len())
			warnings = append(warnings, msg)
		} else {
			subset = filtered
		}
	}

	var maps *entity.LookupMaps
	if data != nil {
		maps = data.Lookup()
	}
	gd, err := b.build(ctx, subset, maps, opts)
	if err != nil {
		return nil, err
	}
	gd.Metadata.Metrics.Warnings = append(gd.Metadata.Metrics.Warnings, warnings...)
	if len(gd.Nodes) == 0 {
		gd.Metadata.Layout = string(layoutCfg.Algorithm)
		return gd, nil
	}

	for i := range gd.Nodes {
		typ := gd.Nodes[i].Type
		if gd.Nodes[i].Data.Metadata.IsPlaceholder {
			typ = gd.Nodes[i].Data.Metadata.EntityType
		}
		if rank, ok := journeyRanks[typ]; ok {
			gd.Nodes[i].Data.Metadata = gd.Nodes[i].Data.Metadata.WithRank(rank)
		}
	}

	start := time.Now()
	nodes, edges, err := b.layout.Apply(ctx, gd.Nodes, gd.Edges, layoutCfg)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", layoutCfg.Algorithm, err)
	}
	b.metrics.Observe(MetricLayoutTime, time.Since(start))
	gd.Nodes, gd.Edges = nodes, edges
	gd.Metadata.Layout = string(layoutCfg.Algorithm)
	gd.Metadata.Metrics.EdgeCount = len(edges)
	gd.Metadata.Metrics.BoundingBox = graph.Bounds(nodes)
	return gd, nil
}

// journeySubset keeps the character, the elements it owns, puzzles those
// elements feed or come from, elements those puzzles reward, and timeline
// events tied to the character or to any kept element.
func journeySubset(data *entity.Dataset, characterID string) *entity.Dataset {
	maps := data.Lookup()
	char, ok := maps.Characters[characterID]
	if !ok {
		return &entity.Dataset{}
	}

	owned := make(map[string]bool)
	for _, id := range char.OwnedElementIDs {
		if _, ok := maps.Elements[id]; ok {
			owned[id] = true
		}
	}
	for _, e := range data.Elements {
		if e.OwnerID == characterID {
			owned[e.ID] = true
		}
	}

	puzzles := make(map[string]bool)
	for _, p := range data.Puzzles {
		for _, id := range p.PuzzleElementIDs {
			if owned[id] {
				puzzles[p.ID] = true
			}
		}
		for _, id := range p.RewardIDs {
			if owned[id] {
				puzzles[p.ID] = true
			}
		}
	}
	for id := range owned {
		e := maps.Elements[id]
		for _, pid := range e.RequiredForPuzzleIDs {
			puzzles[pid] = true
		}
		for _, pid := range e.RewardedByPuzzleIDs {
			puzzles[pid] = true
		}
	}

	rewarded := make(map[string]bool)
	for _, p := range data.Puzzles {
		if !puzzles[p.ID] {
			continue
		}
		for _, id := range p.RewardIDs {
			rewarded[id] = true
		}
	}
	for _, e := range data.Elements {
		for _, pid := range e.RewardedByPuzzleIDs {
			if puzzles[pid] {
				rewarded[e.ID] = true
			}
		}
	}

	events := make(map[string]bool)
	for _, id := range char.EventIDs {
		events[id] = true
	}
	for _, ev := range data.Timeline {
		for _, cid := range ev.CharactersInvolvedIDs {
			if cid == characterID {
				events[ev.ID] = true
			}
		}
	}
	for _, e := range data.Elements {
		if (owned[e.ID] || rewarded[e.ID]) && e.TimelineEventID != "" {
			events[e.TimelineEventID] = true
		}
	}

	return data.Subset(func(t entity.Type, id string) bool {
		switch t {
		case entity.TypeCharacter:
			return id == characterID
		case entity.TypeElement:
			return owned[id] || rewarded[id]
		case entity.TypePuzzle:
			return puzzles[id]
		case entity.TypeTimeline:
			return events[id]
		}
		return false
	})
}

func appendType(types []entity.Type, t entity.Type) []entity.Type {
	for _, existing := range types {
		if existing == t {
			return types
		}
	}
	return append(append([]entity.Type(nil), types...), t)
}
