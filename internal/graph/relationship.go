package graph

import (
	"sort"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/logger"
)

// Resolver turns entity cross references into typed, weighted edges.
type Resolver struct {
	log logger.Logger
}

func NewResolver(log logger.Logger) *Resolver {
	return &Resolver{log: logger.OrNop(log)}
}

type ResolveOptions struct {
	// Lookup reuses prebuilt maps for the dataset.
	Lookup *entity.LookupMaps
	// Nodes supplies metadata for smart weighting. Derived when nil.
	Nodes NodeIndex
	// PuzzleDependencies adds puzzle -> puzzle edges where one puzzle's
	// reward is another's requirement.
	PuzzleDependencies bool
}

type edgeSet struct {
	edges    []Edge
	seen     map[string]struct{}
	nodes    NodeIndex
	log      logger.Logger
	selfRefs []string
}

func (s *edgeSet) add(rel RelationshipType, source, target string) {
	if source == target {
		s.log.Warn("skipping self-referential relationship", "type", rel, "id", source)
		s.selfRefs = append(s.selfRefs, source)
		return
	}
	id := EdgeID(rel, source, target)
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	weight := CalculateSmartWeight(source, target, rel, s.nodes[source], s.nodes[target], 1)
	s.edges = append(s.edges, Edge{
		ID:     id,
		Source: source,
		Target: target,
		Type:   rel,
		Data: EdgeData{
			RelationshipType: rel,
			Weight:           weight,
			Label:            rel.Label(),
			Strength:         linkStrength(weight),
		},
	})
}

// ResolveAllRelationships creates ownership, requirement, reward, timeline,
// container and puzzle-chain edges. Edges with an endpoint missing from the
// lookup maps are logged and skipped.
func (r *Resolver) ResolveAllRelationships(data *entity.Dataset, opts ResolveOptions) []Edge {
	set := r.resolve(data, opts)
	return set.edges
}

func (r *Resolver) resolve(data *entity.Dataset, opts ResolveOptions) *edgeSet {
	if data == nil {
		data = &entity.Dataset{}
	}
	maps := opts.Lookup
	if maps == nil {
		maps = data.Lookup()
	}
	nodes := opts.Nodes
	if nodes == nil {
		nodes = IndexNodes(NewTransformer(nil).TransformWithLookup(data, maps))
	}
	set := &edgeSet{seen: make(map[string]struct{}), nodes: nodes, log: r.log}

	link := func(rel RelationshipType, sourceType entity.Type, source string, targetType entity.Type, target string) {
		if source == "" || target == "" {
			return
		}
		if !maps.Has(sourceType, source) {
			r.log.Debug("skipping relationship with missing source", "type", rel, "source", source, "target", target)
			return
		}
		if !maps.Has(targetType, target) {
			r.log.Debug("skipping relationship with missing target", "type", rel, "source", source, "target", target)
			return
		}
		set.add(rel, source, target)
	}

	// ownership: character -> element
	for _, c := range data.Characters {
		for _, eid := range c.OwnedElementIDs {
			link(RelOwnership, entity.TypeCharacter, c.ID, entity.TypeElement, eid)
		}
	}
	for _, e := range data.Elements {
		link(RelOwnership, entity.TypeCharacter, e.OwnerID, entity.TypeElement, e.ID)
	}

	// requirement: element -> puzzle
	for _, p := range data.Puzzles {
		for _, eid := range p.PuzzleElementIDs {
			link(RelRequirement, entity.TypeElement, eid, entity.TypePuzzle, p.ID)
		}
	}
	for _, e := range data.Elements {
		for _, pid := range e.RequiredForPuzzleIDs {
			link(RelRequirement, entity.TypeElement, e.ID, entity.TypePuzzle, pid)
		}
	}

	// reward: puzzle -> element
	for _, p := range data.Puzzles {
		for _, eid := range p.RewardIDs {
			link(RelReward, entity.TypePuzzle, p.ID, entity.TypeElement, eid)
		}
	}
	for _, e := range data.Elements {
		for _, pid := range e.RewardedByPuzzleIDs {
			link(RelReward, entity.TypePuzzle, pid, entity.TypeElement, e.ID)
		}
	}

	// timeline: element -> event
	for _, e := range data.Elements {
		link(RelTimeline, entity.TypeElement, e.ID, entity.TypeTimeline, e.TimelineEventID)
	}

	// container: container -> contained
	for _, e := range data.Elements {
		for _, cid := range e.ContentIDs {
			link(RelContainer, entity.TypeElement, e.ID, entity.TypeElement, cid)
		}
		link(RelContainer, entity.TypeElement, e.ContainerID, entity.TypeElement, e.ID)
	}

	// chain: parent puzzle -> sub-puzzle
	for _, p := range data.Puzzles {
		for _, sub := range p.SubPuzzleIDs {
			link(RelChain, entity.TypePuzzle, p.ID, entity.TypePuzzle, sub)
		}
		link(RelChain, entity.TypePuzzle, p.ParentItemID, entity.TypePuzzle, p.ID)
	}

	if opts.PuzzleDependencies {
		refs := buildCrossRefs(maps)
		for _, p := range data.Puzzles {
			for _, eid := range sortedKeysWhere(refs.rewardedBy, p.ID) {
				for _, next := range sortedSet(refs.requiredBy[eid]) {
					if next == p.ID {
						continue
					}
					link(RelDependency, entity.TypePuzzle, p.ID, entity.TypePuzzle, next)
				}
			}
		}
	}

	r.log.Debug("resolved relationships", "edges", len(set.edges), "self_references", len(set.selfRefs))
	return set
}

// sortedKeysWhere returns the keys of index whose set contains value.
func sortedKeysWhere(index map[string]map[string]struct{}, value string) []string {
	var keys []string
	for key, set := range index {
		if _, ok := set[value]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
