package graph

import "mysteryweb/internal/entity"

// crossRefs aggregates the puzzle-side view of each element: which puzzles
// require it and which reward it, from both sides of the denormalized data.
type crossRefs struct {
	requiredBy map[string]map[string]struct{}
	rewardedBy map[string]map[string]struct{}
}

func buildCrossRefs(maps *entity.LookupMaps) *crossRefs {
	refs := &crossRefs{
		requiredBy: make(map[string]map[string]struct{}),
		rewardedBy: make(map[string]map[string]struct{}),
	}
	for id, el := range maps.Elements {
		for _, pid := range el.RequiredForPuzzleIDs {
			addRef(refs.requiredBy, id, pid)
		}
		for _, pid := range el.RewardedByPuzzleIDs {
			addRef(refs.rewardedBy, id, pid)
		}
	}
	for pid, p := range maps.Puzzles {
		for _, eid := range p.PuzzleElementIDs {
			addRef(refs.requiredBy, eid, pid)
		}
		for _, eid := range p.RewardIDs {
			addRef(refs.rewardedBy, eid, pid)
		}
	}
	return refs
}

func addRef(index map[string]map[string]struct{}, key, value string) {
	if key == "" || value == "" {
		return
	}
	set, ok := index[key]
	if !ok {
		set = make(map[string]struct{})
		index[key] = set
	}
	set[value] = struct{}{}
}

func (r *crossRefs) isRequirement(elementID string) bool {
	return len(r.requiredBy[elementID]) > 0
}

func (r *crossRefs) rewardCount(elementID string) int {
	return len(r.rewardedBy[elementID])
}

func sharesThread(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, t := range a {
		seen[t] = struct{}{}
	}
	for _, t := range b {
		if _, ok := seen[t]; ok {
			return true
		}
	}
	return false
}
