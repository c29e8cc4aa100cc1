package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"mysteryweb/internal/entity"
)

// MissingEntity records one dangling id and who points at it.
type MissingEntity struct {
	Type         entity.Type `json:"type"`
	ReferencedBy []string    `json:"referencedBy"`
}

// TypeMismatch records an id that exists, but as a different entity type
// than the referring field expects.
type TypeMismatch struct {
	Expected     entity.Type `json:"expected"`
	Actual       entity.Type `json:"actual"`
	ReferencedBy []string    `json:"referencedBy"`
}

// IntegrityReport summarizes references to ids absent from the dataset.
type IntegrityReport struct {
	MissingEntities     map[string]*MissingEntity `json:"missingEntities"`
	TypeMismatches      map[string]*TypeMismatch  `json:"typeMismatches,omitempty"`
	BrokenRelationships int                       `json:"brokenRelationships"`
	TotalRelationships  int                       `json:"totalRelationships"`
	IntegrityScore      int                       `json:"integrityScore"`
	SelfReferences      []string                  `json:"selfReferences,omitempty"`
}

// Summary groups missing ids by the type they were expected to have.
func (r *IntegrityReport) Summary() *IntegritySummary {
	if r == nil {
		return nil
	}
	byType := make(map[entity.Type][]string)
	for id, missing := range r.MissingEntities {
		byType[missing.Type] = append(byType[missing.Type], id)
	}
	for typ := range byType {
		sort.Strings(byType[typ])
	}
	return &IntegritySummary{
		Score:               r.IntegrityScore,
		BrokenRelationships: r.BrokenRelationships,
		TotalRelationships:  r.TotalRelationships,
		MissingByType:       byType,
	}
}

// IntegrityScore is round((total-broken)/total*100), or 100 with nothing to check.
func IntegrityScore(total, broken int) int {
	if total <= 0 {
		return 100
	}
	if broken > total {
		broken = total
	}
	if broken < 0 {
		broken = 0
	}
	return int(math.Round(float64(total-broken) / float64(total) * 100))
}

// IntegrityResult is the output of integrity-mode resolution.
type IntegrityResult struct {
	Edges            []Edge
	PlaceholderNodes []Node
	Report           *IntegrityReport
}

type integrityScanner struct {
	maps       *entity.LookupMaps
	missing    map[string]*MissingEntity
	mismatched map[string]*TypeMismatch
	order      []string
	total      int
	broken     int
}

func (s *integrityScanner) check(refType entity.Type, id string, referrerType entity.Type, referrerID, referrerName string) {
	if id == "" {
		return
	}
	s.total++
	if s.maps.Has(refType, id) {
		return
	}
	s.broken++
	label := fmt.Sprintf("%s %s", referrerType, entity.Label(referrerID, referrerName))

	// An id owned by another type is broken but gets no placeholder, which
	// would duplicate the real node's id.
	if actual, ok := s.maps.TypeOf(id); ok {
		m, seen := s.mismatched[id]
		if !seen {
			m = &TypeMismatch{Expected: refType, Actual: actual}
			s.mismatched[id] = m
		}
		m.ReferencedBy = appendUnique(m.ReferencedBy, label)
		return
	}

	entry, ok := s.missing[id]
	if !ok {
		entry = &MissingEntity{Type: refType}
		s.missing[id] = entry
		s.order = append(s.order, id)
	}
	entry.ReferencedBy = appendUnique(entry.ReferencedBy, label)
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// ResolveRelationshipsWithIntegrity resolves edges like
// ResolveAllRelationships and also reports every dangling reference,
// producing one placeholder node per missing id.
func (r *Resolver) ResolveRelationshipsWithIntegrity(data *entity.Dataset, opts ResolveOptions) *IntegrityResult {
	if data == nil {
		data = &entity.Dataset{}
	}
	if opts.Lookup == nil {
		opts.Lookup = data.Lookup()
	}
	set := r.resolve(data, opts)

	s := &integrityScanner{
		maps:       opts.Lookup,
		missing:    make(map[string]*MissingEntity),
		mismatched: make(map[string]*TypeMismatch),
	}
	for _, c := range data.Characters {
		for _, eid := range c.OwnedElementIDs {
			s.check(entity.TypeElement, eid, entity.TypeCharacter, c.ID, c.Name)
		}
	}
	for _, e := range data.Elements {
		s.check(entity.TypeCharacter, e.OwnerID, entity.TypeElement, e.ID, e.Name)
		s.check(entity.TypeTimeline, e.TimelineEventID, entity.TypeElement, e.ID, e.Name)
		s.check(entity.TypeElement, e.ContainerID, entity.TypeElement, e.ID, e.Name)
		for _, cid := range e.ContentIDs {
			s.check(entity.TypeElement, cid, entity.TypeElement, e.ID, e.Name)
		}
		for _, pid := range e.RequiredForPuzzleIDs {
			s.check(entity.TypePuzzle, pid, entity.TypeElement, e.ID, e.Name)
		}
		for _, pid := range e.RewardedByPuzzleIDs {
			s.check(entity.TypePuzzle, pid, entity.TypeElement, e.ID, e.Name)
		}
	}
	for _, p := range data.Puzzles {
		for _, eid := range p.PuzzleElementIDs {
			s.check(entity.TypeElement, eid, entity.TypePuzzle, p.ID, p.Name)
		}
		for _, eid := range p.RewardIDs {
			s.check(entity.TypeElement, eid, entity.TypePuzzle, p.ID, p.Name)
		}
		for _, sub := range p.SubPuzzleIDs {
			s.check(entity.TypePuzzle, sub, entity.TypePuzzle, p.ID, p.Name)
		}
		s.check(entity.TypePuzzle, p.ParentItemID, entity.TypePuzzle, p.ID, p.Name)
	}
	for _, ev := range data.Timeline {
		for _, cid := range ev.CharactersInvolvedIDs {
			s.check(entity.TypeCharacter, cid, entity.TypeTimeline, ev.ID, ev.Name)
		}
	}

	report := &IntegrityReport{
		MissingEntities:     s.missing,
		TypeMismatches:      s.mismatched,
		BrokenRelationships: s.broken,
		TotalRelationships:  s.total,
		IntegrityScore:      IntegrityScore(s.total, s.broken),
		SelfReferences:      set.selfRefs,
	}

	placeholders := make([]Node, 0, len(s.order))
	for _, id := range s.order {
		placeholders = append(placeholders, placeholderNode(id, s.missing[id]))
	}

	if report.BrokenRelationships > 0 {
		r.log.Warn("dataset has dangling references",
			"missing", len(s.missing),
			"mismatched", len(s.mismatched),
			"broken", report.BrokenRelationships,
			"total", report.TotalRelationships,
			"score", report.IntegrityScore)
	}

	return &IntegrityResult{Edges: set.edges, PlaceholderNodes: placeholders, Report: report}
}

func placeholderNode(id string, missing *MissingEntity) Node {
	refs := append([]string(nil), missing.ReferencedBy...)
	return Node{
		ID:   id,
		Type: entity.TypePlaceholder,
		Data: NodeData{
			Label: fmt.Sprintf("Missing %s: %s", missing.Type, id),
			Metadata: NodeMetadata{
				EntityType:    missing.Type,
				IsPlaceholder: true,
				MissingReason: fmt.Sprintf("referenced by %s but not found in %s data", strings.Join(refs, ", "), missing.Type),
				ReferencedBy:  refs,
			},
			Style: &NodeStyle{
				BorderColor: "#ef4444",
				BorderStyle: "dashed",
				Background:  "#fef2f2",
				Opacity:     0.8,
			},
		},
	}
}
