package validate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/graph"
	"mysteryweb/internal/logger"
	"mysteryweb/internal/traversal"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDanglingReference     = "dangling_reference"
	codeDuplicateID           = "duplicate_id"
	codeSelfReference         = "self_reference"
	codeOrphanedEntity        = "orphaned_entity"
	codePuzzleCycle           = "puzzle_cycle"
	codeDisconnectedComponent = "disconnected_component"
	codeTypeMismatch          = "type_mismatch"
)

type Issue struct {
	Severity Severity    `json:"severity"`
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Entity   string      `json:"entity"`
	Type     entity.Type `json:"type,omitempty"`
}

type Report struct {
	Issues    []Issue                `json:"issues"`
	Integrity *graph.IntegrityReport `json:"integrity"`
}

// Count returns the number of issues with the given severity.
func (r *Report) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// HasErrors reports whether any issue is an error.
func (r *Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

type Options struct {
	Engine *traversal.Engine
	Log    logger.Logger
}

// Run checks data for broken references, duplicate ids, entities no edge
// touches, cycles in the puzzle hierarchy and graphs split into several
// components. Issues are ordered errors first.
func Run(ctx context.Context, data *entity.Dataset, opts Options) (*Report, error) {
	if data == nil {
		return nil, fmt.Errorf("dataset is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := logger.OrNop(opts.Log)
	engine := opts.Engine
	if engine == nil {
		engine = traversal.New(log)
	}

	maps := data.Lookup()
	result := graph.NewResolver(log).ResolveRelationshipsWithIntegrity(data, graph.ResolveOptions{
		Lookup:             maps,
		PuzzleDependencies: true,
	})

	issues := make([]Issue, 0)
	issues = append(issues, duplicateIDs(data)...)
	issues = append(issues, danglingReferences(result.Report)...)
	issues = append(issues, typeMismatches(result.Report)...)

	for _, id := range result.Report.SelfReferences {
		typ, _ := maps.TypeOf(id)
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeSelfReference,
			Message:  "entity references itself",
			Entity:   id,
			Type:     typ,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	issues = append(issues, orphans(data, result.Edges)...)
	issues = append(issues, puzzleCycles(engine, result.Edges)...)
	issues = append(issues, components(engine, result.Edges, maps)...)

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity == SeverityError
		}
		if issues[i].Code != issues[j].Code {
			return issues[i].Code < issues[j].Code
		}
		return issues[i].Entity < issues[j].Entity
	})

	log.Debug("validation finished", "issues", len(issues), "integrity", result.Report.IntegrityScore)
	return &Report{Issues: issues, Integrity: result.Report}, nil
}

func duplicateIDs(data *entity.Dataset) []Issue {
	seen := make(map[string]entity.Type, data.Len())
	var issues []Issue
	note := func(t entity.Type, id string) {
		if first, ok := seen[id]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateID,
				Message:  fmt.Sprintf("id already used by a %s", first),
				Entity:   id,
				Type:     t,
			})
			return
		}
		seen[id] = t
	}
	for _, c := range data.Characters {
		note(entity.TypeCharacter, c.ID)
	}
	for _, e := range data.Elements {
		note(entity.TypeElement, e.ID)
	}
	for _, p := range data.Puzzles {
		note(entity.TypePuzzle, p.ID)
	}
	for _, ev := range data.Timeline {
		note(entity.TypeTimeline, ev.ID)
	}
	return issues
}

func danglingReferences(report *graph.IntegrityReport) []Issue {
	var issues []Issue
	for id, missing := range report.MissingEntities {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeDanglingReference,
			Message:  fmt.Sprintf("missing %s referenced by %s", missing.Type, strings.Join(missing.ReferencedBy, ", ")),
			Entity:   id,
			Type:     missing.Type,
		})
	}
	return issues
}

func typeMismatches(report *graph.IntegrityReport) []Issue {
	var issues []Issue
	for id, m := range report.TypeMismatches {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeTypeMismatch,
			Message:  fmt.Sprintf("%s referenced as a %s by %s", m.Actual, m.Expected, strings.Join(m.ReferencedBy, ", ")),
			Entity:   id,
			Type:     m.Actual,
		})
	}
	return issues
}

func orphans(data *entity.Dataset, edges []graph.Edge) []Issue {
	touched := make(map[string]struct{}, len(edges)*2)
	for _, e := range edges {
		touched[e.Source] = struct{}{}
		touched[e.Target] = struct{}{}
	}
	var issues []Issue
	check := func(t entity.Type, id string) {
		if _, ok := touched[id]; ok {
			return
		}
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeOrphanedEntity,
			Message:  "entity has no relationships",
			Entity:   id,
			Type:     t,
		})
	}
	for _, c := range data.Characters {
		check(entity.TypeCharacter, c.ID)
	}
	for _, e := range data.Elements {
		check(entity.TypeElement, e.ID)
	}
	for _, p := range data.Puzzles {
		check(entity.TypePuzzle, p.ID)
	}
	for _, ev := range data.Timeline {
		check(entity.TypeTimeline, ev.ID)
	}
	return issues
}

func puzzleCycles(engine *traversal.Engine, edges []graph.Edge) []Issue {
	var puzzleEdges []graph.Edge
	for _, e := range edges {
		if e.Type == graph.RelChain || e.Type == graph.RelDependency {
			puzzleEdges = append(puzzleEdges, e)
		}
	}
	if len(puzzleEdges) == 0 {
		return nil
	}

	var issues []Issue
	for _, cycle := range engine.DetectCycles(traversal.Links(puzzleEdges)) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codePuzzleCycle,
			Message:  "puzzle cycle: " + strings.Join(append(cycle, cycle[0]), " -> "),
			Entity:   cycle[0],
			Type:     entity.TypePuzzle,
		})
	}
	return issues
}

func components(engine *traversal.Engine, edges []graph.Edge, maps *entity.LookupMaps) []Issue {
	comps := engine.GetConnectedComponents(traversal.Links(edges))
	if len(comps) < 2 {
		return nil
	}
	largest := 0
	for i, c := range comps {
		if len(c) > len(comps[largest]) {
			largest = i
		}
	}

	var issues []Issue
	for i, c := range comps {
		if i == largest {
			continue
		}
		members := c.Sorted()
		typ, _ := maps.TypeOf(members[0])
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeDisconnectedComponent,
			Message:  fmt.Sprintf("%d entities not connected to the main graph", len(members)),
			Entity:   members[0],
			Type:     typ,
		})
	}
	return issues
}
