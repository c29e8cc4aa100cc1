package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysteryweb/internal/entity"
)

func TestIntegrityScore(t *testing.T) {
	assert.Equal(t, 100, IntegrityScore(0, 0))
	assert.Equal(t, 100, IntegrityScore(4, 0))
	assert.Equal(t, 0, IntegrityScore(4, 4))
	assert.Equal(t, 67, IntegrityScore(3, 1))
	for total := 0; total < 20; total++ {
		for broken := 0; broken <= total; broken++ {
			score := IntegrityScore(total, broken)
			require.GreaterOrEqual(t, score, 0)
			require.LessOrEqual(t, score, 100)
		}
	}
}

func TestResolveWithIntegrityMissingOwner(t *testing.T) {
	data := &entity.Dataset{
		Elements: []entity.Element{{ID: "e1", Name: "Ring", OwnerID: "ghost"}},
	}
	result := NewResolver(nil).ResolveRelationshipsWithIntegrity(data, ResolveOptions{})

	for _, e := range result.Edges {
		assert.NotEqual(t, RelOwnership, e.Type)
	}
	missing, ok := result.Report.MissingEntities["ghost"]
	require.True(t, ok)
	assert.Equal(t, entity.TypeCharacter, missing.Type)
	assert.Equal(t, []string{"element Ring"}, missing.ReferencedBy)

	require.Len(t, result.PlaceholderNodes, 1)
	ph := result.PlaceholderNodes[0]
	assert.Equal(t, "ghost", ph.ID)
	assert.Equal(t, entity.TypePlaceholder, ph.Type)
	assert.True(t, ph.Data.Metadata.IsPlaceholder)
	assert.Equal(t, "Missing character: ghost", ph.Data.Label)
	require.NotNil(t, ph.Data.Style)
	assert.Equal(t, "dashed", ph.Data.Style.BorderStyle)

	assert.Equal(t, 1, result.Report.TotalRelationships)
	assert.Equal(t, 1, result.Report.BrokenRelationships)
	assert.Equal(t, 0, result.Report.IntegrityScore)
}

func TestResolveWithIntegrityTypeMismatch(t *testing.T) {
	data := &entity.Dataset{
		Elements: []entity.Element{{ID: "e1", Name: "Ring", OwnerID: "p1", RequiredForPuzzleIDs: []string{"p1"}}},
		Puzzles:  []entity.Puzzle{{ID: "p1", Name: "Safe"}},
	}
	result := NewResolver(nil).ResolveRelationshipsWithIntegrity(data, ResolveOptions{})

	assert.Empty(t, result.PlaceholderNodes)
	assert.Empty(t, result.Report.MissingEntities)
	mismatch, ok := result.Report.TypeMismatches["p1"]
	require.True(t, ok)
	assert.Equal(t, entity.TypeCharacter, mismatch.Expected)
	assert.Equal(t, entity.TypePuzzle, mismatch.Actual)
	assert.Equal(t, []string{"element Ring"}, mismatch.ReferencedBy)
	assert.Equal(t, 1, result.Report.BrokenRelationships)
	assert.Equal(t, 2, result.Report.TotalRelationships)
}

func TestResolveWithIntegrityCleanDataset(t *testing.T) {
	result := NewResolver(nil).ResolveRelationshipsWithIntegrity(sampleDataset(), ResolveOptions{})
	assert.Empty(t, result.PlaceholderNodes)
	assert.Empty(t, result.Report.MissingEntities)
	assert.Equal(t, 100, result.Report.IntegrityScore)
	assert.Positive(t, result.Report.TotalRelationships)
	assert.NotEmpty(t, result.Edges)
}

func TestResolveWithIntegrityEmpty(t *testing.T) {
	result := NewResolver(nil).ResolveRelationshipsWithIntegrity(nil, ResolveOptions{})
	assert.Empty(t, result.Edges)
	assert.Equal(t, 100, result.Report.IntegrityScore)
}

func TestIntegrityReportSummary(t *testing.T) {
	data := &entity.Dataset{
		Puzzles: []entity.Puzzle{{ID: "p1", PuzzleElementIDs: []string{"e9", "e3"}, ParentItemID: "p0"}},
	}
	summary := NewResolver(nil).ResolveRelationshipsWithIntegrity(data, ResolveOptions{}).Report.Summary()
	assert.Equal(t, []string{"e3", "e9"}, summary.MissingByType[entity.TypeElement])
	assert.Equal(t, []string{"p0"}, summary.MissingByType[entity.TypePuzzle])
	assert.Equal(t, 3, summary.BrokenRelationships)
}
