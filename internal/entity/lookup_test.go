package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLookupMaps(t *testing.T) {
	t.Run("empty input yields empty maps", func(t *testing.T) {
		maps := BuildLookupMaps(nil, nil, nil, nil)
		require.NotNil(t, maps)
		assert.Empty(t, maps.Characters)
		assert.Empty(t, maps.Elements)
		assert.Empty(t, maps.Puzzles)
		assert.Empty(t, maps.Timeline)
	})

	t.Run("indexes every collection", func(t *testing.T) {
		data := &Dataset{
			Characters: []Character{{ID: "c1", Name: "Alex"}},
			Elements:   []Element{{ID: "e1"}, {ID: "e2", Name: "Diary"}},
			Puzzles:    []Puzzle{{ID: "p1"}},
			Timeline:   []TimelineEvent{{ID: "t1"}},
		}
		maps := data.Lookup()
		assert.Len(t, maps.Elements, 2)
		assert.Equal(t, "Alex", maps.Characters["c1"].Name)

		typ, ok := maps.TypeOf("p1")
		assert.True(t, ok)
		assert.Equal(t, TypePuzzle, typ)

		_, ok = maps.TypeOf("ghost")
		assert.False(t, ok)

		assert.True(t, maps.Has(TypeTimeline, "t1"))
		assert.False(t, maps.Has(TypeCharacter, "t1"))
		assert.Equal(t, "Diary", maps.LabelOf("e2"))
		assert.Equal(t, "e1", maps.LabelOf("e1"))
	})
}

func TestSFPatternsIsEmpty(t *testing.T) {
	var nilPatterns *SFPatterns
	assert.True(t, nilPatterns.IsEmpty())
	assert.True(t, (&SFPatterns{Group: &SFGroup{}}).IsEmpty())
	assert.False(t, (&SFPatterns{RFID: "A12"}).IsEmpty())
	assert.False(t, (&SFPatterns{Group: &SFGroup{Name: "Black Market"}}).IsEmpty())
}

func TestSubset(t *testing.T) {
	data := &Dataset{
		Characters: []Character{{ID: "c1"}, {ID: "c2"}},
		Elements:   []Element{{ID: "e1"}},
	}
	sub := data.Subset(func(_ Type, id string) bool { return id != "c2" })
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, "c1", sub.Characters[0].ID)
}

func TestParseType(t *testing.T) {
	typ, ok := ParseType("evidence")
	assert.True(t, ok)
	assert.Equal(t, TypeElement, typ)
	_, ok = ParseType("weapon")
	assert.False(t, ok)
}
