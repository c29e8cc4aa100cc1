package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysteryweb/internal/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"": KindFile, "file": KindFile, "Markdown": KindMarkdown, " postgres ": KindPostgres} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("neo4j")
	assert.Error(t, err)
}

func TestFile_LoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	writeFile(t, path, `
characters:
  - id: char-alex
    name: Alex
    ownedElementIds: [el-letter]
elements:
  - id: el-letter
    name: Letter
    requiredForPuzzleIds: [pz-safe]
puzzles:
  - id: pz-safe
    name: Safe
timeline:
  - id: ev-party
    name: Party
    charactersInvolvedIds: [char-alex]
`)

	data, err := NewFile(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, data.Len())
	assert.Equal(t, []string{"el-letter"}, data.Characters[0].OwnedElementIDs)
	assert.Equal(t, []string{"char-alex"}, data.Timeline[0].CharactersInvolvedIDs)
}

func TestFile_LoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	writeFile(t, path, `{"characters":[{"id":"c1","name":"Casey"}],"elements":[],"puzzles":[{"id":"p1","name":"Lock","subPuzzleIds":["p2"]}],"timeline":[]}`)

	data, err := NewFile(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, data.Puzzles, 1)
	assert.Equal(t, []string{"p2"}, data.Puzzles[0].SubPuzzleIDs)
}

func TestFile_LoadErrors(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "missing.yaml")).Load(context.Background())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "characters: {")
	_, err = NewFile(path).Load(context.Background())
	assert.Error(t, err)
}

func TestMarkdown_Load(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "characters", "alex.md"), "---\nid: char-alex\ntype: character\nname: Alex\nownedElementIds: el-letter\n---\nThe host.\nMore detail.\n")
	writeFile(t, filepath.Join(root, "elements", "letter.md"), "---\nid: el-letter\ntype: element\nname: Letter\nrequiredForPuzzleIds: [pz-safe]\n---\n")
	writeFile(t, filepath.Join(root, "puzzles", "safe.md"), "---\nid: pz-safe\ntype: puzzle\nname: Safe\n---\n")
	writeFile(t, filepath.Join(root, "timeline", "party.md"), "---\nid: ev-party\ntype: timeline\nname: Party\n---\nEveryone arrives at eight.\n")
	writeFile(t, filepath.Join(root, "notes", "readme.md"), "No frontmatter here.\n")
	writeFile(t, filepath.Join(root, "notes", "other.txt"), "ignored")
	writeFile(t, filepath.Join(root, "drafts", "wip.md"), "---\nid: pz-wip\ntype: puzzle\n---\n")
	writeFile(t, filepath.Join(root, "puzzles", "safe_copy.md"), "---\nid: pz-safe\ntype: puzzle\nname: Duplicate\n---\n")

	src := NewMarkdown([]string{root}, []string{filepath.Join(root, "drafts")}, logger.Nop())
	data, result, err := src.LoadWithResult(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, result.Files)
	assert.Equal(t, 4, result.Loaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Duplicates)
	assert.Empty(t, result.Errors)

	require.Len(t, data.Characters, 1)
	assert.Equal(t, "The host.", data.Characters[0].Logline)
	assert.Equal(t, []string{"el-letter"}, data.Characters[0].OwnedElementIDs)
	require.Len(t, data.Timeline, 1)
	assert.Equal(t, "Everyone arrives at eight.", data.Timeline[0].Notes)
	require.Len(t, data.Puzzles, 1)
	assert.Equal(t, "Safe", data.Puzzles[0].Name)
}

func TestMarkdown_MalformedFileDoesNotAbort(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), "---\nid: [\n---\n")
	writeFile(t, filepath.Join(root, "b.md"), "---\nid: pz-1\ntype: puzzle\n---\n")

	data, result, err := NewMarkdown([]string{root}, nil, nil).LoadWithResult(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Errors, 1)
	assert.Len(t, data.Puzzles, 1)
}

func TestMarkdown_MissingRoot(t *testing.T) {
	_, err := NewMarkdown([]string{filepath.Join(t.TempDir(), "nope")}, nil, nil).Load(context.Background())
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	data, err := (&Static{}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, data.Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Static{}).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsExcluded(t *testing.T) {
	excludes := []string{filepath.Clean("/lore/drafts")}
	assert.True(t, isExcluded("/lore/drafts", excludes))
	assert.True(t, isExcluded("/lore/drafts/a.md", excludes))
	assert.False(t, isExcluded("/lore/drafts-old/a.md", excludes))
}
