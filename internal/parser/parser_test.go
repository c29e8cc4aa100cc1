package parser

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"mysteryweb/internal/entity"
)

func TestParse(t *testing.T) {
	t.Run("valid element with full frontmatter", func(t *testing.T) {
		content := []byte("---\nid: el-letter\ntype: element\nname: Torn Letter\nbasicType: Document\nstatus: Done\nownerId: char-alex\nrequiredForPuzzleIds: [pz-safe, pz-desk]\n---\n\nA letter with the signature ripped off.\n")
		doc, err := Parse(content)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.ID != "el-letter" {
			t.Fatalf("expected id, got %q", doc.ID)
		}
		if doc.Type != entity.TypeElement {
			t.Fatalf("expected type element, got %q", doc.Type)
		}
		if doc.Name != "Torn Letter" {
			t.Fatalf("expected name, got %q", doc.Name)
		}
		if doc.Body != "A letter with the signature ripped off.\n" {
			t.Fatalf("unexpected body: %q", doc.Body)
		}
		if !reflect.DeepEqual(doc.Frontmatter["requiredForPuzzleIds"], []string{"pz-safe", "pz-desk"}) {
			t.Fatalf("unexpected requirements: %#v", doc.Frontmatter["requiredForPuzzleIds"])
		}
	})

	t.Run("minimal frontmatter", func(t *testing.T) {
		doc, err := Parse([]byte("---\nid: pz-1\ntype: puzzle\n---\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Name != "" {
			t.Fatalf("expected empty name, got %q", doc.Name)
		}
		if doc.Body != "" {
			t.Fatalf("expected empty body, got %q", doc.Body)
		}
	})

	t.Run("type alias", func(t *testing.T) {
		doc, err := Parse([]byte("---\nid: ev-1\ntype: event\n---\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.Type != entity.TypeTimeline {
			t.Fatalf("expected timeline, got %q", doc.Type)
		}
	})

	t.Run("numeric id", func(t *testing.T) {
		doc, err := Parse([]byte("---\nid: 42\ntype: character\n---\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.ID != "42" {
			t.Fatalf("expected id 42, got %q", doc.ID)
		}
	})

	t.Run("no frontmatter", func(t *testing.T) {
		_, err := Parse([]byte("Just text"))
		if !errors.Is(err, ErrNoFrontmatter) {
			t.Fatalf("expected ErrNoFrontmatter, got %v", err)
		}
	})

	t.Run("missing closing marker", func(t *testing.T) {
		_, err := Parse([]byte("---\nid: x\n"))
		if !errors.Is(err, ErrNoFrontmatter) {
			t.Fatalf("expected ErrNoFrontmatter, got %v", err)
		}
	})

	t.Run("closing marker at end of file", func(t *testing.T) {
		doc, err := Parse([]byte("---\nid: x\ntype: puzzle\n---"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if doc.ID != "x" {
			t.Fatalf("expected id x, got %q", doc.ID)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Parse([]byte("---\nid: [\n---\n"))
		if !errors.Is(err, ErrInvalidYAML) {
			t.Fatalf("expected ErrInvalidYAML, got %v", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := Parse([]byte("---\ntype: puzzle\n---\n"))
		if !errors.Is(err, ErrMissingID) {
			t.Fatalf("expected ErrMissingID, got %v", err)
		}
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := Parse([]byte("---\nid: something\n---\n"))
		if !errors.Is(err, ErrMissingType) {
			t.Fatalf("expected ErrMissingType, got %v", err)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := Parse([]byte("---\nid: x\ntype: npc\n---\n"))
		if !errors.Is(err, ErrUnknownType) {
			t.Fatalf("expected ErrUnknownType, got %v", err)
		}
	})

	t.Run("reference single string", func(t *testing.T) {
		doc, err := Parse([]byte("---\nid: c\ntype: character\nownedElementIds: el-1\n---\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(doc.Frontmatter["ownedElementIds"], []string{"el-1"}) {
			t.Fatalf("unexpected owned: %#v", doc.Frontmatter["ownedElementIds"])
		}
	})

	t.Run("reference list with non-string", func(t *testing.T) {
		_, err := Parse([]byte("---\nid: c\ntype: character\nownedElementIds: [{a: b}]\n---\n"))
		if err == nil {
			t.Fatalf("expected error for map in reference list")
		}
	})
}

func TestDecode(t *testing.T) {
	t.Run("element", func(t *testing.T) {
		doc, err := Parse([]byte("---\nid: el-1\ntype: element\nname: Key\ncontainerId: el-box\nrewardedByPuzzleIds: pz-1\nsfPatterns:\n  rfid: A1\n  valueRating: 3\n---\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var el entity.Element
		if err := doc.Decode(&el); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if el.ID != "el-1" || el.Name != "Key" || el.ContainerID != "el-box" {
			t.Fatalf("unexpected element: %+v", el)
		}
		if !reflect.DeepEqual(el.RewardedByPuzzleIDs, []string{"pz-1"}) {
			t.Fatalf("unexpected rewards: %#v", el.RewardedByPuzzleIDs)
		}
		if el.SFPatterns == nil || el.SFPatterns.RFID != "A1" || el.SFPatterns.ValueRating != 3 {
			t.Fatalf("unexpected patterns: %#v", el.SFPatterns)
		}
	})

	t.Run("character type comes from characterType", func(t *testing.T) {
		doc, err := Parse([]byte("---\nid: c-1\ntype: character\ncharacterType: NPC\ntier: Core\n---\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var c entity.Character
		if err := doc.Decode(&c); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if c.Type != "NPC" || c.Tier != "Core" {
			t.Fatalf("unexpected character: %+v", c)
		}
	})
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alex.md")
	if err := os.WriteFile(path, []byte("---\nid: char-alex\ntype: character\nname: Alex\n---\nBody\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.Name != "Alex" {
		t.Fatalf("expected name, got %q", doc.Name)
	}
	if doc.SourceFile != path {
		t.Fatalf("expected source file set, got %q", doc.SourceFile)
	}
}

func TestParse_BOMTrim(t *testing.T) {
	doc, err := Parse([]byte("\ufeff---\nid: bom\ntype: puzzle\n---\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.ID != "bom" {
		t.Fatalf("expected id, got %q", doc.ID)
	}
}

func TestParse_CRLF(t *testing.T) {
	doc, err := Parse([]byte("---\r\nid: crlf\r\ntype: puzzle\r\n---\r\nbody\r\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doc.ID != "crlf" {
		t.Fatalf("expected id, got %q", doc.ID)
	}
}

func TestParseFile_ReadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.md")
	if _, err := ParseFile(path); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
