package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/logger"
	"mysteryweb/internal/parser"
)

// Markdown builds a dataset from a tree of markdown files, one entity per
// file, described by frontmatter.
type Markdown struct {
	Paths   []string
	Exclude []string

	log logger.Logger
}

var _ Source = (*Markdown)(nil)

// LoadResult counts what the last Load saw.
type LoadResult struct {
	Files      int
	Loaded     int
	Skipped    int
	Duplicates int
	Errors     []error
}

func NewMarkdown(paths, exclude []string, log logger.Logger) *Markdown {
	return &Markdown{Paths: paths, Exclude: exclude, log: logger.OrNop(log)}
}

func (m *Markdown) Load(ctx context.Context) (*entity.Dataset, error) {
	data, result, err := m.LoadWithResult(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range result.Errors {
		m.log.Warn("skipping markdown file", "err", e)
	}
	return data, nil
}

// LoadWithResult is Load plus per-file accounting. Files without frontmatter
// or without a known entity type are skipped; malformed files are reported in
// Errors and do not abort the load.
func (m *Markdown) LoadWithResult(ctx context.Context) (*entity.Dataset, *LoadResult, error) {
	files, err := walkMarkdownFiles(m.Paths, m.Exclude)
	if err != nil {
		return nil, nil, fmt.Errorf("walking markdown files: %w", err)
	}

	data := &entity.Dataset{}
	result := &LoadResult{Files: len(files)}
	seen := make(map[string]string, len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		doc, err := parser.ParseFile(path)
		if err != nil {
			if errors.Is(err, parser.ErrNoFrontmatter) || errors.Is(err, parser.ErrMissingType) || errors.Is(err, parser.ErrUnknownType) {
				m.log.Debug("skipping file", "path", path, "reason", err)
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}

		if first, dup := seen[doc.ID]; dup {
			m.log.Warn("duplicate entity id", "id", doc.ID, "path", path, "first", first)
			result.Duplicates++
			continue
		}

		if err := appendDocument(data, doc); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("decoding %s: %w", path, err))
			continue
		}
		seen[doc.ID] = path
		result.Loaded++
	}

	return data, result, nil
}

func (m *Markdown) Close(ctx context.Context) error { return nil }

func appendDocument(data *entity.Dataset, doc *parser.Document) error {
	switch doc.Type {
	case entity.TypeCharacter:
		var c entity.Character
		if err := doc.Decode(&c); err != nil {
			return err
		}
		if c.Logline == "" {
			c.Logline = firstLine(doc.Body)
		}
		data.Characters = append(data.Characters, c)
	case entity.TypeElement:
		var e entity.Element
		if err := doc.Decode(&e); err != nil {
			return err
		}
		data.Elements = append(data.Elements, e)
	case entity.TypePuzzle:
		var p entity.Puzzle
		if err := doc.Decode(&p); err != nil {
			return err
		}
		data.Puzzles = append(data.Puzzles, p)
	case entity.TypeTimeline:
		var ev entity.TimelineEvent
		if err := doc.Decode(&ev); err != nil {
			return err
		}
		if ev.Notes == "" {
			ev.Notes = strings.TrimSpace(doc.Body)
		}
		data.Timeline = append(data.Timeline, ev)
	default:
		return fmt.Errorf("unsupported entity type %q", doc.Type)
	}
	return nil
}

func firstLine(body string) string {
	body = strings.TrimSpace(body)
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}

func walkMarkdownFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
