package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"mysteryweb/internal/entity"
)

// Document is one markdown entity file: its frontmatter plus the prose body.
type Document struct {
	Frontmatter map[string]any
	ID          string
	Name        string
	Type        entity.Type
	Body        string
	SourceFile  string
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingID     = errors.New("frontmatter missing required 'id' field")
	ErrMissingType   = errors.New("frontmatter missing required 'type' field")
	ErrUnknownType   = errors.New("frontmatter 'type' is not an entity type")
)

// listFields are reference fields that may be written as a single id or a list.
var listFields = map[string]struct{}{
	"ownedElementIds":       {},
	"connections":           {},
	"characterPuzzleIds":    {},
	"eventIds":              {},
	"contentIds":            {},
	"requiredForPuzzleIds":  {},
	"rewardedByPuzzleIds":   {},
	"narrativeThreads":      {},
	"puzzleElementIds":      {},
	"rewardIds":             {},
	"subPuzzleIds":          {},
	"charactersInvolvedIds": {},
}

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

func Parse(content []byte) (*Document, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	trimmed = bytes.ReplaceAll(trimmed, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return nil, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("---\n"))
	if end == -1 {
		if !bytes.HasSuffix(rest, []byte("\n---")) {
			return nil, ErrNoFrontmatter
		}
		end = len(rest) - len("---")
		rest = append(rest, '\n')
	}

	yamlBytes := rest[:end]
	body := strings.TrimLeft(string(rest[end+len("---\n"):]), "\n")

	var frontmatter map[string]any
	if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
		return nil, ErrInvalidYAML
	}
	if frontmatter == nil {
		frontmatter = map[string]any{}
	}

	id := scalar(frontmatter["id"])
	if id == "" {
		return nil, ErrMissingID
	}

	rawType := scalar(frontmatter["type"])
	if rawType == "" {
		return nil, ErrMissingType
	}
	typ, ok := entity.ParseType(rawType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, rawType)
	}

	for key := range listFields {
		list, err := parseList(key, frontmatter[key])
		if err != nil {
			return nil, err
		}
		if list == nil {
			delete(frontmatter, key)
			continue
		}
		frontmatter[key] = list
	}

	return &Document{
		Frontmatter: frontmatter,
		ID:          id,
		Name:        scalar(frontmatter["name"]),
		Type:        typ,
		Body:        body,
	}, nil
}

// Decode copies the frontmatter into v, a pointer to one of the entity structs.
// The entity type key is dropped first so a character's own "type" field is
// only set from an explicit "characterType" entry.
func (d *Document) Decode(v any) error {
	fields := make(map[string]any, len(d.Frontmatter))
	for k, val := range d.Frontmatter {
		fields[k] = val
	}
	delete(fields, "type")
	if ct, ok := fields["characterType"]; ok {
		fields["type"] = ct
		delete(fields, "characterType")
	}
	fields["id"] = d.ID

	raw, err := yaml.Marshal(fields)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", d.ID, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding %s: %w", d.ID, err)
	}
	return nil
}

func scalar(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case int, int64, float64, bool:
		return fmt.Sprint(v)
	}
	return ""
}

func parseList(key string, value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{strings.TrimSpace(v)}, nil
	case []string:
		return v, nil
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s := scalar(item)
			if s == "" {
				if _, isString := item.(string); !isString {
					return nil, fmt.Errorf("%s must be strings", key)
				}
				continue
			}
			items = append(items, s)
		}
		if len(items) == 0 {
			return nil, nil
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%s must be string or list of strings", key)
	}
}
