package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mysteryweb/internal/entity"
)

// File reads a whole dataset from one YAML or JSON document with the
// top-level keys characters, elements, puzzles and timeline.
type File struct {
	Path string
}

var _ Source = (*File)(nil)

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Load(ctx context.Context) (*entity.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", f.Path, err)
	}
	return DecodeDataset(raw)
}

func (f *File) Close(ctx context.Context) error { return nil }

// DecodeDataset parses YAML, and therefore JSON, dataset bytes.
func DecodeDataset(raw []byte) (*entity.Dataset, error) {
	var data entity.Dataset
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	return &data, nil
}
