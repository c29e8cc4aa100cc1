package source

import (
	"context"
	"fmt"
	"strings"

	"mysteryweb/internal/entity"
)

// Kind selects where a dataset is read from.
type Kind string

const (
	KindFile     Kind = "file"
	KindMarkdown Kind = "markdown"
	KindPostgres Kind = "postgres"
)

// ParseKind accepts a kind name case-insensitively. An empty string is a file source.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindFile:
		return KindFile, nil
	case KindMarkdown:
		return KindMarkdown, nil
	case KindPostgres:
		return KindPostgres, nil
	}
	return "", fmt.Errorf("unknown source kind %q", s)
}

// Source loads the four entity collections a graph build consumes.
type Source interface {
	Load(ctx context.Context) (*entity.Dataset, error)
	Close(ctx context.Context) error
}

// Static serves a dataset that is already in memory.
type Static struct {
	Data *entity.Dataset
}

var _ Source = (*Static)(nil)

func (s *Static) Load(ctx context.Context) (*entity.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Data == nil {
		return &entity.Dataset{}, nil
	}
	return s.Data, nil
}

func (s *Static) Close(ctx context.Context) error { return nil }
