package builder

import (
	"fmt"

	"mysteryweb/internal/entity"
	"mysteryweb/internal/graph"
	"mysteryweb/internal/layout"
)

type View string

const (
	ViewDefault          View = "default"
	ViewPuzzleFocus      View = "puzzle-focus"
	ViewContentStatus    View = "content-status"
	ViewCharacterJourney View = "character-journey"
	ViewConnectionWeb    View = "connection-web"
)

var Views = []View{ViewDefault, ViewPuzzleFocus, ViewContentStatus, ViewCharacterJourney, ViewConnectionWeb}

func ParseView(s string) (View, error) {
	if s == "" {
		return ViewDefault, nil
	}
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// DefaultAlgorithm is the layout a view uses when none is configured.
func DefaultAlgorithm(v View) layout.Algorithm {
	switch v {
	case ViewContentStatus, ViewConnectionWeb:
		return layout.Force
	}
	return layout.PureDagre
}

type Options struct {
	View                      View
	ExcludeEntityTypes        []entity.Type
	FilterRelationships       []graph.RelationshipType
	IncludeOrphans            bool
	SkipIntegrity             bool
	PreserveHierarchy         bool
	IncludePuzzleDependencies bool
	Layout                    layout.Config
}

// WebOptions bound a connection-web expansion.
type WebOptions struct {
	MaxDepth int
	MaxNodes int
	// ExpandedNodes lists the only ids discovered beyond depth 2, when non-empty.
	ExpandedNodes []string
	Layout        layout.Config
}

const (
	DefaultMaxDepth = 10
	DefaultMaxNodes = 250
	// lazyDepth is the depth beyond which ExpandedNodes gates discovery.
	lazyDepth = 2
)

func (o WebOptions) withDefaults() WebOptions {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	return o
}
