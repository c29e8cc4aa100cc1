package graph

import (
	"fmt"

	"mysteryweb/internal/entity"
)

// RelationshipType names the kind of an edge.
type RelationshipType string

const (
	RelOwnership   RelationshipType = "ownership"
	RelRequirement RelationshipType = "requirement"
	RelReward      RelationshipType = "reward"
	RelTimeline    RelationshipType = "timeline"
	RelContainer   RelationshipType = "container"
	RelDependency  RelationshipType = "dependency"
	RelChain       RelationshipType = "chain"
	RelGeneric     RelationshipType = "relationship"
	RelVirtual     RelationshipType = "virtual"
)

var relationshipLabels = map[RelationshipType]string{
	RelOwnership:   "owns",
	RelRequirement: "required by",
	RelReward:      "rewards",
	RelTimeline:    "appears in",
	RelContainer:   "contains",
	RelDependency:  "unlocks",
	RelChain:       "sub-puzzle",
	RelGeneric:     "related",
}

// Label is the human-readable edge caption.
func (t RelationshipType) Label() string {
	if label, ok := relationshipLabels[t]; ok {
		return label
	}
	return string(t)
}

// Position is a 2D coordinate in layout space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeStyle is only set for nodes that must be visually distinguished.
type NodeStyle struct {
	BorderColor string  `json:"borderColor,omitempty"`
	BorderStyle string  `json:"borderStyle,omitempty"`
	Background  string  `json:"background,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
}

// NodeMetadata carries derived fields next to the entity payload.
type NodeMetadata struct {
	EntityType entity.Type `json:"entityType"`
	Role       string      `json:"role,omitempty"`
	Category   string      `json:"category,omitempty"`
	Status     string      `json:"status,omitempty"`
	Complexity string      `json:"complexity,omitempty"`

	// element cross references
	OwnerID           string `json:"ownerId,omitempty"`
	ContainerID       string `json:"containerId,omitempty"`
	TimelineEventID   string `json:"timelineEventId,omitempty"`
	TimelineEventName string `json:"timelineEventName,omitempty"`
	IsRequirement     bool   `json:"isRequirement,omitempty"`
	IsReward          bool   `json:"isReward,omitempty"`
	IsDualRole        bool   `json:"isDualRole,omitempty"`
	RewardedByCount   int    `json:"rewardedByCount,omitempty"`
	HasSFPatterns     bool   `json:"hasSfPatterns,omitempty"`

	// puzzle hierarchy
	IsParent bool   `json:"isParent,omitempty"`
	IsChild  bool   `json:"isChild,omitempty"`
	ParentID string `json:"parentId,omitempty"`

	NarrativeThreads []string `json:"narrativeThreads,omitempty"`

	// placeholders
	IsPlaceholder bool     `json:"isPlaceholder,omitempty"`
	MissingReason string   `json:"missingReason,omitempty"`
	ReferencedBy  []string `json:"referencedBy,omitempty"`

	// layout and traversal annotations
	Rank       *int `json:"rank,omitempty"`
	Distance   *int `json:"distance,omitempty"`
	IsExpanded bool `json:"isExpanded,omitempty"`
}

type NodeData struct {
	Label    string       `json:"label"`
	Entity   any          `json:"entity,omitempty"`
	Metadata NodeMetadata `json:"metadata"`
	Style    *NodeStyle   `json:"style,omitempty"`
}

// Node is one vertex of the rendered graph.
type Node struct {
	ID       string      `json:"id"`
	Type     entity.Type `json:"type"`
	Position Position    `json:"position"`
	Data     NodeData    `json:"data"`
}

type EdgeData struct {
	RelationshipType RelationshipType `json:"relationshipType"`
	Weight           float64          `json:"weight"`
	Label            string           `json:"label"`
	Strength         float64          `json:"strength"`
	Bidirectional    bool             `json:"bidirectional,omitempty"`
	IsVirtual        bool             `json:"isVirtual,omitempty"`
}

// Edge is one directed, typed connection.
type Edge struct {
	ID     string           `json:"id"`
	Source string           `json:"source"`
	Target string           `json:"target"`
	Type   RelationshipType `json:"type"`
	Data   EdgeData         `json:"data"`
}

// EdgeID is the canonical id for a (type, source, target) triple.
func EdgeID(rel RelationshipType, source, target string) string {
	return fmt.Sprintf("%s-%s-%s", rel, source, target)
}

// Endpoints satisfies the traversal link contract.
func (e Edge) Endpoints() (string, string, bool) {
	return e.Source, e.Target, e.Data.Bidirectional
}

// BoundingBox is the extent of all node positions.
type BoundingBox struct {
	MinX   float64 `json:"minX"`
	MinY   float64 `json:"minY"`
	MaxX   float64 `json:"maxX"`
	MaxY   float64 `json:"maxY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds computes the bounding box of the given nodes.
func Bounds(nodes []Node) BoundingBox {
	if len(nodes) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{
		MinX: nodes[0].Position.X, MaxX: nodes[0].Position.X,
		MinY: nodes[0].Position.Y, MaxY: nodes[0].Position.Y,
	}
	for _, n := range nodes[1:] {
		if n.Position.X < box.MinX {
			box.MinX = n.Position.X
		}
		if n.Position.X > box.MaxX {
			box.MaxX = n.Position.X
		}
		if n.Position.Y < box.MinY {
			box.MinY = n.Position.Y
		}
		if n.Position.Y > box.MaxY {
			box.MaxY = n.Position.Y
		}
	}
	box.Width = box.MaxX - box.MinX
	box.Height = box.MaxY - box.MinY
	return box
}

type Metrics struct {
	DurationMS       float64             `json:"durationMs"`
	NodeCount        int                 `json:"nodeCount"`
	EdgeCount        int                 `json:"edgeCount"`
	PlaceholderCount int                 `json:"placeholderCount"`
	OrphansRemoved   int                 `json:"orphansRemoved"`
	EdgesFiltered    int                 `json:"edgesFiltered"`
	NodesByType      map[entity.Type]int `json:"nodesByType"`
	Density          float64             `json:"density"`
	Components       int                 `json:"components"`
	BoundingBox      BoundingBox         `json:"boundingBox"`
	Warnings         []string            `json:"warnings,omitempty"`
}

// IntegritySummary is the integrity report translated for consumers.
type IntegritySummary struct {
	Score               int                      `json:"integrityScore"`
	BrokenRelationships int                      `json:"brokenRelationships"`
	TotalRelationships  int                      `json:"totalRelationships"`
	MissingByType       map[entity.Type][]string `json:"missingByType"`
}

type Metadata struct {
	View            string            `json:"view"`
	Layout          string            `json:"layout"`
	Metrics         Metrics           `json:"metrics"`
	IntegrityReport *IntegritySummary `json:"integrityReport,omitempty"`
}

// DepthMetadata describes a bounded connection-web expansion.
type DepthMetadata struct {
	DepthDistribution   map[int]int `json:"depthDistribution"`
	MaxReachableDepth   int         `json:"maxReachableDepth"`
	TotalReachableNodes int         `json:"totalReachableNodes"`
	IsCompleteNetwork   bool        `json:"isCompleteNetwork"`
	NodesAtCurrentDepth int         `json:"nodesAtCurrentDepth"`
	CurrentDepthLimit   int         `json:"currentDepthLimit"`
}

// GraphData is the serializable hand-off to the rendering layer.
type GraphData struct {
	Nodes         []Node         `json:"nodes"`
	Edges         []Edge         `json:"edges"`
	Metadata      Metadata       `json:"metadata"`
	DepthMetadata *DepthMetadata `json:"depthMetadata,omitempty"`
}

// NodeIndex maps node ids to nodes.
type NodeIndex map[string]*Node

// IndexNodes indexes a node slice by id.
func IndexNodes(nodes []Node) NodeIndex {
	index := make(NodeIndex, len(nodes))
	for i := range nodes {
		index[nodes[i].ID] = &nodes[i]
	}
	return index
}

func intPtr(v int) *int {
	return &v
}

// WithRank returns a copy of m with the hierarchical rank set.
func (m NodeMetadata) WithRank(rank int) NodeMetadata {
	m.Rank = intPtr(rank)
	return m
}

// WithDistance returns a copy of m with the traversal distance set.
func (m NodeMetadata) WithDistance(distance int) NodeMetadata {
	m.Distance = intPtr(distance)
	return m
}
