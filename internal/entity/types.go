package entity

// Type names an entity category. Placeholder marks synthetic nodes for
// referenced-but-absent entities.
type Type string

const (
	TypeCharacter   Type = "character"
	TypeElement     Type = "element"
	TypePuzzle      Type = "puzzle"
	TypeTimeline    Type = "timeline"
	TypePlaceholder Type = "placeholder"
)

// Types lists the four real entity categories in transform order.
var Types = []Type{TypeCharacter, TypeElement, TypePuzzle, TypeTimeline}

// ParseType accepts the canonical names plus a few common aliases.
func ParseType(s string) (Type, bool) {
	switch s {
	case "character", "characters", "char":
		return TypeCharacter, true
	case "element", "elements", "evidence":
		return TypeElement, true
	case "puzzle", "puzzles":
		return TypePuzzle, true
	case "timeline", "event", "events", "timelineEvent":
		return TypeTimeline, true
	}
	return "", false
}

type Character struct {
	ID                 string   `json:"id" yaml:"id"`
	Name               string   `json:"name" yaml:"name"`
	Type               string   `json:"type,omitempty" yaml:"type,omitempty"`
	Tier               string   `json:"tier,omitempty" yaml:"tier,omitempty"`
	Logline            string   `json:"logline,omitempty" yaml:"logline,omitempty"`
	OwnedElementIDs    []string `json:"ownedElementIds,omitempty" yaml:"ownedElementIds,omitempty"`
	Connections        []string `json:"connections,omitempty" yaml:"connections,omitempty"`
	CharacterPuzzleIDs []string `json:"characterPuzzleIds,omitempty" yaml:"characterPuzzleIds,omitempty"`
	EventIDs           []string `json:"eventIds,omitempty" yaml:"eventIds,omitempty"`
}

// SFGroup is the scoring group an element's memory token belongs to.
type SFGroup struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Multiplier string `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
}

// SFPatterns is special-pattern metadata parsed from an element description.
type SFPatterns struct {
	RFID        string   `json:"rfid,omitempty" yaml:"rfid,omitempty"`
	ValueRating int      `json:"valueRating,omitempty" yaml:"valueRating,omitempty"`
	MemoryType  string   `json:"memoryType,omitempty" yaml:"memoryType,omitempty"`
	Group       *SFGroup `json:"group,omitempty" yaml:"group,omitempty"`
}

// IsEmpty reports whether no pattern field carries a value.
func (p *SFPatterns) IsEmpty() bool {
	if p == nil {
		return true
	}
	if p.RFID != "" || p.ValueRating != 0 || p.MemoryType != "" {
		return false
	}
	return p.Group == nil || (p.Group.Name == "" && p.Group.Multiplier == "")
}

type Element struct {
	ID                   string      `json:"id" yaml:"id"`
	Name                 string      `json:"name" yaml:"name"`
	BasicType            string      `json:"basicType,omitempty" yaml:"basicType,omitempty"`
	Status               string      `json:"status,omitempty" yaml:"status,omitempty"`
	FirstAvailable       string      `json:"firstAvailable,omitempty" yaml:"firstAvailable,omitempty"`
	OwnerID              string      `json:"ownerId,omitempty" yaml:"ownerId,omitempty"`
	ContainerID          string      `json:"containerId,omitempty" yaml:"containerId,omitempty"`
	ContentIDs           []string    `json:"contentIds,omitempty" yaml:"contentIds,omitempty"`
	TimelineEventID      string      `json:"timelineEventId,omitempty" yaml:"timelineEventId,omitempty"`
	RequiredForPuzzleIDs []string    `json:"requiredForPuzzleIds,omitempty" yaml:"requiredForPuzzleIds,omitempty"`
	RewardedByPuzzleIDs  []string    `json:"rewardedByPuzzleIds,omitempty" yaml:"rewardedByPuzzleIds,omitempty"`
	NarrativeThreads     []string    `json:"narrativeThreads,omitempty" yaml:"narrativeThreads,omitempty"`
	SFPatterns           *SFPatterns `json:"sfPatterns,omitempty" yaml:"sfPatterns,omitempty"`
}

type Puzzle struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Timing           string   `json:"timing,omitempty" yaml:"timing,omitempty"`
	PuzzleElementIDs []string `json:"puzzleElementIds,omitempty" yaml:"puzzleElementIds,omitempty"`
	RewardIDs        []string `json:"rewardIds,omitempty" yaml:"rewardIds,omitempty"`
	ParentItemID     string   `json:"parentItemId,omitempty" yaml:"parentItemId,omitempty"`
	SubPuzzleIDs     []string `json:"subPuzzleIds,omitempty" yaml:"subPuzzleIds,omitempty"`
	NarrativeThreads []string `json:"narrativeThreads,omitempty" yaml:"narrativeThreads,omitempty"`
}

type TimelineEvent struct {
	ID                    string   `json:"id" yaml:"id"`
	Name                  string   `json:"name" yaml:"name"`
	Date                  string   `json:"date,omitempty" yaml:"date,omitempty"`
	Notes                 string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	CharactersInvolvedIDs []string `json:"charactersInvolvedIds,omitempty" yaml:"charactersInvolvedIds,omitempty"`
}

// Dataset is the four flat entity collections a build consumes.
type Dataset struct {
	Characters []Character     `json:"characters" yaml:"characters"`
	Elements   []Element       `json:"elements" yaml:"elements"`
	Puzzles    []Puzzle        `json:"puzzles" yaml:"puzzles"`
	Timeline   []TimelineEvent `json:"timeline" yaml:"timeline"`
}

// Len is the total number of entities across all collections.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Characters) + len(d.Elements) + len(d.Puzzles) + len(d.Timeline)
}

// Label is a display name: the entity name, falling back to the id.
func Label(id, name string) string {
	if name != "" {
		return name
	}
	return id
}
