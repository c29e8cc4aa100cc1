package entity

// LookupMaps indexes each collection by id. Built once per operation and
// read-only afterwards; pointers refer into the source slices.
type LookupMaps struct {
	Characters map[string]*Character
	Elements   map[string]*Element
	Puzzles    map[string]*Puzzle
	Timeline   map[string]*TimelineEvent
}

func BuildLookupMaps(characters []Character, elements []Element, puzzles []Puzzle, timeline []TimelineEvent) *LookupMaps {
	maps := &LookupMaps{
		Characters: make(map[string]*Character, len(characters)),
		Elements:   make(map[string]*Element, len(elements)),
		Puzzles:    make(map[string]*Puzzle, len(puzzles)),
		Timeline:   make(map[string]*TimelineEvent, len(timeline)),
	}
	for i := range characters {
		maps.Characters[characters[i].ID] = &characters[i]
	}
	for i := range elements {
		maps.Elements[elements[i].ID] = &elements[i]
	}
	for i := range puzzles {
		maps.Puzzles[puzzles[i].ID] = &puzzles[i]
	}
	for i := range timeline {
		maps.Timeline[timeline[i].ID] = &timeline[i]
	}
	return maps
}

// Lookup builds lookup maps for the dataset.
func (d *Dataset) Lookup() *LookupMaps {
	if d == nil {
		return BuildLookupMaps(nil, nil, nil, nil)
	}
	return BuildLookupMaps(d.Characters, d.Elements, d.Puzzles, d.Timeline)
}

// TypeOf returns the collection an id belongs to.
func (m *LookupMaps) TypeOf(id string) (Type, bool) {
	if _, ok := m.Characters[id]; ok {
		return TypeCharacter, true
	}
	if _, ok := m.Elements[id]; ok {
		return TypeElement, true
	}
	if _, ok := m.Puzzles[id]; ok {
		return TypePuzzle, true
	}
	if _, ok := m.Timeline[id]; ok {
		return TypeTimeline, true
	}
	return "", false
}

// Has reports whether id exists in the collection for t.
func (m *LookupMaps) Has(t Type, id string) bool {
	switch t {
	case TypeCharacter:
		_, ok := m.Characters[id]
		return ok
	case TypeElement:
		_, ok := m.Elements[id]
		return ok
	case TypePuzzle:
		_, ok := m.Puzzles[id]
		return ok
	case TypeTimeline:
		_, ok := m.Timeline[id]
		return ok
	}
	return false
}

// LabelOf returns the display label for an indexed entity, or the id.
func (m *LookupMaps) LabelOf(id string) string {
	if c, ok := m.Characters[id]; ok {
		return Label(c.ID, c.Name)
	}
	if e, ok := m.Elements[id]; ok {
		return Label(e.ID, e.Name)
	}
	if p, ok := m.Puzzles[id]; ok {
		return Label(p.ID, p.Name)
	}
	if t, ok := m.Timeline[id]; ok {
		return Label(t.ID, t.Name)
	}
	return id
}
