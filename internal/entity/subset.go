package entity

// Subset returns a dataset holding only entities whose id passes keep.
// Order within each collection is preserved.
func (d *Dataset) Subset(keep func(Type, string) bool) *Dataset {
	out := &Dataset{}
	if d == nil {
		return out
	}
	for _, c := range d.Characters {
		if keep(TypeCharacter, c.ID) {
			out.Characters = append(out.Characters, c)
		}
	}
	for _, e := range d.Elements {
		if keep(TypeElement, e.ID) {
			out.Elements = append(out.Elements, e)
		}
	}
	for _, p := range d.Puzzles {
		if keep(TypePuzzle, p.ID) {
			out.Puzzles = append(out.Puzzles, p)
		}
	}
	for _, t := range d.Timeline {
		if keep(TypeTimeline, t.ID) {
			out.Timeline = append(out.Timeline, t)
		}
	}
	return out
}
