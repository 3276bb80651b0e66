package m2

// Animation is one sequence of the frame timeline.
type Animation struct {
	ID    int
	SubID int
	Start int
	End   int
	// Probability weights random selection among variations.
	Probability int
	Flags       uint32
	Speed       float32
	Name        string
}

// AnimationTable indexes sequences by animation id. Several entries may
// share an id as variations.
type AnimationTable struct {
	entries []Animation
	lookup  map[int][]int
	frames  int
}

// NewAnimationTable builds the id index.
func NewAnimationTable(entries []Animation) *AnimationTable {
	t := &AnimationTable{
		entries: append([]Animation(nil), entries...),
		lookup:  make(map[int][]int),
	}
	for i, a := range t.entries {
		t.lookup[a.ID] = append(t.lookup[a.ID], i)
		t.frames = max(t.frames, a.Start+1, a.End+1)
	}
	return t
}

// Len returns the number of entries.
func (t *AnimationTable) Len() int { return len(t.entries) }

// Entry returns entry i.
func (t *AnimationTable) Entry(i int) Animation { return t.entries[i] }

// FrameCount returns one past the last frame any entry uses.
func (t *AnimationTable) FrameCount() int { return t.frames }

// FrameLoop returns the window of the first entry for id. Unknown ids
// return (-1, -1, false).
func (t *AnimationTable) FrameLoop(id int) (start, end int, ok bool) {
	idx, ok := t.lookup[id]
	if !ok {
		return -1, -1, false
	}
	a := t.entries[idx[0]]
	return a.Start, a.End, true
}

// Lookup returns every variation registered for id, in table order.
func (t *AnimationTable) Lookup(id int) ([]Animation, bool) {
	idx, ok := t.lookup[id]
	if !ok {
		return nil, false
	}
	out := make([]Animation, len(idx))
	for i, j := range idx {
		out[i] = t.entries[j]
	}
	return out, true
}

// IDs returns the distinct animation ids in table order.
func (t *AnimationTable) IDs() []int {
	seen := make(map[int]bool, len(t.lookup))
	var ids []int
	for _, a := range t.entries {
		if !seen[a.ID] {
			seen[a.ID] = true
			ids = append(ids, a.ID)
		}
	}
	return ids
}
