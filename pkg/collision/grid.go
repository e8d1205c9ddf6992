// pkg/collision/grid.go
package collision

// maxCellSpan caps how many cells a single entry is written into. Larger
// entries are kept on a separate list that every query sees.
const maxCellSpan = 1024

// Grid is the uniform-grid broad phase. It is rebuilt from scratch every
// tick. Each entry is bucketed into every cell its bounding box touches, so
// two overlapping boxes always share at least one cell.
type Grid struct {
	cells     map[CellCoord][]Entry
	order     []CellCoord
	oversized []Entry
	entries   int
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{
		cells: make(map[CellCoord][]Entry),
	}
}

// Rebuild clears the grid and inserts entries in order. Entries without a
// usable collider are ignored. Each collider's SpatialCoord is set to the
// cell holding its position.
func (g *Grid) Rebuild(entries []Entry) {
	g.Clear()
	for _, e := range entries {
		g.Insert(e)
	}
}

// Clear empties the grid.
func (g *Grid) Clear() {
	clear(g.cells)
	g.order = g.order[:0]
	g.oversized = g.oversized[:0]
	g.entries = 0
}

// Insert adds a single entry.
func (g *Grid) Insert(e Entry) {
	if !e.valid() {
		return
	}
	e.Collider.SpatialCoord = CellOf(e.Position)
	g.entries++

	lo, hi := CellRange(e.bounds())
	if cellSpan(lo, hi) > maxCellSpan {
		g.oversized = append(g.oversized, e)
		return
	}
	for x := lo.X; ; x++ {
		for y := lo.Y; ; y++ {
			g.add(CellCoord{X: x, Y: y}, e)
			if y == hi.Y {
				break
			}
		}
		if x == hi.X {
			break
		}
	}
}

func (g *Grid) add(c CellCoord, e Entry) {
	bucket, ok := g.cells[c]
	if !ok {
		g.order = append(g.order, c)
	}
	g.cells[c] = append(bucket, e)
}

// Candidates returns every entry sharing a cell with e, excluding e itself.
// An entry appears once per shared cell.
func (g *Grid) Candidates(e Entry) []Entry {
	return g.AppendCandidates(nil, e)
}

// AppendCandidates appends the candidates for e to dst and returns it.
func (g *Grid) AppendCandidates(dst []Entry, e Entry) []Entry {
	if !e.valid() {
		return dst
	}

	lo, hi := CellRange(e.bounds())
	if cellSpan(lo, hi) > int64(len(g.order)) {
		// Cheaper to walk the occupied cells than the whole range.
		for _, c := range g.order {
			if c.X >= lo.X && c.X <= hi.X && c.Y >= lo.Y && c.Y <= hi.Y {
				dst = appendExcept(dst, g.cells[c], e.ID)
			}
		}
	} else {
		for x := lo.X; ; x++ {
			for y := lo.Y; ; y++ {
				dst = appendExcept(dst, g.cells[CellCoord{X: x, Y: y}], e.ID)
				if y == hi.Y {
					break
				}
			}
			if x == hi.X {
				break
			}
		}
	}
	return appendExcept(dst, g.oversized, e.ID)
}

func appendExcept(dst, src []Entry, id uint64) []Entry {
	for _, other := range src {
		if other.ID != id {
			dst = append(dst, other)
		}
	}
	return dst
}

// Cell returns the entries bucketed in c. The slice is owned by the grid.
func (g *Grid) Cell(c CellCoord) []Entry {
	return g.cells[c]
}

// Cells returns the occupied cells in first-insertion order.
func (g *Grid) Cells() []CellCoord {
	out := make([]CellCoord, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of entries inserted since the last rebuild.
func (g *Grid) Len() int {
	return g.entries
}
