package grid

// Map is the sequential spatial index: a mapping from cell coordinate
// to the list of particle indices inside that cell. Cells holding no
// particles are simply absent.
type Map struct {
	cellSize float32
	cells    map[CellKey][]int32
}

// NewMap creates an empty map index with the given cell size, which is
// the solver's smoothing radius.
func NewMap(cellSize float32) *Map {
	return &Map{
		cellSize: cellSize,
		cells:    make(map[CellKey][]int32),
	}
}

// Reset removes all entries while keeping cell allocations for reuse.
func (m *Map) Reset() {
	for k := range m.cells {
		m.cells[k] = m.cells[k][:0]
	}
}

// Insert adds a particle index at the given position.
func (m *Map) Insert(i int32, x, y float32) {
	cx, cy := CellOf(x, y, m.cellSize)
	key := CellKey{X: cx, Y: cy}
	m.cells[key] = append(m.cells[key], i)
}

// Len returns the total number of stored indices.
func (m *Map) Len() int {
	n := 0
	for _, c := range m.cells {
		n += len(c)
	}
	return n
}

// ForNeighbors invokes fn for every particle index in the 3×3 block of
// cells around the given position, including the particle at the
// position itself. Callers filter by distance.
func (m *Map) ForNeighbors(x, y float32, fn func(j int32)) {
	cx, cy := CellOf(x, y, m.cellSize)
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			if list, ok := m.cells[CellKey{X: cx + dx, Y: cy + dy}]; ok {
				for _, j := range list {
					fn(j)
				}
			}
		}
	}
}
