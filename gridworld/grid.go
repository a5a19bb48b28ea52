package gridworld

import (
	"fmt"
	"strings"
)

// Cell type codes, matching the grid value indices the policies key on.
const (
	CellUnseen = 0
	CellEmpty  = 1
	CellWall   = 2
	CellAgent  = 3
	CellDoor   = 4
	CellGoal   = 8
)

// Map is an immutable 2D grid of cell type codes indexed as (x, y) with
// bounds [0, Width) x [0, Height).
type Map struct {
	width  int
	height int
	cells  []int
}

// NewMap builds a map from a column-major cell slice (len = width*height).
func NewMap(width, height int, cells []int) (*Map, error) {
	if len(cells) != width*height {
		return nil, fmt.Errorf("map: got %d cells, want %d", len(cells), width*height)
	}
	return &Map{width: width, height: height, cells: append([]int(nil), cells...)}, nil
}

// NewOpenMap builds a width x height room with a wall border and an empty
// interior.
func NewOpenMap(width, height int) *Map {
	m := &Map{width: width, height: height, cells: make([]int, width*height)}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				m.cells[x*height+y] = CellWall
			} else {
				m.cells[x*height+y] = CellEmpty
			}
		}
	}
	return m
}

// ParseMap reads a map from rows of characters: '#' wall, '.' empty,
// 'G' goal, 'D' door. Row index is y, column index is x.
func ParseMap(rows []string) (*Map, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("map: no rows")
	}
	height := len(rows)
	width := len(rows[0])
	m := &Map{width: width, height: height, cells: make([]int, width*height)}
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("map: ragged row %d", y)
		}
		for x, c := range row {
			var cell int
			switch c {
			case '#':
				cell = CellWall
			case '.':
				cell = CellEmpty
			case 'G':
				cell = CellGoal
			case 'D':
				cell = CellDoor
			default:
				return nil, fmt.Errorf("map: unknown cell %q", c)
			}
			m.cells[x*height+y] = cell
		}
	}
	return m, nil
}

func (m *Map) Width() int  { return m.width }
func (m *Map) Height() int { return m.height }

// At returns the cell code at (x, y). Out of bounds counts as a wall.
func (m *Map) At(x, y int) int {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return CellWall
	}
	return m.cells[x*m.height+y]
}

// InBounds reports whether the continuous point (x, y) lies inside the map.
func (m *Map) InBounds(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(m.width) && y < float64(m.height)
}

// Cells returns a copy of the raw cell slice in column-major order.
func (m *Map) Cells() []int {
	return append([]int(nil), m.cells...)
}

func (m *Map) String() string {
	var b strings.Builder
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			switch m.At(x, y) {
			case CellWall:
				b.WriteByte('#')
			case CellGoal:
				b.WriteByte('G')
			case CellDoor:
				b.WriteByte('D')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
