// Package spatial provides a cache-efficient broad-phase spatial index
// for culling which robot pairs are worth a precise narrow-phase
// check. Adapted from a cell-bucketed grid design; entities are
// identified by dense integer index, not pointer, to stay GC-cheap.
//
// The grid never decides resolution order by itself: it is rebuilt
// fresh every tick from the engine's current robot list, and every
// candidate slice it returns is expected to be re-sorted into
// ascending id order by the caller before use, so a cell's internal
// bucket order never leaks into simulation output.
package spatial

import "math"

// Grid buckets entities into fixed-size cells for O(1) average
// radius queries.
type Grid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]int
	scratch     []int
}

// NewGrid builds a grid sized to worldWidth x worldHeight. cellSize
// should be close to the largest radius queried against it.
func NewGrid(worldWidth, worldHeight, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil(worldWidth / cellSize))
	rows := int(math.Ceil(worldHeight / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]int, 0, 32),
	}
}

// Clear empties every cell without releasing backing arrays.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *Grid) clampedCell(x, y float64) int {
	col := int(x * g.invCellSize)
	row := int(y * g.invCellSize)
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return row*g.cols + col
}

// Insert adds an entity id at position (x, y).
func (g *Grid) Insert(id int, x, y float64) {
	idx := g.clampedCell(x, y)
	g.cells[idx] = append(g.cells[idx], id)
}

// QueryRadius returns candidate entity ids whose cell overlaps the
// (cx,cy,radius) bounding box. Candidates may lie outside the true
// radius; callers must narrow-phase check. The returned slice reuses
// an internal buffer and must be copied (or immediately re-sorted
// into a caller-owned slice) before the next QueryRadius call.
func (g *Grid) QueryRadius(cx, cy, radius float64) []int {
	g.scratch = g.scratch[:0]

	minCol := int((cx - radius) * g.invCellSize)
	maxCol := int((cx + radius) * g.invCellSize)
	minRow := int((cy - radius) * g.invCellSize)
	maxRow := int((cy + radius) * g.invCellSize)

	if minCol < 0 {
		minCol = 0
	}
	if maxCol >= g.cols {
		maxCol = g.cols - 1
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxRow >= g.rows {
		maxRow = g.rows - 1
	}

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := row*g.cols + col
			g.scratch = append(g.scratch, g.cells[idx]...)
		}
	}

	return g.scratch
}
