// Package grid converts between linear cell indices and row/column
// positions for fixed-width text layouts.
package grid

// GetGridCoords returns the column and row of the index-th cell in a grid
// that is cols cells wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// CellOrigin returns the pixel origin of cell (x, y) for cells of the given size.
func CellOrigin(x, y, cellWidth, cellHeight int) (px, py int) {
	return x * cellWidth, y * cellHeight
}
