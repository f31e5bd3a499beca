// Package sheet lays out copies of a photo on a printable sheet and renders it.
package sheet

import (
	"image"
)

// Params describes the pixel geometry of a sheet layout.
type Params struct {
	Photo  image.Point
	Sheet  image.Point
	Margin image.Point
	Gap    int
}

// Grid is the outcome of a layout. Placements holds the top-left corner of every tile
// that fits, x outer and y inner. Columns and Rows are the counts the stride formula
// allows, Skipped the number of those cells the fit guard rejected.
type Grid struct {
	Placements []image.Point
	Columns    int
	Rows       int
	Skipped    int
}

// Tiles returns the number of tiles actually placed.
func (g Grid) Tiles() int {
	return len(g.Placements)
}

// Count returns how many tiles of length photo fit along an axis of length sheet when
// the first starts at margin and consecutive tiles are gap apart. The margin is spent
// once and one gap is added back so the last tile needs no trailing gap.
func Count(sheet, photo, margin, gap int) int {
	stride := photo + gap
	if photo <= 0 || stride <= 0 {
		return 0
	}

	n := (sheet - margin + gap) / stride
	if n < 0 {
		return 0
	}

	return n
}

// Layout computes the tile placements for p.
func Layout(p Params) Grid {
	grid := Grid{
		Columns: Count(p.Sheet.X, p.Photo.X, p.Margin.X, p.Gap),
		Rows:    Count(p.Sheet.Y, p.Photo.Y, p.Margin.Y, p.Gap),
	}
	grid.Placements = make([]image.Point, 0, grid.Columns*grid.Rows)

	for i := 0; i < grid.Columns; i++ {
		for j := 0; j < grid.Rows; j++ {
			x := p.Margin.X + i*(p.Photo.X+p.Gap)
			y := p.Margin.Y + j*(p.Photo.Y+p.Gap)
			// fit guard
			if x+p.Photo.X > p.Sheet.X || y+p.Photo.Y > p.Sheet.Y {
				grid.Skipped++

				continue
			}
			grid.Placements = append(grid.Placements, image.Pt(x, y))
		}
	}

	return grid
}
