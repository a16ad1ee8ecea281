package engine

import (
	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/index"
	"github.com/milk9111/testudo/rules"
)

// batchPaint auto-paints many cells at once. The result matches painting
// each cell in turn, but every cell is resolved against the final occupancy
// in one pass and the surrounding cells are repainted once each.
func (e *Engine) batchPaint(cells []grid.Vec3, heading float64, tileset string) error {
	defer e.index.Invalidate()
	rs, ok, err := e.ruleset(tileset)
	if err != nil || !ok {
		return err
	}
	cells = uniqueCells(cells)

	for _, c := range cells {
		if err := e.clearCell(c); err != nil {
			return err
		}
	}
	e.index.Reset(nil)

	shadow := e.index.Items()
	for _, c := range cells {
		shadow = append(shadow, index.Probe{At: c})
	}
	e.index.Reset(shadow)

	masks := make([]rules.Mask, len(cells))
	for i, c := range cells {
		masks[i] = e.mask(c)
	}
	for i, c := range cells {
		if err := e.placeRule(c, heading, tileset, rs, masks[i]); err != nil {
			return err
		}
	}

	e.index.Reset(nil)
	return e.repaintPerimeter(cells)
}

// batchDelete clears many cells and repaints what surrounds them once.
func (e *Engine) batchDelete(cells []grid.Vec3) error {
	defer e.index.Invalidate()
	cells = uniqueCells(cells)
	for _, c := range cells {
		if err := e.clearCell(c); err != nil {
			return err
		}
	}
	e.index.Reset(nil)
	return e.repaintPerimeter(cells)
}

func (e *Engine) repaintPerimeter(cells []grid.Vec3) error {
	touched := make(map[grid.Vec3]bool, len(cells))
	for _, c := range cells {
		touched[c] = true
	}
	for _, c := range cells {
		if err := e.repaintAdjacent(c, touched); err != nil {
			return err
		}
	}
	return nil
}

func uniqueCells(cells []grid.Vec3) []grid.Vec3 {
	seen := make(map[grid.Vec3]bool, len(cells))
	out := make([]grid.Vec3, 0, len(cells))
	for _, c := range cells {
		c = c.Round()
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
