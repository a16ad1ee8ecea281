package engine

import (
	"fmt"
	"math"

	"github.com/milk9111/testudo/grid"
)

// Translate moves the cursor by a local offset: y is forward along the
// cursor heading, x is to the right, z is up. The result snaps to the grid.
// Grabbed tiles and the selection start follow the cursor, then the held
// action is drawn at the new cell.
func (e *Engine) Translate(dx, dy, dz float64) error {
	off := grid.V(dx, dy, dz).RotateZ(e.cursor.Rot)
	if err := e.moveCursor(e.cursor.Pos.Add(off)); err != nil {
		return e.fail("translate", err)
	}
	return e.fail("translate", e.contextualDraw())
}

// CursorTo moves the cursor to an absolute cell.
func (e *Engine) CursorTo(p grid.Vec3) error {
	if err := e.moveCursor(p); err != nil {
		return e.fail("cursor", err)
	}
	return e.fail("cursor", e.contextualDraw())
}

func (e *Engine) moveCursor(p grid.Vec3) error {
	if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
		return fmt.Errorf("position %v is not finite", p)
	}
	p = p.Round()
	delta := p.Sub(e.cursor.Pos)
	e.cursor.Pos = p
	if e.selecting && e.grabbing {
		e.selectStart = e.selectStart.Add(delta)
	}
	if !e.grabbing {
		return nil
	}
	defer e.index.Invalidate()
	for _, g := range e.grabbed {
		if err := e.host.MoveTile(g.tile, g.tile.Pos().Add(delta), g.tile.Rot()); err != nil {
			return err
		}
	}
	e.log.Debug("moved grab", "delta", delta, "tiles", len(e.grabbed))
	return nil
}

// Rotate turns the cursor by deg degrees counter-clockwise. Grabbed tiles
// orbit the cursor and turn with it.
func (e *Engine) Rotate(deg float64) error {
	if err := e.turn(deg); err != nil {
		return e.fail("rotate", err)
	}
	return e.fail("rotate", e.contextualDraw())
}

func (e *Engine) turn(deg float64) error {
	if !finite(deg) {
		return fmt.Errorf("rotation %v is not finite", deg)
	}
	if e.grabbing {
		defer e.index.Invalidate()
		for _, g := range e.grabbed {
			pos := e.cursor.Pos.Add(g.tile.Pos().Sub(e.cursor.Pos).RotateZ(deg))
			if err := e.host.MoveTile(g.tile, pos, g.tile.Rot()+deg); err != nil {
				return err
			}
		}
		if e.selecting {
			e.selectStart = e.cursor.Pos.Add(e.selectStart.Sub(e.cursor.Pos).RotateZ(deg)).Round()
		}
	}
	e.cursor.Rot += deg
	return nil
}

// SmartMove steps forward when (dx, dy) is the direction the cursor already
// faces and turns to face it otherwise.
func (e *Engine) SmartMove(dx, dy float64, repeat int) error {
	h := grid.Heading(dx, dy)
	if grid.NormRot(e.cursor.Rot) != grid.NormRot(h) {
		return e.Rotate(h - e.cursor.Rot)
	}
	step := math.Round(math.Hypot(dx, dy))
	for range max(repeat, 1) {
		if err := e.Translate(0, step, 0); err != nil {
			return err
		}
	}
	return nil
}

// Line draws from the cursor to (x, y) at the cursor height. The cursor
// walks every rasterised cell and ends on the last one.
func (e *Engine) Line(x, y int) error {
	x0, y0, z := e.cursor.Pos.Ints()
	for _, p := range grid.Line(x0, y0, x, y) {
		if err := e.moveCursor(grid.V(float64(p[0]), float64(p[1]), float64(z))); err != nil {
			return e.fail("line", err)
		}
		if err := e.contextualDraw(); err != nil {
			return e.fail("line", err)
		}
	}
	return nil
}

// Circle draws the outline of radius r around the cursor.
func (e *Engine) Circle(r int) error {
	return e.fail("circle", e.drawShape(grid.Circle, r))
}

// CircleFill draws the filled disc of radius r around the cursor.
func (e *Engine) CircleFill(r int) error {
	return e.fail("circle fill", e.drawShape(grid.CircleFill, r))
}

func (e *Engine) drawShape(shape func(cx, cy, r int) [][2]int, r int) error {
	if e.draw == DrawNone || e.grabbing || e.selecting {
		return nil
	}
	cx, cy, cz := e.cursor.Pos.Ints()
	pts := shape(cx, cy, r)
	cells := make([]grid.Vec3, len(pts))
	for i, p := range pts {
		cells[i] = grid.V(float64(p[0]), float64(p[1]), float64(cz))
	}
	return e.drawCells(e.draw, cells)
}

// Forward moves n cells along the heading, drawing the path when the pen is
// down.
func (e *Engine) Forward(n float64) error {
	target := e.cursor.Pos.Add(grid.V(0, n, 0).RotateZ(e.cursor.Rot)).Round()
	if e.draw == DrawNone || !finite(n) {
		return e.fail("forward", e.moveCursor(target))
	}
	x, y, _ := target.Ints()
	return e.Line(x, y)
}

func (e *Engine) Backward(n float64) error {
	return e.Forward(-n)
}

// Left turns counter-clockwise.
func (e *Engine) Left(deg float64) error {
	return e.Rotate(deg)
}

// Right turns clockwise.
func (e *Engine) Right(deg float64) error {
	return e.Rotate(-deg)
}

// Goto jumps to (x, y) keeping the current height. Nothing is drawn.
func (e *Engine) Goto(x, y float64) error {
	return e.fail("goto", e.moveCursor(grid.V(x, y, e.cursor.Pos.Z)))
}

func (e *Engine) SetZ(z float64) error {
	return e.fail("set z", e.moveCursor(grid.V(e.cursor.Pos.X, e.cursor.Pos.Y, z)))
}

func (e *Engine) SetHeading(deg float64) error {
	return e.fail("set heading", e.turn(deg-e.cursor.Rot))
}

// Home returns to the origin facing +Y.
func (e *Engine) Home() error {
	if err := e.moveCursor(grid.Vec3{}); err != nil {
		return e.fail("home", err)
	}
	return e.fail("home", e.turn(-e.cursor.Rot))
}

func (e *Engine) PenDown()     { e.draw = DrawPaint }
func (e *Engine) PenUp()       { e.draw = DrawNone }
func (e *Engine) IsDown() bool { return e.draw != DrawNone }

// Dot paints the cursor cell regardless of the pen.
func (e *Engine) Dot() error {
	return e.Paint()
}

// Align snaps every tile on the active layer to the nearest cell and quarter
// turn.
func (e *Engine) Align() error {
	defer e.index.Invalidate()
	n := 0
	for _, t := range e.Tiles() {
		pos := t.Pos().Round()
		rot := math.Round(t.Rot()/90) * 90
		if pos == t.Pos() && rot == t.Rot() {
			continue
		}
		if err := e.host.MoveTile(t, pos, rot); err != nil {
			return e.fail("align", err)
		}
		n++
	}
	e.log.Debug("aligned tiles", "moved", n)
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
