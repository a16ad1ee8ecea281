package main

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/testudo/engine"
	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/host"
)

var hudFace = ebtext.NewGoXFace(basicfont.Face7x13)

// fallbackColors tint groups without a color in the metadata.
var fallbackColors = []color.RGBA{
	colornames.Steelblue,
	colornames.Darkkhaki,
	colornames.Indianred,
	colornames.Mediumseagreen,
	colornames.Plum,
	colornames.Goldenrod,
}

func (g *editor) Draw(screen *ebiten.Image) {
	if g.gridPixel == nil {
		g.gridPixel = ebiten.NewImage(1, 1)
		g.gridPixel.Fill(color.White)
	}
	screen.Fill(colornames.Black)

	cur := g.e.Cursor()
	g.drawGrid(screen, cur.Pos)

	for _, t := range g.e.Tiles() {
		p := t.Pos()
		switch p.Z {
		case cur.Pos.Z - 1:
			g.drawTile(screen, t, 0.25)
		case cur.Pos.Z:
			g.drawTile(screen, t, 0.85)
		}
	}

	if box, ok := g.e.SelectionBounds(); ok {
		x0, y0 := g.cellToScreen(box.Min.X, box.Max.Y)
		x1, y1 := g.cellToScreen(box.Max.X, box.Min.Y)
		half := float64(g.cellSize) / 2
		g.drawRect(screen, x0-half, y0-half, x1+half, y1+half, colornames.Yellow)
	}
	g.drawCursor(screen, cur)
	g.drawHUD(screen, cur)
	if g.panel != nil {
		g.panel.ui.Draw(screen)
	}
}

func (g *editor) cellToScreen(x, y float64) (float64, float64) {
	c := g.e.Cursor().Pos
	cs := float64(g.cellSize)
	return float64(g.width)/2 + (x-c.X)*cs, float64(g.height)/2 - (y-c.Y)*cs
}

func (g *editor) drawGrid(screen *ebiten.Image, c grid.Vec3) {
	cs := float64(g.cellSize)
	lineColor := color.RGBA{40, 40, 48, 255}
	ox, oy := g.cellToScreen(c.X, c.Y)
	for x := ox - cs/2; x > 0; x -= cs {
		ebitenutil.DrawLine(screen, x, 0, x, float64(g.height), lineColor)
	}
	for x := ox + cs/2; x < float64(g.width); x += cs {
		ebitenutil.DrawLine(screen, x, 0, x, float64(g.height), lineColor)
	}
	for y := oy - cs/2; y > 0; y -= cs {
		ebitenutil.DrawLine(screen, 0, y, float64(g.width), y, lineColor)
	}
	for y := oy + cs/2; y < float64(g.height); y += cs {
		ebitenutil.DrawLine(screen, 0, y, float64(g.width), y, lineColor)
	}
}

// drawTile fills the tile's cell. Thin tiles are drawn as a bar along the
// edge they face.
func (g *editor) drawTile(screen *ebiten.Image, t host.Tile, alpha float32) {
	p := t.Pos()
	sx, sy := g.cellToScreen(p.X, p.Y)
	cs := float64(g.cellSize)
	x, y, w, h := sx-cs/2+1, sy-cs/2+1, cs-2, cs-2

	thin := false
	if grp, ok := g.e.Catalog().Group(t.Group()); ok {
		thin = grp.Thin
	}
	if thin {
		bar := max(cs/6, 2)
		switch grid.NormRot(t.Rot()) {
		case 90:
			w = bar
		case 180:
			y, h = sy+cs/2-1-bar, bar
		case 270:
			x, w = sx+cs/2-1-bar, bar
		default:
			h = bar
		}
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(g.groupColor(t.Group()))
	op.ColorScale.ScaleAlpha(alpha)
	screen.DrawImage(g.gridPixel, op)
}

func (g *editor) groupColor(name string) color.Color {
	if grp, ok := g.e.Catalog().Group(name); ok && grp.Color != nil {
		return grp.Color
	}
	for i, n := range g.e.Catalog().Names() {
		if n == name {
			return fallbackColors[i%len(fallbackColors)]
		}
	}
	return colornames.Gray
}

func (g *editor) drawRect(screen *ebiten.Image, x0, y0, x1, y1 float64, c color.Color) {
	ebitenutil.DrawLine(screen, x0, y0, x1, y0, c)
	ebitenutil.DrawLine(screen, x1, y0, x1, y1, c)
	ebitenutil.DrawLine(screen, x1, y1, x0, y1, c)
	ebitenutil.DrawLine(screen, x0, y1, x0, y0, c)
}

// drawCursor outlines the cursor cell and points along its heading.
func (g *editor) drawCursor(screen *ebiten.Image, cur engine.Cursor) {
	sx, sy := g.cellToScreen(cur.Pos.X, cur.Pos.Y)
	half := float64(g.cellSize) / 2
	c := color.Color(colornames.White)
	if g.e.Grabbing() {
		c = colornames.Orange
	}
	g.drawRect(screen, sx-half, sy-half, sx+half, sy+half, c)

	dir := grid.V(0, half, 0).RotateZ(cur.Rot)
	ebitenutil.DrawLine(screen, sx, sy, sx+dir.X, sy-dir.Y, colornames.Crimson)
}

func (g *editor) drawHUD(screen *ebiten.Image, cur engine.Cursor) {
	tile := cur.Tile
	if grp, ok := g.e.Catalog().Group(tile); ok && !grp.IsTileset() {
		tile = fmt.Sprintf("%s (%s)", tile, grp.ActiveTile())
	}
	if tile == "" {
		tile = "None"
	}
	lines := []string{
		fmt.Sprintf("pos %v  rot %d  layer %d  brush %d", cur.Pos, grid.NormRot(cur.Rot), g.e.Layer(), g.e.Brush()),
		fmt.Sprintf("mode %s  tile %s  draw %s", g.e.Mode(), tile, g.e.Draw()),
		fmt.Sprintf("tiles %d", len(g.e.Tiles())),
	}
	switch {
	case g.e.Grabbing():
		lines = append(lines, "grabbing: move or rotate, G to drop, Esc to cancel")
	case g.e.Selecting():
		lines = append(lines, "selecting: move to the far corner, then F to fill or Del to clear")
	}
	if g.status != "" && time.Now().Before(g.statusUntil) {
		lines = append(lines, g.status)
	}

	op := &ebtext.DrawOptions{}
	x := 8.0
	if g.panel != nil {
		x += panelWidth
	}
	op.GeoM.Translate(x, 8)
	op.LineSpacing = 16
	op.ColorScale.ScaleWithColor(colornames.Lightgray)
	ebtext.Draw(screen, strings.Join(lines, "\n"), hudFace, op)
}
