package main

import (
	ebuiinput "github.com/ebitenui/ebitenui/input"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// input is the keyboard and mouse state the editor reads each frame.
type input interface {
	Pressed(k ebiten.Key) bool
	JustPressed(k ebiten.Key) bool
	JustReleased(k ebiten.Key) bool
	// Click reports a left click on the grid, not on the panel.
	Click() (x, y int, ok bool)
}

type ebitenInput struct{}

func (ebitenInput) Pressed(k ebiten.Key) bool      { return ebiten.IsKeyPressed(k) }
func (ebitenInput) JustPressed(k ebiten.Key) bool  { return inpututil.IsKeyJustPressed(k) }
func (ebitenInput) JustReleased(k ebiten.Key) bool { return inpututil.IsKeyJustReleased(k) }

func (ebitenInput) Click() (int, int, bool) {
	if ebuiinput.UIHovered || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return 0, 0, false
	}
	x, y := ebiten.CursorPosition()
	return x, y, true
}
