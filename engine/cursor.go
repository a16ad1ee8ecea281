package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/milk9111/testudo/grid"
)

// Cursor is the editing position, heading and active group.
type Cursor struct {
	Pos  grid.Vec3
	Rot  float64
	Tile string
}

// String serialises the cursor as "tile,x,y,z,rot".
func (c Cursor) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return strings.Join([]string{c.Tile, f(c.Pos.X), f(c.Pos.Y), f(c.Pos.Z), f(c.Rot)}, ",")
}

// ParseCursor reads a cursor written by Cursor.String. Anything before the
// last four fields is the tile name; "None" means no tile.
func ParseCursor(s string) (Cursor, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 5 {
		return Cursor{}, fmt.Errorf("cursor %q: expected 5 fields, got %d", s, len(parts))
	}
	n := len(parts) - 4
	var vals [4]float64
	for i, p := range parts[n:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Cursor{}, fmt.Errorf("cursor %q: %w", s, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Cursor{}, fmt.Errorf("cursor %q: field %d is not finite", s, n+i+1)
		}
		vals[i] = v
	}
	tile := strings.TrimSpace(strings.Join(parts[:n], ","))
	if tile == "None" {
		tile = ""
	}
	return Cursor{
		Pos:  grid.V(vals[0], vals[1], vals[2]),
		Rot:  vals[3],
		Tile: tile,
	}, nil
}
