// Package host defines what the placement engine needs from the scene that
// owns the tiles, plus an in-memory scene used by the tools and tests.
package host

import (
	"errors"

	"github.com/milk9111/testudo/grid"
)

// ErrStaleTile is returned when a handle refers to a tile that has already
// been destroyed.
var ErrStaleTile = errors.New("host: stale tile handle")

// Tile is a handle to a placed module instance. Handles are only valid for
// the duration of one engine operation.
type Tile interface {
	Pos() grid.Vec3
	Rot() float64
	Group() string
	Module() string
	// Tileset is set for tiles placed by the auto-tiler.
	Tileset() string
	Layer() int
}

type TileSpec struct {
	Root    string
	Group   string
	Module  string
	Tileset string
	Pos     grid.Vec3
	Rot     float64
	Layer   int
}

// GroupInfo describes a module group the scene can instantiate.
type GroupInfo struct {
	Name  string
	Tiles []string
	Thin  bool
}

type Host interface {
	CreateTile(spec TileSpec) (Tile, error)
	DestroyTile(t Tile) error
	MoveTile(t Tile, pos grid.Vec3, rot float64) error
	Tiles(root string) []Tile
	Groups() []GroupInfo

	Anchor(root, key string) (string, bool)
	SetAnchor(root, key, value string)

	Warn(msg string)
	Error(msg string)
}
