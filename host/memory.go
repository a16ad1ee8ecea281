package host

import (
	"fmt"
	"log/slog"

	"github.com/milk9111/testudo/grid"
)

// MemTile is the tile handle handed out by Memory.
type MemTile struct {
	id    int
	spec  TileSpec
	alive bool
}

func (t *MemTile) ID() int         { return t.id }
func (t *MemTile) Pos() grid.Vec3  { return t.spec.Pos }
func (t *MemTile) Rot() float64    { return t.spec.Rot }
func (t *MemTile) Group() string   { return t.spec.Group }
func (t *MemTile) Module() string  { return t.spec.Module }
func (t *MemTile) Tileset() string { return t.spec.Tileset }
func (t *MemTile) Layer() int      { return t.spec.Layer }
func (t *MemTile) Spec() TileSpec  { return t.spec }
func (t *MemTile) Alive() bool     { return t.alive }

func (t *MemTile) String() string {
	return fmt.Sprintf("%s#%d@%v", t.spec.Module, t.id, t.spec.Pos)
}

type memRoot struct {
	tiles   []*MemTile
	anchors map[string]string
}

// Memory is a complete Host that keeps its scene in process. Like the engine
// it is not safe for concurrent use.
type Memory struct {
	groups []GroupInfo
	roots  map[string]*memRoot
	nextID int
	log    *slog.Logger

	Warnings []string
	Errors   []string
}

func NewMemory(groups ...GroupInfo) *Memory {
	return &Memory{
		groups: groups,
		roots:  map[string]*memRoot{},
		log:    slog.Default().With("component", "host"),
	}
}

// AddGroup registers or replaces a group.
func (m *Memory) AddGroup(g GroupInfo) {
	for i := range m.groups {
		if m.groups[i].Name == g.Name {
			m.groups[i] = g
			return
		}
	}
	m.groups = append(m.groups, g)
}

func (m *Memory) Groups() []GroupInfo {
	out := make([]GroupInfo, len(m.groups))
	copy(out, m.groups)
	return out
}

func (m *Memory) rootFor(name string) *memRoot {
	r, ok := m.roots[name]
	if !ok {
		r = &memRoot{anchors: map[string]string{}}
		m.roots[name] = r
	}
	return r
}

func (m *Memory) CreateTile(spec TileSpec) (Tile, error) {
	if spec.Module == "" {
		return nil, fmt.Errorf("host: create tile: empty module for group %q", spec.Group)
	}
	m.nextID++
	t := &MemTile{id: m.nextID, spec: spec, alive: true}
	r := m.rootFor(spec.Root)
	r.tiles = append(r.tiles, t)
	return t, nil
}

func (m *Memory) DestroyTile(t Tile) error {
	mt, ok := t.(*MemTile)
	if !ok {
		return fmt.Errorf("host: destroy tile: foreign handle %T", t)
	}
	if !mt.alive {
		return ErrStaleTile
	}
	r := m.rootFor(mt.spec.Root)
	for i, cur := range r.tiles {
		if cur == mt {
			r.tiles = append(r.tiles[:i], r.tiles[i+1:]...)
			break
		}
	}
	mt.alive = false
	return nil
}

func (m *Memory) MoveTile(t Tile, pos grid.Vec3, rot float64) error {
	mt, ok := t.(*MemTile)
	if !ok {
		return fmt.Errorf("host: move tile: foreign handle %T", t)
	}
	if !mt.alive {
		return ErrStaleTile
	}
	mt.spec.Pos, mt.spec.Rot = pos, rot
	return nil
}

func (m *Memory) Tiles(root string) []Tile {
	r, ok := m.roots[root]
	if !ok {
		return nil
	}
	out := make([]Tile, len(r.tiles))
	for i, t := range r.tiles {
		out[i] = t
	}
	return out
}

func (m *Memory) Anchor(root, key string) (string, bool) {
	r, ok := m.roots[root]
	if !ok {
		return "", false
	}
	v, ok := r.anchors[key]
	return v, ok
}

func (m *Memory) SetAnchor(root, key, value string) {
	m.rootFor(root).anchors[key] = value
}

func (m *Memory) Warn(msg string) {
	m.Warnings = append(m.Warnings, msg)
	m.log.Warn(msg)
}

func (m *Memory) Error(msg string) {
	m.Errors = append(m.Errors, msg)
	m.log.Error(msg)
}
