// Package scene saves and restores the tiles and anchors of one root as a
// JSON document.
package scene

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/milk9111/testudo/grid"
	"github.com/milk9111/testudo/host"
)

//go:embed demos/*.json
var DemosFS embed.FS

// Version is written to every saved scene.
const Version = 1

type Scene struct {
	Version   int               `json:"version"`
	Root      string            `json:"root"`
	TileSizeZ float64           `json:"tile_size_z"`
	Tiles     []Tile            `json:"tiles"`
	Anchors   map[string]string `json:"anchors,omitempty"`
}

// Tile positions are in world units: Z is scaled by the scene's tile height.
type Tile struct {
	Group   string  `json:"group"`
	Module  string  `json:"module"`
	Tileset string  `json:"tileset,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Rot     float64 `json:"rot"`
	Layer   int     `json:"layer,omitempty"`
}

// Capture copies the tiles of root out of h along with the named anchors.
func Capture(h host.Host, root string, tileSizeZ float64, anchors ...string) *Scene {
	s := &Scene{
		Version:   Version,
		Root:      root,
		TileSizeZ: tileSizeZ,
	}
	for _, t := range h.Tiles(root) {
		w := grid.ToWorld(t.Pos(), tileSizeZ)
		s.Tiles = append(s.Tiles, Tile{
			Group:   t.Group(),
			Module:  t.Module(),
			Tileset: t.Tileset(),
			X:       w.X,
			Y:       w.Y,
			Z:       w.Z,
			Rot:     t.Rot(),
			Layer:   t.Layer(),
		})
	}
	sort.SliceStable(s.Tiles, func(i, j int) bool {
		a, b := s.Tiles[i], s.Tiles[j]
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	for _, key := range anchors {
		if v, ok := h.Anchor(root, key); ok {
			if s.Anchors == nil {
				s.Anchors = map[string]string{}
			}
			s.Anchors[key] = v
		}
	}
	return s
}

// Restore creates every tile of s in h and sets its anchors. Tiles already in
// the root are left alone.
func (s *Scene) Restore(h host.Host) error {
	for i, t := range s.Tiles {
		pos := grid.FromWorld(grid.V(t.X, t.Y, t.Z), s.TileSizeZ)
		_, err := h.CreateTile(host.TileSpec{
			Root:    s.Root,
			Group:   t.Group,
			Module:  t.Module,
			Tileset: t.Tileset,
			Pos:     pos,
			Rot:     t.Rot,
			Layer:   t.Layer,
		})
		if err != nil {
			return fmt.Errorf("scene: restore tile %d: %w", i, err)
		}
	}
	for k, v := range s.Anchors {
		h.SetAnchor(s.Root, k, v)
	}
	return nil
}

func Save(w io.Writer, s *Scene) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("scene: encode: %w", err)
	}
	return nil
}

func Load(r io.Reader) (*Scene, error) {
	var s Scene
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	if s.Version > Version {
		return nil, fmt.Errorf("scene: version %d is newer than %d", s.Version, Version)
	}
	if s.Root == "" {
		s.Root = "root"
	}
	if s.TileSizeZ == 0 {
		s.TileSizeZ = 1
	}
	return &s, nil
}

func SaveFile(path string, s *Scene) error {
	if path == "" {
		return fmt.Errorf("scene: empty save path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads a scene from disk, falling back to the embedded demos.
func LoadFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		return Load(f)
	}
	data, ferr := fs.ReadFile(DemosFS, "demos/"+filepath.Base(path))
	if ferr != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	return Load(bytes.NewReader(data))
}
