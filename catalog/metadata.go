package catalog

import (
	"fmt"
	"image/color"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/testudo/host"
)

// Metadata is the per-session configuration file.
type Metadata struct {
	Root       string               `yaml:"root"`
	TileSizeZ  float64              `yaml:"tile_size_z"`
	SelectMode string               `yaml:"select_mode"`
	Seed       int64                `yaml:"seed"`
	Layer      int                  `yaml:"layer"`
	Weights    map[string]float64   `yaml:"weights"`
	Groups     map[string]GroupSpec `yaml:"groups"`

	// BaseDir resolves relative rules paths. It is the directory the
	// metadata was loaded from.
	BaseDir string `yaml:"-"`
}

// GroupSpec overrides or declares a module group. Tiles is only needed when
// the host does not already know the group.
type GroupSpec struct {
	Tiles []string   `yaml:"tiles"`
	Thin  bool       `yaml:"thin"`
	Rules string     `yaml:"rules"`
	Color *YAMLColor `yaml:"color"`
}

const DefaultMetadata = "dungeon.yaml"

func LoadMetadata(filename string) (Metadata, error) {
	data, err := Load(filename)
	if err != nil {
		return Metadata{}, fmt.Errorf("catalog: load %s: %w", filename, err)
	}
	meta, err := ParseMetadata(data)
	if err != nil {
		return Metadata{}, fmt.Errorf("catalog: unmarshal %s: %w", filename, err)
	}
	meta.BaseDir = filepath.Dir(filename)
	return meta, nil
}

func ParseMetadata(data []byte) (Metadata, error) {
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return Metadata{}, err
	}
	if meta.Root == "" {
		meta.Root = "root"
	}
	if meta.TileSizeZ == 0 {
		meta.TileSizeZ = 1
	}
	if meta.Layer < 0 || meta.Layer >= MaxLayers {
		return Metadata{}, fmt.Errorf("layer %d out of range 0..%d", meta.Layer, MaxLayers-1)
	}
	return meta, nil
}

// HostGroups lists the groups declared with tiles, sorted by name. Hosts with
// no asset catalog of their own are seeded from it.
func (m Metadata) HostGroups() []host.GroupInfo {
	names := make([]string, 0, len(m.Groups))
	for name, g := range m.Groups {
		if len(g.Tiles) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]host.GroupInfo, 0, len(names))
	for _, name := range names {
		g := m.Groups[name]
		out = append(out, host.GroupInfo{
			Name:  name,
			Tiles: append([]string(nil), g.Tiles...),
			Thin:  g.Thin,
		})
	}
	return out
}

func (m Metadata) rulesPath(rel string) string {
	if rel == "" || filepath.IsAbs(rel) || m.BaseDir == "" {
		return rel
	}
	return filepath.Join(m.BaseDir, rel)
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
