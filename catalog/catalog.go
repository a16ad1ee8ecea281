// Package catalog builds the session's module groups and tilesets from the
// host's asset list and the metadata file.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sort"
	"strings"

	"github.com/milk9111/testudo/host"
	"github.com/milk9111/testudo/rules"
)

// MaxLayers is the number of tile layers a root can hold.
const MaxLayers = 20

// Reporter receives user facing diagnostics. host.Host satisfies it.
type Reporter interface {
	Warn(msg string)
	Error(msg string)
}

// Group is a set of interchangeable module variants.
type Group struct {
	Name   string
	Tiles  []string
	Active int
	Thin   bool
	Rules  string
	Color  color.Color
}

// ActiveTile is the variant stamped in manual mode.
func (g *Group) ActiveTile() string {
	if g == nil || len(g.Tiles) == 0 {
		return ""
	}
	if g.Active < 0 || g.Active >= len(g.Tiles) {
		return g.Tiles[0]
	}
	return g.Tiles[g.Active]
}

// IsTileset reports whether the group is driven by a rules table.
func (g *Group) IsTileset() bool {
	return g != nil && g.Rules != ""
}

func (g *Group) Has(tile string) bool {
	for _, t := range g.Tiles {
		if t == tile {
			return true
		}
	}
	return false
}

// Tileset pairs a group with its parsed rules. Err is set when the rules
// could not be loaded; the tileset is then disabled.
type Tileset struct {
	Group *Group
	Rules *rules.Ruleset
	Err   error
}

func (t *Tileset) Enabled() bool {
	return t != nil && t.Err == nil && t.Rules != nil
}

type Catalog struct {
	meta     Metadata
	groups   map[string]*Group
	order    []string
	tilesets map[string]*Tileset
	weights  map[string]float64
	report   Reporter
	log      *slog.Logger
}

// New builds a catalog from the host groups and metadata. Configuration
// problems are reported and degrade the affected group; New itself does not
// fail.
func New(h host.Host, meta Metadata) *Catalog {
	c := &Catalog{
		meta:   meta,
		report: h,
		log:    slog.Default().With("component", "catalog"),
	}
	c.Refresh(h)
	return c
}

// Refresh rediscovers groups and reparses every rules table. Active variant
// selections survive when the variant still exists.
func (c *Catalog) Refresh(h host.Host) {
	prevActive := map[string]string{}
	for name, g := range c.groups {
		prevActive[name] = g.ActiveTile()
	}

	c.groups = map[string]*Group{}
	c.order = nil
	for _, info := range h.Groups() {
		g := &Group{
			Name:  info.Name,
			Tiles: append([]string(nil), info.Tiles...),
			Thin:  info.Thin,
		}
		if prev, ok := prevActive[g.Name]; ok {
			for i, t := range g.Tiles {
				if t == prev {
					g.Active = i
				}
			}
		}
		c.groups[g.Name] = g
		c.order = append(c.order, g.Name)
	}
	c.applyGroupSpecs()
	c.loadWeights()
	c.loadTilesets()
	c.log.Debug("refreshed catalog", "groups", len(c.order), "tilesets", len(c.tilesets))
}

func (c *Catalog) applyGroupSpecs() {
	for _, name := range sortedKeys(c.meta.Groups) {
		spec := c.meta.Groups[name]
		g, ok := c.groups[name]
		if !ok {
			c.report.Warn(fmt.Sprintf("custom groups: %s not a module group", name))
			continue
		}
		if spec.Thin {
			g.Thin = true
		}
		g.Rules = spec.Rules
		if spec.Color != nil {
			g.Color = spec.Color.Color
		}
	}
}

func (c *Catalog) loadWeights() {
	c.weights = map[string]float64{}
	for _, tile := range sortedKeys(c.meta.Weights) {
		if _, ok := c.GroupOf(tile); !ok {
			c.report.Warn(fmt.Sprintf("invalid weight, module not found %q", tile))
			continue
		}
		c.weights[tile] = c.meta.Weights[tile]
	}
}

func (c *Catalog) loadTilesets() {
	c.tilesets = map[string]*Tileset{}
	for _, name := range c.order {
		g := c.groups[name]
		if !g.IsTileset() {
			continue
		}
		ts := &Tileset{Group: g}
		ts.Rules, ts.Err = c.parseRules(g)
		if ts.Err != nil {
			c.report.Error(ts.Err.Error())
			ts.Rules = nil
		}
		c.tilesets[name] = ts
	}
}

func (c *Catalog) parseRules(g *Group) (*rules.Ruleset, error) {
	path := c.meta.rulesPath(g.Rules)
	data, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("tileset %q: rules %s: %w", g.Name, path, err)
	}
	rs, err := rules.Parse(bytes.NewReader(data))
	if err != nil {
		var pe *rules.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, fmt.Errorf("tileset %q: %w", g.Name, err)
	}
	if missing := rs.Validate(g.Has); len(missing) > 0 {
		for _, tile := range missing {
			c.report.Warn(fmt.Sprintf("tile %q not found in tileset %q", tile, g.Name))
		}
		return nil, fmt.Errorf("tileset %q: invalid rules, missing %s", g.Name, strings.Join(missing, ", "))
	}
	return rs, nil
}

// Group looks a group up by name.
func (c *Catalog) Group(name string) (*Group, bool) {
	g, ok := c.groups[name]
	return g, ok
}

// GroupOf finds the group providing a module variant.
func (c *Catalog) GroupOf(tile string) (*Group, bool) {
	for _, name := range c.order {
		if g := c.groups[name]; g.Has(tile) {
			return g, true
		}
	}
	return nil, false
}

// Names lists groups in host order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// TilesetNames lists rule driven groups in host order, enabled or not.
func (c *Catalog) TilesetNames() []string {
	var out []string
	for _, name := range c.order {
		if _, ok := c.tilesets[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func (c *Catalog) Tileset(name string) (*Tileset, bool) {
	ts, ok := c.tilesets[name]
	return ts, ok
}

// Ruleset returns the rules for an enabled tileset. Disabled tilesets return
// an error wrapping rules.ErrDisabled.
func (c *Catalog) Ruleset(name string) (*rules.Ruleset, error) {
	ts, ok := c.tilesets[name]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown tileset %q", name)
	}
	if !ts.Enabled() {
		return nil, fmt.Errorf("catalog: tileset %q: %w", name, rules.ErrDisabled)
	}
	return ts.Rules, nil
}

// RulesFiles lists the resolved rules path of every tileset.
func (c *Catalog) RulesFiles() []string {
	var out []string
	for _, name := range c.TilesetNames() {
		out = append(out, c.meta.rulesPath(c.groups[name].Rules))
	}
	return out
}

func (c *Catalog) Weights() map[string]float64 {
	out := make(map[string]float64, len(c.weights))
	for k, v := range c.weights {
		out[k] = v
	}
	return out
}

func (c *Catalog) Metadata() Metadata {
	return c.meta
}

// SetMetadata swaps the metadata used by the next Refresh.
func (c *Catalog) SetMetadata(meta Metadata) {
	c.meta = meta
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
