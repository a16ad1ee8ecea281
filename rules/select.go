package rules

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/milk9111/testudo/grid"
)

// SelectMode picks one candidate out of a rule's tile list.
type SelectMode int

const (
	SelectRandom SelectMode = iota
	SelectFirst
	SelectDither
	SelectWeighted
)

func (m SelectMode) String() string {
	switch m {
	case SelectRandom:
		return "random"
	case SelectFirst:
		return "first"
	case SelectDither:
		return "dither"
	case SelectWeighted:
		return "weighted"
	default:
		return "unknown"
	}
}

func ParseSelectMode(s string) (SelectMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "random":
		return SelectRandom, nil
	case "first":
		return SelectFirst, nil
	case "dither":
		return SelectDither, nil
	case "weighted":
		return SelectWeighted, nil
	}
	return SelectRandom, fmt.Errorf("rules: unknown select mode %q", s)
}

// Chooser applies a SelectMode. Weights are per tile name; tiles without a
// weight count as 1.
type Chooser struct {
	Mode    SelectMode
	Rand    *rand.Rand
	Weights map[string]float64
}

func NewChooser(mode SelectMode, seed int64) *Chooser {
	return &Chooser{Mode: mode, Rand: rand.New(rand.NewSource(seed))}
}

// Choose returns one of tiles, or "" when tiles is empty.
func (c *Chooser) Choose(tiles []string, pos grid.Vec3) string {
	if len(tiles) == 0 {
		return ""
	}
	if len(tiles) == 1 {
		return tiles[0]
	}
	switch c.Mode {
	case SelectFirst:
		return tiles[0]
	case SelectDither:
		x, y, z := pos.Ints()
		i := (x + y + z) % len(tiles)
		if i < 0 {
			i += len(tiles)
		}
		return tiles[i]
	case SelectWeighted:
		return c.weighted(tiles)
	default:
		return tiles[c.intn(len(tiles))]
	}
}

func (c *Chooser) weighted(tiles []string) string {
	total := 0.0
	for _, t := range tiles {
		total += c.weight(t)
	}
	if total <= 0 {
		return tiles[0]
	}
	r := c.float() * total
	upto := 0.0
	for _, t := range tiles {
		w := c.weight(t)
		if w <= 0 {
			continue
		}
		if upto+w > r {
			return t
		}
		upto += w
	}
	// float rounding can leave r == total
	for i := len(tiles) - 1; i >= 0; i-- {
		if c.weight(tiles[i]) > 0 {
			return tiles[i]
		}
	}
	return tiles[0]
}

func (c *Chooser) weight(tile string) float64 {
	w, ok := c.Weights[tile]
	if !ok {
		return 1
	}
	return math.Max(w, 0)
}

func (c *Chooser) intn(n int) int {
	if c.Rand == nil {
		return rand.Intn(n)
	}
	return c.Rand.Intn(n)
}

func (c *Chooser) float() float64 {
	if c.Rand == nil {
		return rand.Float64()
	}
	return c.Rand.Float64()
}
