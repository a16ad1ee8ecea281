// Package rules parses auto-tile rule tables and resolves a neighbour
// occupancy mask to the tile variant that belongs in a cell.
//
// A table is line oriented:
//
//	# comment
//	000001 wall_end          # bitmask, then candidate tiles
//	default wall_pillar      # used when no bitmask matches
//
// Bit order is +X, -X, +Y, -Y, +Z, -Z from the lowest bit up, written most
// significant bit first.
package rules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Mask is the occupancy of the six face neighbours of a cell.
type Mask uint8

const (
	PosX Mask = 1 << iota
	NegX
	PosY
	NegY
	Up
	Down
)

// MaxMask is the highest valid mask.
const MaxMask Mask = 0b111111

const (
	horizontalBits Mask = 0b001111
	verticalBits   Mask = 0b110000
)

// rotations maps an authored horizontal pattern to its quarter turn variants.
var rotations = map[Mask][3]Mask{
	1: {2, 4, 8},
	3: {6, 12, 9},
	5: {10, 5, 10},
	7: {14, 13, 11},
}

// ErrDisabled marks a tileset whose rules failed to load.
var ErrDisabled = errors.New("rules: tileset disabled")

// Rule is one row of a table.
type Rule struct {
	Tiles []string
	// Rot is added to the placement heading, in degrees.
	Rot float64
}

type Ruleset struct {
	rules   map[Mask]*Rule
	Default *Rule
}

// ParseError reports a malformed table line.
type ParseError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("rules: %s:%d: %v: %q", e.File, e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("rules: line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	errBadMask   = errors.New("invalid bitmask")
	errMaskRange = errors.New("bitmask out of range")
)

type authored struct {
	mask Mask
	rule *Rule
}

// Parse reads a rule table and expands every authored horizontal pattern
// into its three rotated variants. Rows are applied in increasing mask order,
// so an authored row always wins over a variant derived from a lower mask.
func Parse(r io.Reader) (*Ruleset, error) {
	rs := &Ruleset{rules: map[Mask]*Rule{}}
	var rows []authored

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		line := raw
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		head, tiles := fields[0], fields[1:]

		if head == "default" {
			rs.Default = &Rule{Tiles: tiles}
			continue
		}
		n, err := strconv.ParseUint(head, 2, 64)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: strings.TrimSpace(raw), Err: errBadMask}
		}
		if n > uint64(MaxMask) {
			return nil, &ParseError{Line: lineNo, Text: strings.TrimSpace(raw), Err: errMaskRange}
		}
		rows = append(rows, authored{mask: Mask(n), rule: &Rule{Tiles: tiles}})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("rules: read: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].mask < rows[j].mask
	})
	for _, row := range rows {
		rs.rules[row.mask] = row.rule
		h := row.mask & horizontalBits
		d := row.mask & verticalBits
		variants, ok := rotations[h]
		if !ok {
			continue
		}
		for i, v := range variants {
			rs.rules[d|v] = &Rule{Tiles: row.rule.Tiles, Rot: float64(i+1) * -90}
		}
	}
	return rs, nil
}

func ParseString(s string) (*Ruleset, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile parses the table at path. Parse errors carry the file name.
func ParseFile(path string) (*Ruleset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rules: open %s: %w", path, err)
	}
	defer f.Close()

	rs, err := Parse(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = path
			return nil, pe
		}
		return nil, fmt.Errorf("rules: %s: %w", path, err)
	}
	return rs, nil
}

// Get returns the rule for mask, the default rule when there is no exact
// match, or nil.
func (rs *Ruleset) Get(mask Mask) *Rule {
	if rs == nil {
		return nil
	}
	if r, ok := rs.rules[mask]; ok {
		return r
	}
	return rs.Default
}

// Exact returns the rule stored for mask without falling back to default.
func (rs *Ruleset) Exact(mask Mask) (*Rule, bool) {
	if rs == nil {
		return nil, false
	}
	r, ok := rs.rules[mask]
	return r, ok
}

// Masks lists the masks that have a rule, ascending.
func (rs *Ruleset) Masks() []Mask {
	if rs == nil {
		return nil
	}
	out := make([]Mask, 0, len(rs.rules))
	for m := range rs.rules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate lists every candidate tile the tileset does not provide.
func (rs *Ruleset) Validate(has func(tile string) bool) []string {
	if rs == nil {
		return nil
	}
	seen := map[string]bool{}
	var missing []string
	check := func(r *Rule) {
		if r == nil {
			return
		}
		for _, t := range r.Tiles {
			if seen[t] {
				continue
			}
			seen[t] = true
			if !has(t) {
				missing = append(missing, t)
			}
		}
	}
	for _, m := range rs.Masks() {
		check(rs.rules[m])
	}
	check(rs.Default)
	sort.Strings(missing)
	return missing
}

// String renders a mask the way tables write it.
func (m Mask) String() string {
	return fmt.Sprintf("%06b", uint8(m))
}
