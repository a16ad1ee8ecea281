// Package script drives an engine from tengo scripts. Scripts see a single
// global, t3d, holding the turtle and editing commands:
//
//	t3d.tile("floor")
//	t3d.down()
//	for i := 0; i < 4; i++ {
//		t3d.forward(5)
//		t3d.left(90)
//	}
package script

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/testudo/engine"
	"github.com/milk9111/testudo/grid"
)

type Runner struct {
	engine *engine.Engine
	log    *slog.Logger
}

func NewRunner(e *engine.Engine, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{engine: e, log: log.With("component", "script")}
}

// Run compiles and runs src. The compiled script is returned so callers can
// read its globals. Engine errors abort the script.
func (r *Runner) Run(ctx context.Context, src []byte) (*tengo.Compiled, error) {
	s := tengo.NewScript(src)
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := s.Add("t3d", r.api()); err != nil {
		return nil, err
	}
	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile: %w", err)
	}
	if err := compiled.RunContext(ctx); err != nil {
		return nil, fmt.Errorf("script: run: %w", err)
	}
	return compiled, nil
}

func (r *Runner) RunFile(ctx context.Context, path string) (*tengo.Compiled, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: read %s: %w", path, err)
	}
	r.log.Debug("running script", "path", path)
	return r.Run(ctx, src)
}

func (r *Runner) api() *tengo.ImmutableMap {
	e := r.engine
	values := map[string]tengo.Object{}

	fn := func(name string, f func(args ...tengo.Object) (tengo.Object, error)) {
		values[name] = &tengo.UserFunction{Name: name, Value: f}
	}
	// floats registers a command taking n numeric arguments.
	floats := func(name string, n int, f func(v []float64) error) {
		fn(name, func(args ...tengo.Object) (tengo.Object, error) {
			v, err := numbers(name, args, n)
			if err != nil {
				return nil, err
			}
			if err := f(v); err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, nil
		})
	}
	// action registers a command without arguments.
	action := func(name string, f func() error) {
		fn(name, func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 0 {
				return nil, tengo.ErrWrongNumArguments
			}
			if err := f(); err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, nil
		})
	}
	do := func(f func()) func() error {
		return func() error { f(); return nil }
	}

	floats("forward", 1, func(v []float64) error { return e.Forward(v[0]) })
	floats("backward", 1, func(v []float64) error { return e.Backward(v[0]) })
	floats("left", 1, func(v []float64) error { return e.Left(v[0]) })
	floats("right", 1, func(v []float64) error { return e.Right(v[0]) })
	floats("goto", 2, func(v []float64) error { return e.Goto(v[0], v[1]) })
	floats("setz", 1, func(v []float64) error { return e.SetZ(v[0]) })
	floats("heading", 1, func(v []float64) error { return e.SetHeading(v[0]) })
	floats("move", 3, func(v []float64) error { return e.Translate(v[0], v[1], v[2]) })
	floats("rotate", 1, func(v []float64) error { return e.Rotate(v[0]) })
	floats("line", 2, func(v []float64) error { return e.Line(cell(v[0]), cell(v[1])) })
	floats("circle", 1, func(v []float64) error { return e.Circle(cell(v[0])) })
	floats("fill_circle", 1, func(v []float64) error { return e.CircleFill(cell(v[0])) })
	floats("brush", 1, func(v []float64) error { e.SetBrush(cell(v[0])); return nil })
	floats("layer", 1, func(v []float64) error { e.SetLayer(cell(v[0])); return nil })

	action("home", e.Home)
	action("down", do(e.PenDown))
	action("up", do(e.PenUp))
	action("dot", e.Dot)
	action("paint", e.Paint)
	action("delete", e.Delete)
	action("clear", e.Clear)
	action("select", do(e.StartSelect))
	action("fill", e.Fill)
	action("clear_region", e.ClearRegion)
	action("delete_region", e.DeleteRegion)
	action("grab", do(e.StartGrab))
	action("drop", func() error { return e.EndGrab(false) })
	action("copy", do(e.Copy))
	action("paste", e.Paste)
	action("align", e.Align)

	fn("tile", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		e.SetTile(strings.TrimSpace(objectAsString(args[0])))
		return tengo.UndefinedValue, nil
	})
	fn("mode", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		var m engine.Mode = engine.Auto{Tileset: name}
		if name == "" || name == "manual" {
			m = engine.Manual{}
		}
		if err := e.SetMode(m); err != nil {
			return nil, err
		}
		return tengo.UndefinedValue, nil
	})
	fn("pos", func(args ...tengo.Object) (tengo.Object, error) {
		p := e.Cursor().Pos
		return vecObject(p), nil
	})
	fn("rot", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: e.Cursor().Rot}, nil
	})
	fn("is_down", func(args ...tengo.Object) (tengo.Object, error) {
		if e.IsDown() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	})
	fn("count", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) == 0 {
			return &tengo.Int{Value: int64(len(e.Tiles()))}, nil
		}
		v, err := numbers("count", args, 3)
		if err != nil {
			return nil, err
		}
		return &tengo.Int{Value: int64(len(e.TilesAt(grid.V(v[0], v[1], v[2]))))}, nil
	})
	fn("log", func(args ...tengo.Object) (tengo.Object, error) {
		vals := make([]any, 0, len(args))
		for _, a := range args {
			vals = append(vals, objectToAny(a))
		}
		r.log.Info("script", "args", vals)
		return tengo.UndefinedValue, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

func numbers(name string, args []tengo.Object, n int) ([]float64, error) {
	if len(args) != n {
		return nil, tengo.ErrWrongNumArguments
	}
	out := make([]float64, n)
	for i, a := range args {
		v, ok := tengo.ToFloat64(a)
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{
				Name:     fmt.Sprintf("%s argument %d", name, i+1),
				Expected: "int or float",
				Found:    a.TypeName(),
			}
		}
		out[i] = v
	}
	return out, nil
}

// cell rounds a script number to a whole cell count the way cursor
// positions are snapped.
func cell(v float64) int {
	return int(math.Round(v))
}

func vecObject(v grid.Vec3) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: v.X},
		&tengo.Float{Value: v.Y},
		&tengo.Float{Value: v.Z},
	}}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
