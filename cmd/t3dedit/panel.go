package main

import (
	"bytes"
	"fmt"
	"image/color"
	"slices"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/milk9111/testudo/catalog"
	"github.com/milk9111/testudo/engine"
)

const (
	panelWidth  = 200
	manualEntry = "manual"
)

// panelState is what the side panel lists and highlights.
type panelState struct {
	Groups   []string
	Modules  []string
	Modes    []string
	Group    string
	Module   string
	Mode     string
	Layer    int
	Disabled []string
}

func buildPanelState(e *engine.Engine) panelState {
	cat := e.Catalog()
	s := panelState{
		Groups: cat.Names(),
		Modes:  append([]string{manualEntry}, cat.TilesetNames()...),
		Group:  e.Cursor().Tile,
		Mode:   manualEntry,
		Layer:  e.Layer(),
	}
	if g, ok := cat.Group(s.Group); ok && !g.IsTileset() {
		s.Modules = append([]string(nil), g.Tiles...)
		s.Module = g.ActiveTile()
	}
	if a, ok := e.Mode().(engine.Auto); ok {
		s.Mode = a.Tileset
	}
	for _, name := range cat.TilesetNames() {
		if ts, _ := cat.Tileset(name); !ts.Enabled() {
			s.Disabled = append(s.Disabled, name)
		}
	}
	return s
}

func (s panelState) equal(o panelState) bool {
	return s.Group == o.Group && s.Module == o.Module && s.Mode == o.Mode && s.Layer == o.Layer &&
		slices.Equal(s.Groups, o.Groups) && slices.Equal(s.Modules, o.Modules) &&
		slices.Equal(s.Modes, o.Modes) && slices.Equal(s.Disabled, o.Disabled)
}

type layerEntry struct {
	Index int
}

type modeEntry struct {
	Name     string
	Disabled bool
}

// panel is the left hand picker for group, module, placement mode and layer.
type panel struct {
	ui       *ebitenui.UI
	groups   *widget.List
	modules  *widget.List
	modes    *widget.List
	layers   *widget.List
	state    panelState
	synced   bool
	suppress bool
}

// solidNineSlice returns a solid color *image.NineSlice for widget backgrounds.
func solidNineSlice(c color.Color) *image.NineSlice {
	return image.NewNineSliceColor(c)
}

func newPanelTheme(fontFace *text.Face) *widget.Theme {
	return &widget.Theme{
		ListTheme: &widget.ListParams{
			EntryFace: fontFace,
			EntryColor: &widget.ListEntryColor{
				Unselected:          color.Black,
				Selected:            color.RGBA{0, 0, 128, 255},
				DisabledUnselected:  color.Gray{Y: 128},
				DisabledSelected:    color.Gray{Y: 64},
				SelectingBackground: color.RGBA{200, 220, 255, 255},
				SelectedBackground:  color.RGBA{180, 200, 255, 255},
			},
			ScrollContainerImage: &widget.ScrollContainerImage{
				Idle: solidNineSlice(color.RGBA{220, 220, 220, 255}),
				Mask: solidNineSlice(color.RGBA{220, 220, 220, 255}),
			},
		},
		PanelTheme: &widget.PanelParams{
			BackgroundImage: solidNineSlice(color.RGBA{40, 40, 40, 255}),
		},
		ButtonTheme: &widget.ButtonParams{
			Image: &widget.ButtonImage{
				Idle:    solidNineSlice(color.RGBA{180, 180, 180, 255}),
				Hover:   solidNineSlice(color.RGBA{200, 200, 200, 255}),
				Pressed: solidNineSlice(color.RGBA{160, 160, 160, 255}),
			},
			TextFace: fontFace,
			TextColor: &widget.ButtonTextColor{
				Idle: color.Black,
			},
		},
	}
}

func newPanel(g *editor) (*panel, error) {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	var fontFace text.Face = &text.GoTextFace{Source: s, Size: 14}

	p := &panel{ui: &ebitenui.UI{}}
	p.ui.PrimaryTheme = newPanelTheme(&fontFace)

	left := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(panelWidth, 400),
		),
		widget.ContainerOpts.BackgroundImage(solidNineSlice(color.RGBA{40, 40, 40, 255})),
		widget.ContainerOpts.Layout(
			widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionVertical),
				widget.RowLayoutOpts.Spacing(8),
			),
		),
	)

	p.groups = p.addSection(left, &fontFace, "Groups", 140, func(e any) string {
		name, _ := e.(string)
		return name
	}, func(e any) {
		if name, ok := e.(string); ok {
			g.selectGroup(name)
		}
	})
	p.modules = p.addSection(left, &fontFace, "Modules", 100, func(e any) string {
		name, _ := e.(string)
		return name
	}, func(e any) {
		if name, ok := e.(string); ok {
			g.selectModule(name)
		}
	})
	p.modes = p.addSection(left, &fontFace, "Placement", 100, func(e any) string {
		m, _ := e.(modeEntry)
		if m.Disabled {
			return m.Name + " (disabled)"
		}
		return m.Name
	}, func(e any) {
		if m, ok := e.(modeEntry); ok {
			g.selectMode(m.Name)
		}
	})
	p.layers = p.addSection(left, &fontFace, "Layers", 140, func(e any) string {
		l, _ := e.(layerEntry)
		return fmt.Sprintf("Layer %d", l.Index)
	}, func(e any) {
		if l, ok := e.(layerEntry); ok {
			g.selectLayer(l.Index)
		}
	})

	layers := make([]any, catalog.MaxLayers)
	for i := range layers {
		layers[i] = layerEntry{Index: i}
	}
	p.setEntries(p.layers, layers)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	left.GetWidget().LayoutData = widget.AnchorLayoutData{
		HorizontalPosition: widget.AnchorLayoutPositionStart,
		VerticalPosition:   widget.AnchorLayoutPositionCenter,
		StretchVertical:    true,
	}
	root.AddChild(left)
	p.ui.Container = root
	return p, nil
}

func (p *panel) addSection(parent *widget.Container, fontFace *text.Face, title string, height int, label func(any) string, onSelect func(any)) *widget.List {
	parent.AddChild(widget.NewLabel(
		widget.LabelOpts.Text(title, fontFace, &widget.LabelColor{Idle: color.White, Disabled: color.Gray{Y: 140}}),
	))
	list := widget.NewList(
		widget.ListOpts.Entries([]any{}),
		widget.ListOpts.EntryLabelFunc(label),
		widget.ListOpts.EntrySelectedHandler(func(args *widget.ListEntrySelectedEventArgs) {
			if p.suppress {
				return
			}
			onSelect(args.Entry)
		}),
	)
	list.GetWidget().MinHeight = height
	parent.AddChild(list)
	return list
}

// setEntries and selectEntry change a list without reporting the change back
// as a user pick.
func (p *panel) setEntries(l *widget.List, entries []any) {
	p.suppress = true
	l.SetEntries(entries)
	p.suppress = false
}

func (p *panel) selectEntry(l *widget.List, entry any) {
	p.suppress = true
	l.SetSelectedEntry(entry)
	p.suppress = false
}

// invalidate forces the next sync to rebuild every list.
func (p *panel) invalidate() {
	p.synced = false
}

// sync mirrors engine state into the lists. Keyboard edits show up in the
// panel the same frame.
func (p *panel) sync(s panelState) {
	if p.synced && p.state.equal(s) {
		return
	}
	prev, rebuild := p.state, !p.synced
	p.state, p.synced = s, true

	if rebuild || !slices.Equal(prev.Groups, s.Groups) {
		p.setEntries(p.groups, stringEntries(s.Groups))
	}
	if rebuild || !slices.Equal(prev.Modules, s.Modules) {
		p.setEntries(p.modules, stringEntries(s.Modules))
	}
	if rebuild || !slices.Equal(prev.Modes, s.Modes) || !slices.Equal(prev.Disabled, s.Disabled) {
		p.setEntries(p.modes, p.modeEntries(s))
	}
	if s.Group != "" {
		p.selectEntry(p.groups, s.Group)
	}
	if s.Module != "" {
		p.selectEntry(p.modules, s.Module)
	}
	p.selectEntry(p.modes, modeEntry{Name: s.Mode, Disabled: slices.Contains(s.Disabled, s.Mode)})
	p.selectEntry(p.layers, layerEntry{Index: s.Layer})
}

func (p *panel) modeEntries(s panelState) []any {
	out := make([]any, len(s.Modes))
	for i, name := range s.Modes {
		out[i] = modeEntry{Name: name, Disabled: slices.Contains(s.Disabled, name)}
	}
	return out
}

func stringEntries(names []string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}
