package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"golang.design/x/clipboard"

	"github.com/milk9111/testudo/engine"
	"github.com/milk9111/testudo/scene"
)

// normalizeSavePath picks where Ctrl+S writes. Without -out the scene is
// saved under scenes/ so embedded demos are never overwritten in place.
func normalizeSavePath(out, opened string) string {
	if out != "" {
		if !strings.HasSuffix(strings.ToLower(out), ".json") {
			out += ".json"
		}
		return out
	}
	name := filepath.Base(opened)
	if opened == "" || name == "." {
		name = fmt.Sprintf("scene_%d.json", time.Now().Unix())
	}
	return filepath.Join("scenes", name)
}

func (g *editor) save() error {
	g.e.Close()
	s := scene.Capture(g.h, g.e.Root(), g.e.TileSizeZ(), engine.CursorAnchor)
	if err := scene.SaveFile(g.savePath, s); err != nil {
		return err
	}
	log.Printf("Saved %d tiles to %s", len(s.Tiles), g.savePath)
	return nil
}

// copy stores the selection, or the cursor cell, and mirrors it to the
// system clipboard as JSON.
func (g *editor) copy() {
	g.e.Copy()
	clip := g.e.Clipboard()
	g.setStatus(fmt.Sprintf("copied %d tile(s)", len(clip)))
	if !g.sysClipboard || len(clip) == 0 {
		return
	}
	data, err := clip.MarshalText()
	if err != nil {
		g.report(err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
}

// paste prefers tiles on the system clipboard, so scenes can be copied
// between editor windows.
func (g *editor) paste() {
	if g.sysClipboard {
		if data := clipboard.Read(clipboard.FmtText); len(data) > 0 {
			var clip engine.Clipboard
			if err := clip.UnmarshalText(data); err == nil {
				g.e.SetClipboard(clip)
			}
		}
	}
	g.report(g.e.Paste())
}
