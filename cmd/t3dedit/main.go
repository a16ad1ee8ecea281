// Command t3dedit is a keyboard driven editor for one layer of a tile scene,
// viewed from above.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"

	"github.com/milk9111/testudo/catalog"
	"github.com/milk9111/testudo/engine"
	"github.com/milk9111/testudo/host"
	"github.com/milk9111/testudo/scene"
)

func main() {
	metaPath := flag.String("meta", catalog.DefaultMetadata, "Session metadata (YAML)")
	scenePath := flag.String("scene", "crypt.json", "Scene to open (JSON), embedded demos are tried last")
	outPath := flag.String("out", "", "Where Ctrl+S saves, defaults to scenes/<scene>")
	cellSize := flag.Int("cell", 32, "Cell size in pixels")
	watch := flag.Bool("watch", true, "Reload metadata and rules when they change on disk")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	log.Println("Editor starting...")
	meta, err := catalog.LoadMetadata(*metaPath)
	if err != nil {
		log.Fatalf("Failed to load metadata: %v", err)
	}
	h := host.NewMemory(meta.HostGroups()...)
	if *scenePath != "" {
		s, err := scene.LoadFile(*scenePath)
		if err != nil {
			log.Printf("Starting with an empty scene: %v", err)
		} else if err := s.Restore(h); err != nil {
			log.Fatalf("Failed to restore scene: %v", err)
		}
	}
	cat := catalog.New(h, meta)
	e := engine.New(h, cat)

	ed := newEditor(e, h, *metaPath, normalizeSavePath(*outPath, *scenePath), *cellSize)
	if p, err := newPanel(ed); err != nil {
		log.Printf("Side panel unavailable, use the keyboard pickers: %v", err)
	} else {
		ed.panel = p
	}
	if *watch {
		files := append([]string{*metaPath}, cat.RulesFiles()...)
		if dirs := catalog.WatchDirs(files...); len(dirs) > 0 {
			w, err := catalog.NewWatcher(dirs...)
			if err != nil {
				log.Printf("Failed to watch %v: %v", dirs, err)
			} else {
				defer w.Close()
				ed.watcher = w
			}
		}
	}
	if err := clipboard.Init(); err != nil {
		log.Printf("System clipboard unavailable, copy stays in the editor: %v", err)
	} else {
		ed.sysClipboard = true
	}

	ebiten.SetWindowSize(1280, 800)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("Testudo Editor")

	if err := ebiten.RunGame(ed); err != nil {
		log.Fatal(err)
	}
}
