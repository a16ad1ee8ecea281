// Command t3dscript runs a turtle script against an in-memory scene and
// saves the result.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/milk9111/testudo/catalog"
	"github.com/milk9111/testudo/engine"
	"github.com/milk9111/testudo/host"
	"github.com/milk9111/testudo/scene"
	"github.com/milk9111/testudo/script"
)

type options struct {
	meta    string
	script  string
	scene   string
	out     string
	timeout time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.meta, "meta", catalog.DefaultMetadata, "Session metadata (YAML)")
	flag.StringVar(&opts.script, "script", "", "Tengo script to run")
	flag.StringVar(&opts.scene, "scene", "", "Scene to start from (JSON)")
	flag.StringVar(&opts.out, "out", "", "Where to save the scene, defaults to -scene")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Time limit for one run")
	watch := flag.Bool("watch", false, "Run again whenever the script, metadata or rules change")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if opts.script == "" {
		log.Fatal("-script is required")
	}
	if opts.out == "" {
		opts.out = opts.scene
	}
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cat, err := runOnce(ctx, opts)
	if err != nil {
		log.Printf("run failed: %v", err)
		if !*watch {
			os.Exit(1)
		}
	}
	if !*watch {
		return
	}

	files := []string{opts.meta, opts.script}
	if cat != nil {
		files = append(files, cat.RulesFiles()...)
	}
	w, err := catalog.NewWatcher(catalog.WatchDirs(files...)...)
	if err != nil {
		log.Fatalf("watch: %v", err)
	}
	defer w.Close()
	log.Printf("watching %d directories, ^C to stop", len(catalog.WatchDirs(files...)))

	for {
		select {
		case name := <-w.Events:
			log.Printf("changed: %s", filepath.Base(name))
			if _, err := runOnce(ctx, opts); err != nil {
				log.Printf("run failed: %v", err)
			}
		case err := <-w.Errors:
			log.Printf("watch error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}

// runOnce builds a fresh session, runs the script and saves the scene.
func runOnce(ctx context.Context, opts options) (*catalog.Catalog, error) {
	meta, err := catalog.LoadMetadata(opts.meta)
	if err != nil {
		return nil, err
	}
	h := host.NewMemory(meta.HostGroups()...)
	if opts.scene != "" {
		s, err := scene.LoadFile(opts.scene)
		if err != nil {
			return nil, err
		}
		if err := s.Restore(h); err != nil {
			return nil, err
		}
	}
	cat := catalog.New(h, meta)
	e := engine.New(h, cat)
	defer e.Close()

	runCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	start := time.Now()
	if _, err := script.NewRunner(e, nil).RunFile(runCtx, opts.script); err != nil {
		return cat, err
	}
	log.Printf("ran %s in %v: %d tiles, cursor %v", filepath.Base(opts.script), time.Since(start).Round(time.Millisecond), len(h.Tiles(e.Root())), e.Cursor())

	if opts.out == "" {
		return cat, nil
	}
	e.Close()
	s := scene.Capture(h, e.Root(), e.TileSizeZ(), engine.CursorAnchor)
	if err := scene.SaveFile(opts.out, s); err != nil {
		return cat, err
	}
	log.Printf("saved %s", opts.out)
	return cat, nil
}
