package catalog

import (
	"embed"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed builtin/*.yaml builtin/*.rules
var BuiltinFS embed.FS

// Load reads a metadata or rules file from disk, falling back to the copy
// embedded under builtin/ with the same base name.
func Load(name string) ([]byte, error) {
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	return BuiltinFS.ReadFile(builtinPath(name))
}

// Builtin reports whether name only exists as an embedded file.
func Builtin(name string) bool {
	if _, err := os.Stat(name); err == nil {
		return false
	}
	_, err := BuiltinFS.ReadFile(builtinPath(name))
	return err == nil
}

func builtinPath(name string) string {
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, "catalog/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "builtin/"); ok {
		s = after
	}
	return path.Join("builtin", path.Base(s))
}
