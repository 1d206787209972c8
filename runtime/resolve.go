package runtime

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sergev/lexa/lang"
	"github.com/sergev/lexa/parser"
)

// SourceExt is appended to import paths that have no extension.
const SourceExt = ".lx"

// FileResolver loads modules from source files. Relative import paths are
// taken relative to Root.
type FileResolver struct {
	Root string
}

// Resolve reads, parses and evaluates the file named by source.
func (r *FileResolver) Resolve(ev *lang.Evaluator, source string) (*lang.Module, error) {
	path := source
	if filepath.Ext(path) == "" {
		path += SourceExt
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Root, path)
	}
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return nil, err
	}
	return loadModule(ev, moduleName(source), path, string(data))
}

// MapResolver serves module sources from memory, keyed by import source.
type MapResolver map[string]string

// Resolve evaluates the source registered under source.
func (m MapResolver) Resolve(ev *lang.Evaluator, source string) (*lang.Module, error) {
	src, ok := m[source]
	if !ok {
		return nil, fmt.Errorf("module not found")
	}
	return loadModule(ev, moduleName(source), source, src)
}

func loadModule(ev *lang.Evaluator, name, path, src string) (*lang.Module, error) {
	prog, err := parser.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mod, err := ev.EvalModule(name, prog)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mod, nil
}

// moduleName is the base name of source without its extension.
func moduleName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
