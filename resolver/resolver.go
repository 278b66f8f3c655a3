// Package resolver loads a scene module graph from disk. Starting at an entry
// file it discovers "use" imports, loads the transitive closure of sibling
// modules under the project root, and orders them so every module appears
// after everything it imports.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the scene module file extension.
const Ext = ".scene"

// Module is one loaded source unit. Modules are immutable after loading.
type Module struct {
	// Path is the module's stable identity: slash-separated, relative to the
	// project root, without extension (e.g. "logic/movement").
	Path string
	// File is the absolute on-disk path the module was read from.
	File string
	// Source is the raw module text.
	Source string
	// Imports are the module paths this module uses, in source order.
	Imports []string
}

// UnresolvedImportError reports an import whose target does not exist on disk.
type UnresolvedImportError struct {
	Module string // importing module path
	Import string // imported module path
	File   string // file that was probed
}

func (e *UnresolvedImportError) Error() string {
	return fmt.Sprintf("module %q imports %q, but %s does not exist", e.Module, e.Import, e.File)
}

// CyclicImportError reports an import cycle. Chain lists the module paths
// along the cycle, ending where it started.
type CyclicImportError struct {
	Chain []string
}

func (e *CyclicImportError) Error() string {
	return fmt.Sprintf("import cycle: %s", strings.Join(e.Chain, " -> "))
}

// Resolve loads the entry file and the transitive closure of its imports,
// returning modules in load order: imported before importer, entry last.
// Imports resolve strictly inside root; the same graph always yields the
// same order.
func Resolve(entry, root string) ([]*Module, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absEntry, err := filepath.Abs(entry)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(absRoot, absEntry)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("entry file %s is outside project root %s", entry, root)
	}

	r := &resolver{
		root:    absRoot,
		loaded:  make(map[string]*Module),
		visited: make(map[string]int),
	}
	entryPath := strings.TrimSuffix(filepath.ToSlash(rel), Ext)
	if err := r.visit(entryPath, ""); err != nil {
		return nil, err
	}
	return r.order, nil
}

const (
	stateVisiting = 1
	stateDone     = 2
)

type resolver struct {
	root    string
	loaded  map[string]*Module
	visited map[string]int
	stack   []string
	order   []*Module
}

// visit performs a depth-first post-order walk: a module is appended to the
// load order only after all of its imports are.
func (r *resolver) visit(path, importer string) error {
	switch r.visited[path] {
	case stateDone:
		return nil
	case stateVisiting:
		chain := append(cycleFrom(r.stack, path), path)
		return &CyclicImportError{Chain: chain}
	}

	mod, err := r.load(path, importer)
	if err != nil {
		return err
	}

	r.visited[path] = stateVisiting
	r.stack = append(r.stack, path)
	for _, imp := range mod.Imports {
		if err := r.visit(imp, path); err != nil {
			return err
		}
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.visited[path] = stateDone
	r.order = append(r.order, mod)
	return nil
}

func cycleFrom(stack []string, path string) []string {
	for i, p := range stack {
		if p == path {
			return append([]string(nil), stack[i:]...)
		}
	}
	return append([]string(nil), stack...)
}

func (r *resolver) load(path, importer string) (*Module, error) {
	if mod, ok := r.loaded[path]; ok {
		return mod, nil
	}
	file := filepath.Join(r.root, filepath.FromSlash(path)+Ext)
	data, err := os.ReadFile(file)
	if err != nil {
		if importer == "" {
			return nil, fmt.Errorf("entry module %q: %w", path, err)
		}
		return nil, &UnresolvedImportError{Module: importer, Import: path, File: file}
	}
	mod := &Module{
		Path:    path,
		File:    file,
		Source:  string(data),
		Imports: scanImports(string(data), path),
	}
	r.loaded[path] = mod
	return mod, nil
}

// scanImports finds "use a.b.c" lines. Dotted segments map to directories;
// the path is interpreted relative to the importing module's directory.
func scanImports(source, from string) []string {
	var imports []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(source, "\n") {
		t := strings.TrimSpace(line)
		if !strings.HasPrefix(t, "use ") {
			continue
		}
		ref := strings.TrimSpace(strings.TrimPrefix(t, "use "))
		if i := strings.IndexByte(ref, '#'); i >= 0 {
			ref = strings.TrimSpace(ref[:i])
		}
		if ref == "" {
			continue
		}
		path := strings.ReplaceAll(ref, ".", "/")
		if dir := dirOf(from); dir != "" {
			path = dir + "/" + path
		}
		if !seen[path] {
			seen[path] = true
			imports = append(imports, path)
		}
	}
	return imports
}

func dirOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}
