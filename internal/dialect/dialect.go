// Package dialect describes the template languages an infra folder can be
// written in and how module references are found in each of them.
package dialect

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// ErrUnknownDialect is returned when no registered dialect matches.
var ErrUnknownDialect = errors.New("unknown template dialect")

// Dialect defines what each template language must implement.
type Dialect interface {
	// Name returns the dialect name (e.g., "bicep", "terraform")
	Name() string

	// MainFile is the file whose presence in the infra folder identifies
	// the dialect.
	MainFile() string

	// EntryFile is the entry module relative to the infra folder.
	EntryFile() string

	// Unit maps an inventory file to the module it belongs to.
	Unit(file string) (string, bool)

	// Dir returns the directory relative references of module resolve from.
	Dir(module string) string

	// Load returns the text of module.
	Load(fsys fs.FS, module string) (string, error)

	// Files lists the files making up module, relative to the fs root.
	Files(fsys fs.FS, module string) ([]string, error)

	// Extract returns the references found in content, joined to dir.
	Extract(content, dir string) []string

	// CoreGlobs match the shared core templates of an infra folder.
	CoreGlobs() []string

	// AllGlobs match every template file of an infra folder.
	AllGlobs() []string

	// TemplatePath is where the dialect's core templates live in the
	// reference repository.
	TemplatePath() string
}

// Registry holds all registered dialects.
type Registry struct {
	dialects map[string]Dialect
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{dialects: make(map[string]Dialect)}
}

// NewDefaultRegistry creates a registry with all supported dialects, in
// detection order.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewBicep())
	r.Register(NewTerraform())
	return r
}

// Register adds a dialect. Registering a name twice replaces the previous
// dialect but keeps its detection slot.
func (r *Registry) Register(d Dialect) {
	name := d.Name()
	if _, ok := r.dialects[name]; !ok {
		r.order = append(r.order, name)
	}
	r.dialects[name] = d
}

// Get returns the dialect registered under name.
func (r *Registry) Get(name string) (Dialect, bool) {
	d, ok := r.dialects[name]
	return d, ok
}

// Names returns the registered dialect names, sorted.
func (r *Registry) Names() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Detect returns the first dialect whose main file exists in dir.
func (r *Registry) Detect(fsys fs.FS, dir string) (Dialect, error) {
	for _, name := range r.order {
		d := r.dialects[name]
		if _, err := fs.Stat(fsys, path.Join(dir, d.MainFile())); err == nil {
			return d, nil
		}
	}
	return nil, ErrUnknownDialect
}

// Lookup resolves a dialect name given on the command line. "auto" and the
// empty string defer to Detect.
func (r *Registry) Lookup(fsys fs.FS, dir, name string) (Dialect, error) {
	if name == "" || name == "auto" {
		return r.Detect(fsys, dir)
	}
	d, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownDialect, name, r.Names())
	}
	return d, nil
}

// uniqueJoin joins every reference to dir, keeping the first occurrence of
// each result.
func uniqueJoin(dir string, refs []string) []string {
	seen := make(map[string]bool, len(refs))
	deps := make([]string, 0, len(refs))
	for _, ref := range refs {
		dep := path.Join(dir, ref)
		if seen[dep] {
			continue
		}
		seen[dep] = true
		deps = append(deps, dep)
	}
	return deps
}
