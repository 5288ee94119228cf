// Package graph resolves the module dependency graph of a template tree and
// classifies its modules as missing or unused.
//
// Module paths are slash separated, cleaned and relative to the root of the
// fs.FS being resolved. The package never prints; callers decide how to
// report the result.
package graph

import (
	"errors"
	"io/fs"
	"slices"
	"sort"
	"strings"
)

// ErrNoSeeds is returned when a resolution is started without any module to
// resolve.
var ErrNoSeeds = errors.New("no template modules to resolve")

// Dialect is the per-language behaviour the resolver depends on.
type Dialect interface {
	// Unit maps an inventory file to the module it belongs to. Files that
	// are not part of any module report false.
	Unit(file string) (string, bool)

	// EntryFile is the entry module relative to the template base path.
	EntryFile() string

	// Dir returns the directory relative references of module resolve from.
	Dir(module string) string

	// Load returns the text of module. Any error classifies the module as
	// missing.
	Load(fsys fs.FS, module string) (string, error)

	// Extract returns the normalized, de-duplicated references found in
	// content, in first-occurrence order.
	Extract(content, dir string) []string
}

// Graph maps a module to the modules it references directly.
type Graph map[string][]string

// DependencyInfo is the outcome of one resolution.
//
// Outside maps each reference that escapes the root of the resolved tree to
// the modules making it, in processing order. Those references are neither
// followed nor part of the graph.
type DependencyInfo struct {
	Entry   string              `json:"entry"`
	Graph   Graph               `json:"graph"`
	All     []string            `json:"all"`
	Missing []string            `json:"missing"`
	Unused  []string            `json:"unused"`
	Outside map[string][]string `json:"outside,omitempty"`
}

// IsClean reports whether nothing is missing and nothing is unused.
func (info *DependencyInfo) IsClean() bool {
	return len(info.Missing) == 0 && len(info.Unused) == 0
}

// Explain describes why module is unused.
func (info *DependencyInfo) Explain(module string) string {
	referrers := info.UsedBy(module)
	if len(referrers) == 0 {
		return "not referenced"
	}
	return "referenced only by unused " + strings.Join(referrers, ", ")
}

// UsedBy returns every module referencing module, in processing order.
func (info *DependencyInfo) UsedBy(module string) []string {
	users := make([]string, 0)
	for _, file := range info.All {
		if slices.Contains(info.Graph[file], module) {
			users = append(users, file)
		}
	}
	return users
}

// Dependents inverts the graph: module -> modules referencing it, in
// processing order.
func (info *DependencyInfo) Dependents() map[string][]string {
	reverse := make(map[string][]string)
	for _, file := range info.All {
		for _, dep := range info.Graph[file] {
			reverse[dep] = append(reverse[dep], file)
		}
	}
	return reverse
}

// UsedBy returns every module of g whose dependency list contains module.
// A bare graph carries no processing order, so the result is sorted.
func UsedBy(module string, g Graph) []string {
	users := make([]string, 0)
	for file, deps := range g {
		if slices.Contains(deps, module) {
			users = append(users, file)
		}
	}
	sort.Strings(users)
	return users
}
