// Package project locates an Azure Developer CLI project on disk and lists
// its infrastructure templates.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"
	"github.com/sinedied/azd-infra/internal/dialect"
	"github.com/sinedied/azd-infra/internal/ignore"
)

// DefaultInfraPath is the infra folder relative to the project root.
const DefaultInfraPath = "infra"

// ManifestFile marks the root of a project.
const ManifestFile = "azure.yaml"

// ErrNotAZDProject is wrapped by every project validation error.
var ErrNotAZDProject = errors.New("Not an AZD project")

// Project is a validated project checkout.
type Project struct {
	Root      string
	InfraPath string
	Dialect   dialect.Dialect
	FS        fs.FS
	Ignore    *ignore.Matcher
}

// Load validates the project at root and picks its template dialect.
// dialectName may be empty or "auto" to detect it from the entry file.
func Load(root, infraPath string, reg *dialect.Registry, dialectName string) (*Project, error) {
	if infraPath == "" {
		infraPath = DefaultInfraPath
	}
	infraPath = path.Clean(filepath.ToSlash(infraPath))

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}
	fsys := os.DirFS(absRoot)

	if _, err := fs.Stat(fsys, ManifestFile); err != nil {
		return nil, fmt.Errorf("%w: missing %s", ErrNotAZDProject, ManifestFile)
	}
	if info, err := fs.Stat(fsys, infraPath); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: missing %s folder", ErrNotAZDProject, infraPath)
	}

	d, err := reg.Lookup(fsys, infraPath, dialectName)
	if err != nil {
		if errors.Is(err, dialect.ErrUnknownDialect) && (dialectName == "" || dialectName == "auto") {
			return nil, errors.New("No main.bicep or main.tf file found: only Bicep and Terraform infrastructure are supported")
		}
		return nil, err
	}
	if _, err := fs.Stat(fsys, path.Join(infraPath, d.MainFile())); err != nil {
		return nil, fmt.Errorf("No %s file found in %s", d.MainFile(), infraPath)
	}

	matcher, err := ignore.Load(absRoot)
	if err != nil {
		return nil, err
	}

	return &Project{
		Root:      absRoot,
		InfraPath: infraPath,
		Dialect:   d,
		FS:        fsys,
		Ignore:    matcher,
	}, nil
}

// CoreFiles lists the core templates of the infra folder.
func (p *Project) CoreFiles() ([]string, error) {
	return Inventory(p.FS, p.InfraPath, p.Dialect.CoreGlobs(), p.Ignore)
}

// AllFiles lists every template of the infra folder.
func (p *Project) AllFiles() ([]string, error) {
	return Inventory(p.FS, p.InfraPath, p.Dialect.AllGlobs(), p.Ignore)
}

// Abs returns the OS path of a slash path relative to the project root.
func (p *Project) Abs(rel string) string {
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}

// Inventory walks dir and returns the files matching any of globs, relative
// to dir, sorted. Ignored paths are matched relative to the fs root; ignored
// directories are not descended into.
func Inventory(fsys fs.FS, dir string, globs []string, matcher *ignore.Matcher) ([]string, error) {
	files := make([]string, 0)
	err := fs.WalkDir(fsys, dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == dir {
			return nil
		}
		if matcher.ShouldIgnore(p, entry.IsDir()) {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		rel := p
		if dir != "." {
			rel = p[len(dir)+1:]
		}
		for _, glob := range globs {
			ok, err := doublestar.Match(glob, rel)
			if err != nil {
				return fmt.Errorf("invalid glob %q: %w", glob, err)
			}
			if ok {
				files = append(files, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list templates in %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}
