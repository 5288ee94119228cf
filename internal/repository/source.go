// Package repository provides the reference checkout core templates are
// copied from, and the git checks commands run before touching a project.
package repository

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sinedied/azd-infra/internal/ctxlog"
)

// Options selects where the reference templates come from.
type Options struct {
	// Repository is cloned when FromRepo is empty.
	Repository string
	Branch     string

	// FromRepo is an existing local checkout, used as is.
	FromRepo string

	// CloneDir receives the clone. Its previous content is removed.
	CloneDir string

	// CacheSize bounds the number of files kept in the read cache. Zero
	// disables the cache.
	CacheSize int
}

// Source is an opened reference checkout.
type Source struct {
	Root   string
	Cloned bool

	cache *lru.Cache[string, []byte]
}

// Open clones the reference repository, or adopts the local checkout named
// by opts.FromRepo.
func Open(ctx context.Context, opts Options) (*Source, error) {
	src := &Source{}

	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []byte](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create read cache: %w", err)
		}
		src.cache = cache
	}

	if opts.FromRepo != "" {
		root, err := filepath.Abs(opts.FromRepo)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", opts.FromRepo, err)
		}
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("reference repository %s is not a directory", opts.FromRepo)
		}
		ctxlog.FromContext(ctx).Debug("using local reference repository", "path", root)
		src.Root = root
		return src, nil
	}

	if opts.CloneDir == "" {
		opts.CloneDir = filepath.Join(os.TempDir(), "azd")
	}
	if err := Clone(ctx, opts.Repository, opts.Branch, opts.CloneDir); err != nil {
		return nil, err
	}
	src.Root = opts.CloneDir
	src.Cloned = true
	return src, nil
}

// FS returns the tree under sub, a slash path relative to the checkout root.
func (s *Source) FS(sub string) (fs.FS, error) {
	dir := filepath.Join(s.Root, filepath.FromSlash(sub))
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference templates %s: %w", sub, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reference templates %s is not a directory", sub)
	}
	return &cachedFS{base: os.DirFS(dir), prefix: path.Clean(sub), cache: s.cache}, nil
}

// cachedFS serves ReadFile from an LRU cache shared by every FS of one
// Source. Failed reads are not cached. Callers get their own copy of the
// data.
type cachedFS struct {
	base   fs.FS
	prefix string
	cache  *lru.Cache[string, []byte]
}

func (c *cachedFS) Open(name string) (fs.File, error) {
	return c.base.Open(name)
}

func (c *cachedFS) ReadFile(name string) ([]byte, error) {
	if c.cache == nil || !fs.ValidPath(name) {
		return fs.ReadFile(c.base, name)
	}

	key := path.Join(c.prefix, name)
	if data, ok := c.cache.Get(key); ok {
		return slices.Clone(data), nil
	}
	data, err := fs.ReadFile(c.base, name)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, slices.Clone(data))
	return data, nil
}

func (c *cachedFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(c.base, name)
}

func (c *cachedFS) Stat(name string) (fs.FileInfo, error) {
	return fs.Stat(c.base, name)
}
