package graph

import (
	"context"
	"io/fs"
	"path"

	"github.com/sinedied/azd-infra/internal/ctxlog"
)

// Resolve builds the dependency info for an inventory of template files.
//
// files are relative to basePath, which is itself relative to the root of
// fsys. Files that belong to no module are skipped. The entry module is
// basePath joined with the dialect's entry file.
func Resolve(ctx context.Context, fsys fs.FS, d Dialect, files []string, basePath string, opts ...Option) (*DependencyInfo, error) {
	seeds := make([]string, 0, len(files))
	for _, file := range files {
		unit, ok := d.Unit(file)
		if !ok {
			continue
		}
		seeds = append(seeds, path.Join(basePath, unit))
	}

	result, err := BuildGraph(ctx, fsys, d, seeds, opts...)
	if err != nil {
		return nil, err
	}

	entry := path.Join(basePath, d.EntryFile())
	info := &DependencyInfo{
		Entry:   entry,
		Graph:   result.Graph,
		All:     result.All,
		Missing: result.Missing,
		Outside: result.Outside,
		Unused:  FindUnused(result.All, result.Graph, entry),
	}

	ctxlog.FromContext(ctx).Debug("resolved dependencies",
		"entry", entry,
		"modules", len(info.All),
		"missing", len(info.Missing),
		"unused", len(info.Unused),
	)
	return info, nil
}
