package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/gookit/color"
	"github.com/sinedied/azd-infra/internal/ctxlog"
	"github.com/sinedied/azd-infra/internal/fileutil"
	"github.com/spf13/cobra"
)

// UpdateAction is what update would do with one core file.
type UpdateAction string

const (
	UpdateUpToDate UpdateAction = "up-to-date"
	UpdateToUpdate UpdateAction = "update"
	UpdateMissing  UpdateAction = "missing"
)

// FileUpdate pairs a core file, relative to the infra folder, with its action.
type FileUpdate struct {
	File   string       `json:"file"`
	Action UpdateAction `json:"action"`
}

func RunUpdate(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv(cmd, args)
	if err != nil {
		return err
	}
	return runUpdate(env)
}

func runUpdate(env *commandEnv) error {
	files, err := env.project.CoreFiles()
	if err != nil {
		return err
	}

	upstream, err := env.upstreamTemplates()
	if err != nil {
		return err
	}

	updates, err := compareCoreFiles(env, upstream, files)
	if err != nil {
		return err
	}

	pending := 0
	for _, u := range updates {
		file := path.Join(env.project.InfraPath, u.File)
		switch u.Action {
		case UpdateUpToDate:
			env.println(color.Gray.Sprintf("[current] %s", file))
		case UpdateToUpdate:
			env.println(color.Yellow.Sprintf("[update]  %s", file))
			pending++
		case UpdateMissing:
			env.println(color.Red.Sprintf("[missing] %s", file))
		}
	}
	env.println()

	if pending == 0 {
		env.println("No updates required.")
		return nil
	}

	if !env.confirm("Update files?") {
		env.println("Update cancelled.")
		return nil
	}

	if err := env.checkClean(); err != nil {
		return err
	}

	for _, u := range updates {
		if u.Action != UpdateToUpdate {
			continue
		}
		if err := updateFile(env, upstream, u.File); err != nil {
			return err
		}
	}

	env.println("Update successful.")
	return nil
}

// compareCoreFiles classifies each local core file against its upstream
// copy. Files absent upstream are reported missing.
func compareCoreFiles(env *commandEnv, upstream fs.FS, files []string) ([]FileUpdate, error) {
	logger := ctxlog.FromContext(env.ctx)
	updates := make([]FileUpdate, 0, len(files))

	for _, file := range files {
		local, err := fs.ReadFile(env.project.FS, path.Join(env.project.InfraPath, file))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		remote, err := fs.ReadFile(upstream, file)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Debug("error comparing files", "file", file, "error", err)
			}
			updates = append(updates, FileUpdate{File: file, Action: UpdateMissing})
			continue
		}

		action := UpdateToUpdate
		if fileutil.SameContent(string(local), string(remote)) {
			action = UpdateUpToDate
		} else {
			logger.Debug("core file drifted",
				"file", file,
				"local", fileutil.HashContent(string(local)),
				"upstream", fileutil.HashContent(string(remote)),
			)
		}
		updates = append(updates, FileUpdate{File: file, Action: action})
	}
	return updates, nil
}

func updateFile(env *commandEnv, upstream fs.FS, file string) error {
	target := env.projectPath(path.Join(env.project.InfraPath, file))
	if err := fileutil.CopyFromFS(upstream, file, target); err != nil {
		return fmt.Errorf("failed to update file %s: %w", file, err)
	}
	ctxlog.FromContext(env.ctx).Debug("updated file", "file", target)
	return nil
}
