package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/sinedied/azd-infra/internal/dialect"
	"github.com/sinedied/azd-infra/internal/ignore"
	"github.com/stretchr/testify/require"
)

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadValidatesProject(t *testing.T) {
	reg := dialect.NewDefaultRegistry()

	root := t.TempDir()
	_, err := Load(root, "", reg, "")
	require.True(t, errors.Is(err, ErrNotAZDProject))
	require.EqualError(t, err, "Not an AZD project: missing azure.yaml")

	mustWriteFile(t, filepath.Join(root, "azure.yaml"), "name: demo\n")
	_, err = Load(root, "", reg, "")
	require.EqualError(t, err, "Not an AZD project: missing infra folder")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "infra"), 0755))
	_, err = Load(root, "", reg, "")
	require.ErrorContains(t, err, "No main.bicep or main.tf file found")

	_, err = Load(root, "", reg, "bicep")
	require.EqualError(t, err, "No main.bicep file found in infra")

	mustWriteFile(t, filepath.Join(root, "infra", "main.bicep"), "")
	p, err := Load(root, "", reg, "")
	require.NoError(t, err)
	require.Equal(t, "bicep", p.Dialect.Name())
	require.Equal(t, "infra", p.InfraPath)
	require.True(t, filepath.IsAbs(p.Root))
}

func TestLoadTerraformAndCustomInfraPath(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "azure.yaml"), "name: demo\n")
	mustWriteFile(t, filepath.Join(root, "deploy", "tf", "main.tf"), "")

	p, err := Load(root, "deploy/tf", dialect.NewDefaultRegistry(), "auto")
	require.NoError(t, err)
	require.Equal(t, "terraform", p.Dialect.Name())
	require.Equal(t, "deploy/tf", p.InfraPath)
}

func TestProjectFiles(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "azure.yaml"), "name: demo\n")
	mustWriteFile(t, filepath.Join(root, "infra", "main.bicep"), "")
	mustWriteFile(t, filepath.Join(root, "infra", "app", "web.bicep"), "")
	mustWriteFile(t, filepath.Join(root, "infra", "abbreviations.json"), "{}")
	mustWriteFile(t, filepath.Join(root, "infra", "core", "host", "app.bicep"), "")
	mustWriteFile(t, filepath.Join(root, "infra", "core", "host", "README.md"), "")
	mustWriteFile(t, filepath.Join(root, "infra", "core", "legacy", "old.bicep"), "")
	mustWriteFile(t, filepath.Join(root, ignore.FileName), "infra/core/legacy/\n")

	p, err := Load(root, "", dialect.NewDefaultRegistry(), "")
	require.NoError(t, err)

	core, err := p.CoreFiles()
	require.NoError(t, err)
	require.Equal(t, []string{"abbreviations.json", "core/host/app.bicep"}, core)

	all, err := p.AllFiles()
	require.NoError(t, err)
	require.Equal(t, []string{"abbreviations.json", "app/web.bicep", "core/host/app.bicep", "main.bicep"}, all)

	require.Equal(t, filepath.Join(root, "infra", "main.bicep"), p.Abs("infra/main.bicep"))
}

func TestInventoryAtRoot(t *testing.T) {
	fsys := fstest.MapFS{
		"core/a/main.tf":      &fstest.MapFile{},
		"core/a/outputs.tf":   &fstest.MapFile{},
		"main.tf":             &fstest.MapFile{},
		".terraform/x/foo.tf": &fstest.MapFile{},
	}

	files, err := Inventory(fsys, ".", []string{"**/*.tf"}, ignore.NewMatcher(nil))
	require.NoError(t, err)
	require.Equal(t, []string{"core/a/main.tf", "core/a/outputs.tf", "main.tf"}, files)

	files, err = Inventory(fsys, ".", []string{"core/**/*.tf"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"core/a/main.tf", "core/a/outputs.tf"}, files)
}

func TestInventoryMissingDir(t *testing.T) {
	_, err := Inventory(fstest.MapFS{}, "infra", []string{"**/*.bicep"}, nil)
	require.Error(t, err)
}
