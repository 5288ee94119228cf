package dialect

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestBicepExtract(t *testing.T) {
	cases := []struct {
		name    string
		content string
		dir     string
		want    []string
	}{
		{
			name:    "empty",
			content: "",
			dir:     "infra",
			want:    []string{},
		},
		{
			name: "dedupe keeps first occurrence",
			content: "module a './a.bicep' = {}\n" +
				"module b './b.bicep' = {}\n" +
				"module a2 './a.bicep' = {}\n",
			dir:  "infra",
			want: []string{"infra/a.bicep", "infra/b.bicep"},
		},
		{
			name:    "parent references are normalized",
			content: "module net '../networking/vnet.bicep' = {\n  name: 'vnet'\n}\n",
			dir:     "infra/core/host",
			want:    []string{"infra/core/networking/vnet.bicep"},
		},
		{
			name: "registry references are skipped",
			content: "module avm 'br/public:avm/res/web/site:0.3.0' = {}\n" +
				"module spec 'ts:sub/rg/spec:v1' = {}\n" +
				"module local 'core/a.bicep' = {}\n",
			dir:  ".",
			want: []string{"core/a.bicep"},
		},
		{
			name:    "non module text is ignored",
			content: "param name string\nresource x 'Microsoft.Web/sites@2022-03-01' = {}\n// module 'nope'\n",
			dir:     ".",
			want:    []string{},
		},
	}

	b := NewBicep()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, b.Extract(tc.content, tc.dir))
		})
	}
}

func TestBicepUnitAndDir(t *testing.T) {
	b := NewBicep()

	unit, ok := b.Unit("core/host/app.bicep")
	require.True(t, ok)
	require.Equal(t, "core/host/app.bicep", unit)

	_, ok = b.Unit("abbreviations.json")
	require.False(t, ok)

	_, ok = b.Unit("core/host/APP.BICEP")
	require.False(t, ok, "extensions match case-sensitively like the inventory globs")

	require.Equal(t, "core/host", b.Dir("core/host/app.bicep"))
	require.Equal(t, "main.bicep", b.EntryFile())
}

func TestBicepLoadAndFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"main.bicep": &fstest.MapFile{Data: []byte("targetScope = 'subscription'")},
		"core":       &fstest.MapFile{Mode: fs.ModeDir},
	}
	b := NewBicep()

	content, err := b.Load(fsys, "main.bicep")
	require.NoError(t, err)
	require.Equal(t, "targetScope = 'subscription'", content)

	_, err = b.Load(fsys, "missing.bicep")
	require.True(t, errors.Is(err, fs.ErrNotExist))

	files, err := b.Files(fsys, "main.bicep")
	require.NoError(t, err)
	require.Equal(t, []string{"main.bicep"}, files)

	_, err = b.Files(fsys, "core")
	require.Error(t, err)
}

func TestTerraformExtract(t *testing.T) {
	content := `
terraform {
  required_providers {
    azurerm = {
      source  = "hashicorp/azurerm"
      version = "~>3.0"
    }
  }
}

module "web" {
  source         = "./modules/web"
  location       = var.location
}

module "consul" {
  source = "hashicorp/consul/aws"
}

module "git" {
  source = "git::https://example.com/vpc.git"
}

module "templated" {
  source = "./modules/${var.name}"
}

module "shared" {
  source = "../shared/monitor"
}

module "web_again" {
  source = "./modules/web"
}
`

	got := NewTerraform().Extract(content, "infra")
	require.Equal(t, []string{"infra/modules/web", "shared/monitor"}, got)
}

func TestTerraformExtractRoot(t *testing.T) {
	got := NewTerraform().Extract("module \"kv\" {\n  source = \"./core/security/keyvault\"\n}\n", ".")
	require.Equal(t, []string{"core/security/keyvault"}, got)

	require.Empty(t, NewTerraform().Extract("", "."))
	require.Empty(t, NewTerraform().Extract("resource \"a\" \"b\" {}\n", "."))
}

func TestTerraformUnitLoadAndFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"infra/main.tf":              &fstest.MapFile{Data: []byte("module \"a\" {\n  source = \"./core/a\"\n}\n")},
		"infra/variables.tf":         &fstest.MapFile{Data: []byte("variable \"location\" {}\n")},
		"infra/NOTES.TF":             &fstest.MapFile{Data: []byte("not terraform")},
		"infra/core/a/main.tf":       &fstest.MapFile{Data: []byte("")},
		"infra/core/a/README.md":     &fstest.MapFile{Data: []byte("docs")},
		"infra/core/empty/README.md": &fstest.MapFile{Data: []byte("docs")},
	}
	tf := NewTerraform()

	unit, ok := tf.Unit("core/a/main.tf")
	require.True(t, ok)
	require.Equal(t, "core/a", unit)

	unit, ok = tf.Unit("main.tf")
	require.True(t, ok)
	require.Equal(t, ".", unit)

	_, ok = tf.Unit("core/a/README.md")
	require.False(t, ok)

	_, ok = tf.Unit("core/a/MAIN.TF")
	require.False(t, ok)

	files, err := tf.Files(fsys, "infra")
	require.NoError(t, err)
	require.Equal(t, []string{"infra/main.tf", "infra/variables.tf"}, files)

	content, err := tf.Load(fsys, "infra")
	require.NoError(t, err)
	require.Contains(t, content, "variable \"location\"")
	require.Equal(t, []string{"infra/core/a"}, tf.Extract(content, tf.Dir("infra")))

	_, err = tf.Load(fsys, "infra/core/empty")
	require.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = tf.Load(fsys, "infra/core/nope")
	require.Error(t, err)
}

func TestRegistryDetect(t *testing.T) {
	r := NewDefaultRegistry()
	require.Equal(t, []string{"bicep", "terraform"}, r.Names())

	both := fstest.MapFS{
		"infra/main.bicep": &fstest.MapFile{},
		"infra/main.tf":    &fstest.MapFile{},
	}
	d, err := r.Detect(both, "infra")
	require.NoError(t, err)
	require.Equal(t, "bicep", d.Name())

	tfOnly := fstest.MapFS{"infra/main.tf": &fstest.MapFile{}}
	d, err = r.Detect(tfOnly, "infra")
	require.NoError(t, err)
	require.Equal(t, "terraform", d.Name())

	_, err = r.Detect(fstest.MapFS{"infra/readme.md": &fstest.MapFile{}}, "infra")
	require.ErrorIs(t, err, ErrUnknownDialect)
}

func TestRegistryLookup(t *testing.T) {
	r := NewDefaultRegistry()
	tfOnly := fstest.MapFS{"infra/main.tf": &fstest.MapFile{}}

	d, err := r.Lookup(tfOnly, "infra", "auto")
	require.NoError(t, err)
	require.Equal(t, "terraform", d.Name())

	d, err = r.Lookup(tfOnly, "infra", "bicep")
	require.NoError(t, err)
	require.Equal(t, "bicep", d.Name())

	_, err = r.Lookup(tfOnly, "infra", "pulumi")
	require.ErrorIs(t, err, ErrUnknownDialect)
}
