package dialect

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/hcl"
)

// Terraform treats every directory holding .tf files as one module.
type Terraform struct {
	lang *sitter.Language
}

// NewTerraform creates the Terraform dialect.
func NewTerraform() *Terraform {
	return &Terraform{lang: hcl.GetLanguage()}
}

func (t *Terraform) Name() string { return "terraform" }

func (t *Terraform) MainFile() string { return "main.tf" }

// EntryFile is the infra folder itself: the root module.
func (t *Terraform) EntryFile() string { return "." }

func (t *Terraform) Unit(file string) (string, bool) {
	if path.Ext(file) != ".tf" {
		return "", false
	}
	return path.Dir(path.Clean(file)), true
}

func (t *Terraform) Dir(module string) string {
	return module
}

// Load concatenates the module's .tf files in name order.
func (t *Terraform) Load(fsys fs.FS, module string) (string, error) {
	files, err := t.Files(fsys, module)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return "", err
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func (t *Terraform) Files(fsys fs.FS, module string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, module)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".tf" {
			continue
		}
		files = append(files, path.Join(module, entry.Name()))
	}
	if len(files) == 0 {
		return nil, &fs.PathError{Op: "load", Path: module, Err: fs.ErrNotExist}
	}
	sort.Strings(files)
	return files, nil
}

// Extract returns the local sources of the module blocks in content. Only
// plain string sources starting with ./ or ../ are local; registry, git and
// interpolated sources are skipped.
func (t *Terraform) Extract(content, dir string) []string {
	src := []byte(content)

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(t.lang)

	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return make([]string, 0)
	}
	defer tree.Close()

	refs := make([]string, 0)
	t.collectSources(tree.RootNode(), src, &refs)
	return uniqueJoin(dir, refs)
}

func (t *Terraform) collectSources(node *sitter.Node, src []byte, refs *[]string) {
	if node == nil {
		return
	}

	if node.Type() == "block" {
		if blockType(node, src) == "module" {
			if source, ok := moduleSource(node, src); ok {
				*refs = append(*refs, source)
			}
			return
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		t.collectSources(node.NamedChild(i), src, refs)
	}
}

func blockType(block *sitter.Node, src []byte) string {
	if block.NamedChildCount() == 0 {
		return ""
	}
	first := block.NamedChild(0)
	if first.Type() != "identifier" {
		return ""
	}
	return first.Content(src)
}

func moduleSource(block *sitter.Node, src []byte) (string, bool) {
	for i := 0; i < int(block.NamedChildCount()); i++ {
		body := block.NamedChild(i)
		if body.Type() != "body" {
			continue
		}
		for j := 0; j < int(body.NamedChildCount()); j++ {
			attr := body.NamedChild(j)
			if attr.Type() != "attribute" || attr.NamedChildCount() < 2 {
				continue
			}
			if attr.NamedChild(0).Content(src) != "source" {
				continue
			}
			return localSource(attr.NamedChild(1).Content(src))
		}
	}
	return "", false
}

func localSource(expr string) (string, bool) {
	expr = strings.TrimSpace(expr)
	if strings.Contains(expr, "${") || strings.Contains(expr, "%{") {
		return "", false
	}
	value, err := strconv.Unquote(expr)
	if err != nil || !strings.HasPrefix(expr, `"`) {
		return "", false
	}
	if !strings.HasPrefix(value, "./") && !strings.HasPrefix(value, "../") {
		return "", false
	}
	return value, true
}

func (t *Terraform) CoreGlobs() []string {
	return []string{"core/**/*.tf"}
}

func (t *Terraform) AllGlobs() []string {
	return []string{"**/*.tf"}
}

func (t *Terraform) TemplatePath() string {
	return "templates/common/infra/terraform"
}
