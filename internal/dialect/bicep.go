package dialect

import (
	"io/fs"
	"path"
	"regexp"
	"strings"
)

var bicepModuleRe = regexp.MustCompile(`module\s+[\w_]+\s+'([^']+)'`)

// Bicep treats every .bicep file as one module.
type Bicep struct{}

// NewBicep creates the Bicep dialect.
func NewBicep() *Bicep {
	return &Bicep{}
}

func (b *Bicep) Name() string { return "bicep" }

func (b *Bicep) MainFile() string { return "main.bicep" }

func (b *Bicep) EntryFile() string { return "main.bicep" }

func (b *Bicep) Unit(file string) (string, bool) {
	if path.Ext(file) != ".bicep" {
		return "", false
	}
	return path.Clean(file), true
}

func (b *Bicep) Dir(module string) string {
	return path.Dir(module)
}

func (b *Bicep) Load(fsys fs.FS, module string) (string, error) {
	data, err := fs.ReadFile(fsys, module)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (b *Bicep) Files(fsys fs.FS, module string) ([]string, error) {
	info, err := fs.Stat(fsys, module)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "files", Path: module, Err: fs.ErrInvalid}
	}
	return []string{module}, nil
}

// Extract returns the local module references of content. Registry
// references such as br:registry/path:tag or ts:sub/rg/spec:v1 contain a
// scheme separator and are skipped.
func (b *Bicep) Extract(content, dir string) []string {
	matches := bicepModuleRe.FindAllStringSubmatch(content, -1)
	refs := make([]string, 0, len(matches))
	for _, match := range matches {
		if strings.Contains(match[1], ":") {
			continue
		}
		refs = append(refs, match[1])
	}
	return uniqueJoin(dir, refs)
}

func (b *Bicep) CoreGlobs() []string {
	return []string{"core/**/*.bicep", "abbreviations.json"}
}

func (b *Bicep) AllGlobs() []string {
	return []string{"**/*.bicep", "abbreviations.json"}
}

func (b *Bicep) TemplatePath() string {
	return "templates/common/infra/bicep"
}
