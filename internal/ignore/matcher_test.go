package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatcher_DefaultAndUserOverrides(t *testing.T) {
	m := NewMatcher([]string{
		"legacy/**",
		"!legacy/keep/app.bicep",
		"*.bak",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: ".git/config", isDir: false, ignored: true},
		{path: ".azure/dev/.env", isDir: false, ignored: true},
		{path: "modules/.terraform/modules.json", isDir: false, ignored: true},
		{path: "node_modules/pkg/index.js", isDir: false, ignored: true},
		{path: "legacy/old.bicep", isDir: false, ignored: true},
		{path: "legacy/keep/app.bicep", isDir: false, ignored: false},
		{path: "core/host/app.bicep.bak", isDir: false, ignored: true},
		{path: "core/host/app.bicep", isDir: false, ignored: false},
	}

	for _, tc := range cases {
		got := m.ShouldIgnore(tc.path, tc.isDir)
		if got != tc.ignored {
			t.Fatalf("path %s: expected ignored=%v, got %v", tc.path, tc.ignored, got)
		}
	}
}

func TestMatcher_NegatedDirectoryRule(t *testing.T) {
	m := NewMatcher([]string{
		"core/",
		"!core/host/",
	})

	if !m.ShouldIgnore("core/database/sql.bicep", false) {
		t.Fatalf("expected core/database/sql.bicep to be ignored")
	}
	if m.ShouldIgnore("core/host/app.bicep", false) {
		t.Fatalf("expected core/host/app.bicep to be included")
	}
}

func TestMatcher_AnchoredRule(t *testing.T) {
	m := NewMatcher([]string{"/app.bicep"})

	if !m.ShouldIgnore("app.bicep", false) {
		t.Fatalf("expected root app.bicep to be ignored")
	}
	if m.ShouldIgnore("core/app.bicep", false) {
		t.Fatalf("expected nested app.bicep to be included")
	}
}

func TestMatcher_NilIgnoresNothing(t *testing.T) {
	var m *Matcher
	if m.ShouldIgnore(".git/config", false) {
		t.Fatalf("expected nil matcher to ignore nothing")
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()

	m, err := Load(root)
	if err != nil {
		t.Fatalf("load without ignore file: %v", err)
	}
	if m.ShouldIgnore("core/a.bicep", false) {
		t.Fatalf("expected core/a.bicep to be included by default")
	}

	content := "# generated modules\ngenerated/\n"
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("write ignore file: %v", err)
	}

	m, err = Load(root)
	if err != nil {
		t.Fatalf("load ignore file: %v", err)
	}
	if !m.ShouldIgnore("generated/app.bicep", false) {
		t.Fatalf("expected generated/app.bicep to be ignored")
	}
	if !m.ShouldIgnore(".git/HEAD", false) {
		t.Fatalf("expected defaults to still apply")
	}
}
