package cli

import (
	"strings"
	"testing"
)

func TestBuildCheckHookBlock(t *testing.T) {
	block := BuildCheckHookBlock("/repo/path", "apps/web")

	for _, expected := range []string{
		HookStart,
		`repo_root="/repo/path"`,
		"command -v azd-infra",
		`azd-infra check "apps/web") || exit 1`,
		HookEnd,
	} {
		if !strings.Contains(block, expected) {
			t.Fatalf("expected hook block to contain %q, got:\n%s", expected, block)
		}
	}

	if !strings.Contains(BuildCheckHookBlock("/repo", ""), `azd-infra check ".")`) {
		t.Fatalf("expected empty project path to check the repository root")
	}
}

func TestUpsertCheckHookReplacesExistingBlock(t *testing.T) {
	existing := "#!/bin/sh\n\necho before\n" + HookStart + "\nold block\n" + HookEnd + "\n\necho after\n"
	updated := UpsertCheckHook(existing, "/repo/path", ".")

	if strings.Contains(updated, "old block") {
		t.Fatalf("expected old hook block to be replaced, got:\n%s", updated)
	}
	if strings.Count(updated, HookStart) != 1 || strings.Count(updated, HookEnd) != 1 {
		t.Fatalf("expected exactly one hook block after update, got:\n%s", updated)
	}
	if !strings.Contains(updated, "echo before") || !strings.Contains(updated, "echo after") {
		t.Fatalf("expected non azd-infra hook content to be preserved, got:\n%s", updated)
	}
}

func TestUpsertCheckHookAppendsToForeignHook(t *testing.T) {
	updated := UpsertCheckHook("npm test", "/repo", ".")

	if !strings.HasPrefix(updated, "#!/bin/sh\nnpm test\n") {
		t.Fatalf("expected shebang to be added before existing content, got:\n%s", updated)
	}
	if !strings.HasSuffix(updated, HookEnd+"\n") {
		t.Fatalf("expected hook block to be appended, got:\n%s", updated)
	}

	fresh := UpsertCheckHook("", "/repo", ".")
	if !strings.HasPrefix(fresh, "#!/bin/sh\n\n"+HookStart) {
		t.Fatalf("expected new hook to start with shebang, got:\n%s", fresh)
	}
}
