package core

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func relPaths(files []SourceFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func TestWalk_FixtureVault(t *testing.T) {
	vault := copyVault(t, "vault_sync")
	files, err := Walk(vault)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{
		".obsidian/app.json",
		"attachments/diagram.png",
		"attachments/Report.PDF",
		"Home.md",
		"notes/Foo.md",
		"notes/sub/attachments/diagram.png",
		"notes/sub/Deep.md",
		"notes/sub/settings.json",
		"private/secret.md",
	}
	if diff := cmp.Diff(want, relPaths(files)); diff != "" {
		t.Errorf("Walk mismatch (-want +got):\n%s", diff)
	}
	for _, f := range files {
		if !filepath.IsAbs(f.AbsPath) {
			t.Errorf("AbsPath %q is not absolute", f.AbsPath)
		}
	}
}

func TestWalk_SkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	vault := writeVault(t, map[string]string{"a.md": "a"})
	if err := os.Symlink(filepath.Join(vault, "a.md"), filepath.Join(vault, "link.md")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	files, err := Walk(vault)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if diff := cmp.Diff([]string{"a.md"}, relPaths(files)); diff != "" {
		t.Errorf("Walk mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_EmptyDirsNotEmitted(t *testing.T) {
	vault := writeVault(t, map[string]string{"a/b.md": "b"})
	if err := os.MkdirAll(filepath.Join(vault, "empty", "deeper"), 0o755); err != nil {
		t.Fatal(err)
	}
	files, err := Walk(vault)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if diff := cmp.Diff([]string{"a/b.md"}, relPaths(files)); diff != "" {
		t.Errorf("Walk mismatch (-want +got):\n%s", diff)
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	if _, err := Walk(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}
