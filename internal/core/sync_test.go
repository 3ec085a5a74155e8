package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func syncFixture(t *testing.T, vault, contentDir, manifest string) *SyncResult {
	t.Helper()
	result, err := Sync(SyncOptions{
		VaultPath:    vault,
		ContentDir:   contentDir,
		ManifestPath: manifest,
		Config:       mustParseConfig(t, vaultSyncConfig),
	})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return result
}

func TestSync_FixtureVault(t *testing.T) {
	vault := copyVault(t, "vault_sync")
	contentDir := filepath.Join(t.TempDir(), "content")
	result := syncFixture(t, vault, contentDir, "")

	if result.FilesSynced != 7 || result.Rewritten != 3 || result.Copied != 4 {
		t.Errorf("counts = %d/%d/%d, want 7/3/4", result.FilesSynced, result.Rewritten, result.Copied)
	}
	if !result.AttachmentsFound {
		t.Error("expected attachments to be found")
	}
	if result.RunID == "" {
		t.Error("expected a run id")
	}

	tree := readTree(t, contentDir)
	wantHome := `# Home

Start with [[notes/Foo]] or [[Foo]].
See [[Page#Section|Shown Text]] and ![[attachments/diagram.png]].
External: [site](https://example.com/page) and [mail](mailto:a@b.com).
Missing: ![[missing.png]]
Private: [[private/secret]]
`
	if diff := cmp.Diff(wantHome, tree["Home.md"]); diff != "" {
		t.Errorf("Home.md mismatch (-want +got):\n%s", diff)
	}
	wantFoo := `# Foo

Back to [Home](../Home#top). Picture: ![d](attachments/diagram.png)
`
	if diff := cmp.Diff(wantFoo, tree["notes/Foo.md"]); diff != "" {
		t.Errorf("notes/Foo.md mismatch (-want +got):\n%s", diff)
	}
	wantDeep := "Nearby diagram: ![[notes/sub/attachments/diagram.png]]\nConfig: [cfg](settings.json)\n"
	if diff := cmp.Diff(wantDeep, tree["notes/sub/Deep.md"]); diff != "" {
		t.Errorf("notes/sub/Deep.md mismatch (-want +got):\n%s", diff)
	}

	wantUnresolved := []UnresolvedRef{{SourcePath: "Home.md", Syntax: SyntaxWikilink, Target: "missing.png"}}
	if diff := cmp.Diff(wantUnresolved, result.Unresolved); diff != "" {
		t.Errorf("Unresolved mismatch (-want +got):\n%s", diff)
	}
}

func TestSync_CopiesNonMarkdownByteForByte(t *testing.T) {
	vault := copyVault(t, "vault_sync")
	contentDir := filepath.Join(t.TempDir(), "content")
	syncFixture(t, vault, contentDir, "")

	for _, rel := range []string{"attachments/diagram.png", "notes/sub/attachments/diagram.png", "attachments/Report.PDF", "notes/sub/settings.json"} {
		src, err := os.ReadFile(filepath.Join(vault, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatal(err)
		}
		dst, err := os.ReadFile(filepath.Join(contentDir, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("missing %s: %v", rel, err)
		}
		if string(src) != string(dst) {
			t.Errorf("%s differs after copy", rel)
		}
	}
}

func TestSync_IgnoredFilesNeverPublished(t *testing.T) {
	vault := copyVault(t, "vault_sync")
	contentDir := filepath.Join(t.TempDir(), "content")
	syncFixture(t, vault, contentDir, "")

	tree := readTree(t, contentDir)
	for rel := range tree {
		if strings.HasPrefix(rel, "private/") || strings.HasPrefix(rel, ".obsidian/") {
			t.Errorf("ignored file published: %s", rel)
		}
	}
	if !strings.Contains(tree["Home.md"], "[[private/secret]]") {
		t.Error("link to an ignored note must still be rewritten independently")
	}
}

func TestSync_Idempotent(t *testing.T) {
	vault := copyVault(t, "vault_sync")
	contentDir := filepath.Join(t.TempDir(), "content")
	manifest := filepath.Join(t.TempDir(), "manifest.sqlite")

	syncFixture(t, vault, contentDir, manifest)
	first := readTree(t, contentDir)
	syncFixture(t, vault, contentDir, manifest)
	second := readTree(t, contentDir)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second sync changed the tree (-first +second):\n%s", diff)
	}
}

func TestSync_RemovesStaleContent(t *testing.T) {
	vault := writeVault(t, map[string]string{"a.md": "[[b.md]]"})
	contentDir := filepath.Join(t.TempDir(), "content")
	if err := os.MkdirAll(filepath.Join(contentDir, "old"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(contentDir, "old", "stale.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result, err := Sync(SyncOptions{VaultPath: vault, ContentDir: contentDir})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.AttachmentsFound {
		t.Error("vault has no attachments folder")
	}
	want := map[string]string{"a.md": "[[b]]"}
	if diff := cmp.Diff(want, readTree(t, contentDir)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestSync_PublishSubpath(t *testing.T) {
	vault := writeVault(t, map[string]string{
		"Public/x.md":                   "![[p.png]]",
		"Public/attachments/p.png":      "png",
		"Private/y.md":                  "y",
		"Private/attachments/other.png": "png",
	})
	contentDir := filepath.Join(t.TempDir(), "content")
	result, err := Sync(SyncOptions{VaultPath: vault, PublishSubpath: "Public", ContentDir: contentDir})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.SourceRoot != filepath.Join(vault, "Public") {
		t.Errorf("SourceRoot = %q", result.SourceRoot)
	}
	want := map[string]string{
		"x.md":              "![[attachments/p.png]]",
		"attachments/p.png": "png",
	}
	if diff := cmp.Diff(want, readTree(t, contentDir)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestSync_InvalidRuleDoesNotAbort(t *testing.T) {
	vault := writeVault(t, map[string]string{"a.md": "[[B.md]] text"})
	contentDir := filepath.Join(t.TempDir(), "content")
	cfg := mustParseConfig(t, `
linkRewriteRules:
  - match: "(unclosed"
    replace: "X"
  - match: "text"
    replace: "words"
`)
	if _, err := Sync(SyncOptions{VaultPath: vault, ContentDir: contentDir, Config: cfg}); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	want := map[string]string{"a.md": "[[B]] words"}
	if diff := cmp.Diff(want, readTree(t, contentDir)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestSync_VaultPathRequired(t *testing.T) {
	contentDir := filepath.Join(t.TempDir(), "content")
	_, err := Sync(SyncOptions{ContentDir: contentDir})
	if !errors.Is(err, ErrVaultPathRequired) {
		t.Errorf("err = %v, want ErrVaultPathRequired", err)
	}
	// allowed, but nothing to reuse
	_, err = Sync(SyncOptions{ContentDir: contentDir, AllowExisting: true})
	if !errors.Is(err, ErrVaultPathRequired) {
		t.Errorf("err = %v, want ErrVaultPathRequired", err)
	}
}

func TestSync_AllowExistingContent(t *testing.T) {
	contentDir := filepath.Join(t.TempDir(), "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(contentDir, "kept.md"), []byte("kept"), 0o644); err != nil {
		t.Fatal(err)
	}
	result, err := Sync(SyncOptions{ContentDir: contentDir, AllowExisting: true})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !result.Skipped {
		t.Error("expected skipped result")
	}
	if !strings.Contains(result.String(), "reusing existing content") {
		t.Errorf("String() = %q", result.String())
	}
	if diff := cmp.Diff(map[string]string{"kept.md": "kept"}, readTree(t, contentDir)); diff != "" {
		t.Errorf("content changed (-want +got):\n%s", diff)
	}
}

func TestSync_SourceRootMissing(t *testing.T) {
	vault := writeVault(t, map[string]string{"a.md": "a"})
	_, err := Sync(SyncOptions{VaultPath: vault, PublishSubpath: "Nope", ContentDir: filepath.Join(t.TempDir(), "c")})
	if !errors.Is(err, ErrSourceRootMissing) {
		t.Errorf("err = %v, want ErrSourceRootMissing", err)
	}
}

func TestSync_ContentOverlapsSource(t *testing.T) {
	vault := writeVault(t, map[string]string{"a.md": "a"})
	_, err := Sync(SyncOptions{VaultPath: vault, ContentDir: filepath.Dir(vault)})
	if !errors.Is(err, ErrContentOverlapsSource) {
		t.Errorf("err = %v, want ErrContentOverlapsSource", err)
	}
	if _, statErr := os.Stat(filepath.Join(vault, "a.md")); statErr != nil {
		t.Errorf("source was touched: %v", statErr)
	}
}

func TestSync_ContentDirInsideSource(t *testing.T) {
	vault := writeVault(t, map[string]string{
		"a.md":                     "[[b.md]]",
		"attachments/p.png":        "png",
		"quartz/content/old.md":    "stale",
		"quartz/content/sub/x.png": "stale",
	})
	contentDir := filepath.Join(vault, "quartz", "content")
	manifest := ManifestPath(vault)
	opts := SyncOptions{VaultPath: vault, ContentDir: contentDir, ManifestPath: manifest}

	result, err := Sync(opts)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.FilesSynced != 2 {
		t.Errorf("FilesSynced = %d, want 2", result.FilesSynced)
	}
	want := map[string]string{
		"a.md":              "[[b]]",
		"attachments/p.png": "png",
	}
	if diff := cmp.Diff(want, readTree(t, contentDir)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	// the manifest written by the first run is not published by the second
	if _, err := Sync(opts); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if diff := cmp.Diff(want, readTree(t, contentDir)); diff != "" {
		t.Errorf("second run tree mismatch (-want +got):\n%s", diff)
	}
}

func TestSourceRoot(t *testing.T) {
	base := t.TempDir()
	got, err := SourceRoot(base, "")
	if err != nil || got != base {
		t.Errorf("SourceRoot(base, \"\") = %q, %v", got, err)
	}
	got, err = SourceRoot(base, "Public/Notes")
	if err != nil || got != filepath.Join(base, "Public", "Notes") {
		t.Errorf("relative subpath = %q, %v", got, err)
	}
	abs := filepath.Join(t.TempDir(), "elsewhere")
	got, err = SourceRoot(base, abs)
	if err != nil || got != abs {
		t.Errorf("absolute subpath = %q, %v", got, err)
	}
}

func TestRewriteDocument(t *testing.T) {
	vault := copyVault(t, "vault_sync")
	cfg := mustParseConfig(t, vaultSyncConfig)
	res, err := RewriteDocument(vault, "", "notes/sub/Deep.md", cfg)
	if err != nil {
		t.Fatalf("RewriteDocument: %v", err)
	}
	if !strings.Contains(res.Text, "![[notes/sub/attachments/diagram.png]]") {
		t.Errorf("Text = %q", res.Text)
	}

	if _, err := RewriteDocument(vault, "", "private/secret.md", cfg); err == nil {
		t.Error("expected error for ignored file")
	}
	if _, err := RewriteDocument(vault, "", "notes/sub/settings.json", cfg); err == nil {
		t.Error("expected error for non-markdown file")
	}
}
