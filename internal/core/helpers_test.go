package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ryotapoi/vaultpub/internal/testutil"
)

// --- Test helpers ---

func copyVault(t *testing.T, name string) string {
	t.Helper()
	root := filepath.Join("..", "..", "testdata", name)
	dst := filepath.Join(t.TempDir(), "vault")
	if err := testutil.CopyDir(root, dst); err != nil {
		t.Fatalf("copy vault: %v", err)
	}
	return dst
}

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), "vault")
	if err := testutil.WriteFiles(dst, files); err != nil {
		t.Fatalf("write vault: %v", err)
	}
	return dst
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree, err := testutil.ReadTree(root)
	if err != nil {
		t.Fatalf("read tree: %v", err)
	}
	return tree
}

func mustParseConfig(t *testing.T, doc string) Config {
	t.Helper()
	cfg, err := ParseConfig([]byte(doc))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

// vaultSyncConfig is the configuration used with testdata/vault_sync.
const vaultSyncConfig = `
ignorePatterns:
  - ".obsidian/**"
  - "private/**"
`

// indexFor builds an attachment index over bare relative paths.
func indexFor(paths []string, folders ...string) *AttachmentIndex {
	files := make([]SourceFile, len(paths))
	for i, p := range paths {
		files[i] = SourceFile{AbsPath: p, RelPath: p}
	}
	if len(folders) == 0 {
		folders = []string{DefaultAttachmentFolder}
	}
	return BuildAttachmentIndex(files, folders)
}

func isBackslashSeparator() bool { return filepath.Separator == '\\' }

func writeVaultFile(vault, rel, content string) error {
	return os.WriteFile(filepath.Join(vault, filepath.FromSlash(rel)), []byte(content), 0o644)
}
