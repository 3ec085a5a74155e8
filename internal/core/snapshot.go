package core

import (
	"fmt"
	"os"
)

// Snapshot replaces snapshotDir with a copy of contentDir and returns the
// number of files copied.
func Snapshot(contentDir, snapshotDir string) (int, error) {
	if !pathExists(contentDir) {
		return 0, fmt.Errorf("missing content dir %s: run 'vaultpub sync' first", contentDir)
	}
	if err := os.RemoveAll(snapshotDir); err != nil {
		return 0, err
	}
	return copyTree(contentDir, snapshotDir)
}
