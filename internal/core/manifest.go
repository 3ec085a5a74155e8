package core

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// File kinds recorded in the manifest.
const (
	KindRewritten = "rewritten"
	KindCopied    = "copied"
)

type manifestRun struct {
	id         string
	sourceRoot string
	contentDir string
	startedAt  int64
	finishedAt int64
	filesTotal int
}

type manifestFile struct {
	path   string
	kind   string
	size   int64
	sha256 string
}

func newManifestFile(relPath, kind string, data []byte) manifestFile {
	sum := sha256.Sum256(data)
	return manifestFile{
		path:   relPath,
		kind:   kind,
		size:   int64(len(data)),
		sha256: hex.EncodeToString(sum[:]),
	}
}

// copyWithDigest copies src to dst and records the copied bytes' digest.
func copyWithDigest(src, dst, relPath string) (manifestFile, error) {
	h := sha256.New()
	n, err := copyFile(src, dst, h)
	if err != nil {
		return manifestFile{}, err
	}
	return manifestFile{
		path:   relPath,
		kind:   KindCopied,
		size:   n,
		sha256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// writeManifest builds the manifest in a temp file and renames it over path,
// so readers see either the previous run or this one.
func writeManifest(path string, run manifestRun, files []manifestFile, unresolved []UnresolvedRef) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	db, err := openDBAt(tmpPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := initSchema(db); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := insertRun(tx, run); err != nil {
		tx.Rollback()
		return err
	}
	for _, f := range files {
		if err := insertFile(tx, f); err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, ref := range unresolved {
		if err := insertUnresolved(tx, ref); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if err := db.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
