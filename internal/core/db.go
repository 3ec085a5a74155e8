package core

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	dataDirName      = ".vaultpub"
	manifestFileName = "manifest.sqlite"
)

// ManifestPath returns the manifest location for a workspace root.
func ManifestPath(root string) string {
	return filepath.Join(root, dataDirName, manifestFileName)
}

func ensureParentDir(p string) error {
	return os.MkdirAll(filepath.Dir(p), 0o755)
}

func openDBAt(path string) (*sql.DB, error) {
	return sql.Open("sqlite", fmt.Sprintf("file:%s", path))
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			source_root  TEXT NOT NULL,
			content_dir  TEXT NOT NULL,
			started_at   INTEGER NOT NULL,
			finished_at  INTEGER NOT NULL,
			files_total  INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS files (
			path    TEXT PRIMARY KEY,
			kind    TEXT NOT NULL,
			size    INTEGER NOT NULL,
			sha256  TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_files_kind ON files(kind);`,
		`CREATE TABLE IF NOT EXISTS unresolved (
			id           INTEGER PRIMARY KEY,
			source_path  TEXT NOT NULL,
			syntax       TEXT NOT NULL,
			target       TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_unresolved_source ON unresolved(source_path);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// dbExecer is satisfied by *sql.DB and *sql.Tx.
type dbExecer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertRun(db dbExecer, run manifestRun) error {
	_, err := db.Exec(
		`INSERT INTO runs (id, source_root, content_dir, started_at, finished_at, files_total)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.id, run.sourceRoot, run.contentDir, run.startedAt, run.finishedAt, run.filesTotal,
	)
	return err
}

func insertFile(db dbExecer, f manifestFile) error {
	_, err := db.Exec(
		`INSERT INTO files (path, kind, size, sha256) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET kind=excluded.kind, size=excluded.size, sha256=excluded.sha256`,
		f.path, f.kind, f.size, f.sha256,
	)
	return err
}

func insertUnresolved(db dbExecer, ref UnresolvedRef) error {
	_, err := db.Exec(
		`INSERT INTO unresolved (source_path, syntax, target) VALUES (?, ?, ?)`,
		ref.SourcePath, ref.Syntax, ref.Target,
	)
	return err
}
