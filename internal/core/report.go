package core

import (
	"fmt"
	"os"
	"time"
)

// ReportOptions controls which fields to return.
type ReportOptions struct {
	Fields []string // nil/empty = all
}

// ReportRun describes the sync run recorded in the manifest.
type ReportRun struct {
	ID         string
	SourceRoot string
	ContentDir string
	StartedAt  time.Time
	FinishedAt time.Time
}

// ReportResult contains the manifest summary of the last sync.
type ReportResult struct {
	Run        *ReportRun
	FilesTotal int
	Rewritten  int
	Copied     int
	Unresolved []UnresolvedRef // sorted by source path, then target
}

// ValidReportFields lists the fields Report accepts.
var ValidReportFields = map[string]bool{
	"run":         true,
	"files_total": true,
	"rewritten":   true,
	"copied":      true,
	"unresolved":  true,
}

func validateReportFields(fields []string) error {
	for _, f := range fields {
		if !ValidReportFields[f] {
			return fmt.Errorf("unknown report field: %s", f)
		}
	}
	return nil
}

// Report reads the manifest written by the last successful sync.
func Report(manifestPath string, opts ReportOptions) (*ReportResult, error) {
	if err := validateReportFields(opts.Fields); err != nil {
		return nil, err
	}
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("manifest not found: run 'vaultpub sync' first")
	}

	db, err := openDBAt(manifestPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	result := &ReportResult{}

	if isFieldActive("run", opts.Fields) {
		var run ReportRun
		var started, finished int64
		row := db.QueryRow(`SELECT id, source_root, content_dir, started_at, finished_at FROM runs ORDER BY started_at DESC LIMIT 1`)
		if err := row.Scan(&run.ID, &run.SourceRoot, &run.ContentDir, &started, &finished); err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(started, 0)
		run.FinishedAt = time.Unix(finished, 0)
		result.Run = &run
	}

	if isFieldActive("files_total", opts.Fields) {
		if err := db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&result.FilesTotal); err != nil {
			return nil, err
		}
	}

	if isFieldActive("rewritten", opts.Fields) {
		if err := db.QueryRow(`SELECT COUNT(*) FROM files WHERE kind = ?`, KindRewritten).Scan(&result.Rewritten); err != nil {
			return nil, err
		}
	}

	if isFieldActive("copied", opts.Fields) {
		if err := db.QueryRow(`SELECT COUNT(*) FROM files WHERE kind = ?`, KindCopied).Scan(&result.Copied); err != nil {
			return nil, err
		}
	}

	if isFieldActive("unresolved", opts.Fields) {
		rows, err := db.Query(`SELECT source_path, syntax, target FROM unresolved ORDER BY source_path, target, id`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		for rows.Next() {
			var ref UnresolvedRef
			if err := rows.Scan(&ref.SourcePath, &ref.Syntax, &ref.Target); err != nil {
				return nil, err
			}
			result.Unresolved = append(result.Unresolved, ref)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	return result, nil
}
