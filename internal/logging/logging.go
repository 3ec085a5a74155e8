// Package logging wraps charm/log with the events vaultpub reports.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging.
type Logger struct {
	*log.Logger
}

// New creates a logger writing to w at info level.
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level.
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// ParseLevel parses a level name. Empty means info.
func ParseLevel(name string) (log.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(strings.ToLower(name))
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	return New(io.Discard)
}

// SyncStarted logs the start of a sync run.
func (l *Logger) SyncStarted(runID, sourceRoot, contentDir string) {
	l.Info("sync started",
		"run", runID,
		"source", sourceRoot,
		"dest", contentDir)
}

// AttachmentsMissing warns that no attachment folder was found under the source root.
func (l *Logger) AttachmentsMissing(folders []string) {
	l.Warn("no attachments folder found under publish subtree",
		"expected", strings.Join(folders, ", "))
}

// RuleDropped records a custom rewrite rule that could not be compiled.
func (l *Logger) RuleDropped(err error) {
	l.Debug("rewrite rule dropped", "reason", err)
}

// FileSynced logs one file written to the destination.
func (l *Logger) FileSynced(relPath, kind string) {
	l.Debug("file synced",
		"file", relPath,
		"kind", kind)
}

// SyncCompleted logs the summary of a sync run.
func (l *Logger) SyncCompleted(files int, sourceRoot, contentDir string, duration time.Duration) {
	l.Info("synced files",
		"files", files,
		"source", sourceRoot,
		"dest", contentDir,
		"duration", duration.Round(time.Millisecond))
}

// ExistingContentReused warns that no vault was configured and the previous
// content tree is kept as-is.
func (l *Logger) ExistingContentReused(contentDir string) {
	l.Warn("VAULT_PATH is not set; using existing content as-is (no sync performed)",
		"dest", contentDir)
}

// ConfigFieldMissing warns that a field was not found in the site config file.
func (l *Logger) ConfigFieldMissing(field, file string) {
	l.Warn("field not found in site config; the generator may have changed its config shape",
		"field", field,
		"file", file)
}

// SiteConfigRendered logs the values written into the site config file.
func (l *Logger) SiteConfigRendered(title, baseURL string) {
	l.Info("updated site config",
		"title", title,
		"base_url", baseURL)
}

// SnapshotUpdated logs a refreshed content snapshot.
func (l *Logger) SnapshotUpdated(files int, snapshotDir string) {
	l.Info("updated content snapshot",
		"files", files,
		"dir", snapshotDir)
}
