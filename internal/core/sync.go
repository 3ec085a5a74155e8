package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ryotapoi/vaultpub/internal/logging"
)

var (
	// ErrVaultPathRequired is returned when no vault is configured and reuse of
	// existing content is not allowed (or there is none).
	ErrVaultPathRequired = errors.New("VAULT_PATH environment variable is required for sync")
	// ErrSourceRootMissing is returned when vault path + publish subpath does not exist.
	ErrSourceRootMissing = errors.New("source publish path does not exist")
	// ErrContentOverlapsSource is returned when clearing the content dir would delete the source.
	ErrContentOverlapsSource = errors.New("content dir overlaps the source root")
)

// Workspace paths relative to the workspace root.
const (
	ContentDirName     = "quartz/content"
	SiteConfigFileName = "quartz/quartz.config.ts"
	SnapshotDirName    = "content-snapshot"
)

// SyncOptions configures one sync run.
type SyncOptions struct {
	VaultPath      string
	PublishSubpath string
	ContentDir     string
	ManifestPath   string // empty: no manifest is written
	AllowExisting  bool
	Config         Config
	Logger         *logging.Logger
}

// SyncResult summarizes a sync run.
type SyncResult struct {
	RunID            string
	SourceRoot       string
	ContentDir       string
	FilesSynced      int
	Rewritten        int
	Copied           int
	Unresolved       []UnresolvedRef
	AttachmentsFound bool
	Skipped          bool
	StartTime        time.Time
	EndTime          time.Time
}

// String returns a human-readable summary of the sync result.
func (r *SyncResult) String() string {
	if r.Skipped {
		return fmt.Sprintf("Sync skipped: reusing existing content in %q", r.ContentDir)
	}
	return fmt.Sprintf("Synced %d files from %q to %q", r.FilesSynced, r.SourceRoot, r.ContentDir)
}

// SourceRoot resolves the vault path joined with the publish subpath.
// An absolute subpath replaces the vault path.
func SourceRoot(vaultPath, publishSubpath string) (string, error) {
	p := vaultPath
	if publishSubpath != "" {
		if filepath.IsAbs(publishSubpath) {
			p = publishSubpath
		} else {
			p = filepath.Join(vaultPath, publishSubpath)
		}
	}
	return filepath.Abs(p)
}

// CollectFiles walks sourceRoot and drops ignored files.
func CollectFiles(sourceRoot string, cfg Config) ([]SourceFile, error) {
	all, err := Walk(sourceRoot)
	if err != nil {
		return nil, err
	}
	return filterIgnored(all, CompileIgnores(cfg.IgnorePatterns, cfg.IgnoreOptions())), nil
}

// Sync republishes the vault into the content dir. The content dir is deleted
// and rebuilt; a failure while writing files leaves it partially written.
func Sync(opts SyncOptions) (*SyncResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	contentDir, err := filepath.Abs(opts.ContentDir)
	if err != nil {
		return nil, err
	}
	result := &SyncResult{
		RunID:      uuid.NewString(),
		ContentDir: contentDir,
		StartTime:  time.Now(),
	}

	if opts.VaultPath == "" {
		if opts.AllowExisting && pathExists(contentDir) {
			logger.ExistingContentReused(contentDir)
			result.Skipped = true
			result.EndTime = time.Now()
			return result, nil
		}
		return nil, ErrVaultPathRequired
	}

	sourceRoot, err := SourceRoot(opts.VaultPath, opts.PublishSubpath)
	if err != nil {
		return nil, err
	}
	if !pathExists(sourceRoot) {
		return nil, fmt.Errorf("%w: %s", ErrSourceRootMissing, sourceRoot)
	}
	if isWithin(contentDir, sourceRoot) {
		return nil, fmt.Errorf("%w: %s contains %s", ErrContentOverlapsSource, contentDir, sourceRoot)
	}
	result.SourceRoot = sourceRoot
	logger.SyncStarted(result.RunID, sourceRoot, contentDir)

	files, err := CollectFiles(sourceRoot, opts.Config)
	if err != nil {
		return nil, err
	}
	files = excludeOutputs(files, contentDir, opts.ManifestPath)
	index := BuildAttachmentIndex(files, opts.Config.AttachmentFolders())
	result.AttachmentsFound = index.Detected()
	if !index.Detected() {
		logger.AttachmentsMissing(index.Folders())
	}
	resolver, err := NewResolver(opts.Config.AttachmentResolution, index)
	if err != nil {
		return nil, err
	}

	if err := os.RemoveAll(contentDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return nil, err
	}

	rules, dropped := CompileRules(opts.Config.LinkRewriteRules)
	for _, d := range dropped {
		logger.RuleDropped(d)
	}
	rewriter := NewRewriter(resolver, rules)

	manifest := make([]manifestFile, 0, len(files))
	for _, f := range files {
		dst := filepath.Join(contentDir, filepath.FromSlash(f.RelPath))
		var entry manifestFile
		if isTextDocument(f.RelPath) {
			entry, err = rewriteFile(rewriter, f, dst, result)
			result.Rewritten++
		} else {
			entry, err = copyWithDigest(f.AbsPath, dst, f.RelPath)
			result.Copied++
		}
		if err != nil {
			return nil, err
		}
		manifest = append(manifest, entry)
		logger.FileSynced(f.RelPath, entry.kind)
	}
	result.FilesSynced = len(files)
	result.EndTime = time.Now()

	if opts.ManifestPath != "" {
		run := manifestRun{
			id:         result.RunID,
			sourceRoot: sourceRoot,
			contentDir: contentDir,
			startedAt:  result.StartTime.Unix(),
			finishedAt: result.EndTime.Unix(),
			filesTotal: result.FilesSynced,
		}
		if err := writeManifest(opts.ManifestPath, run, manifest, result.Unresolved); err != nil {
			return nil, fmt.Errorf("write manifest: %w", err)
		}
	}

	logger.SyncCompleted(result.FilesSynced, sourceRoot, contentDir, result.EndTime.Sub(result.StartTime))
	return result, nil
}

// excludeOutputs drops files that the run itself writes: anything under the
// content dir and the manifest with its temp file, when they live under the
// source root.
func excludeOutputs(files []SourceFile, contentDir, manifestPath string) []SourceFile {
	var manifestAbs string
	if manifestPath != "" {
		if abs, err := filepath.Abs(manifestPath); err == nil {
			manifestAbs = abs
		}
	}
	out := make([]SourceFile, 0, len(files))
	for _, f := range files {
		if isWithin(contentDir, f.AbsPath) {
			continue
		}
		if manifestAbs != "" && (f.AbsPath == manifestAbs || f.AbsPath == manifestAbs+".tmp") {
			continue
		}
		out = append(out, f)
	}
	return out
}

func rewriteFile(rw *Rewriter, f SourceFile, dst string, result *SyncResult) (manifestFile, error) {
	content, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return manifestFile{}, err
	}
	rewritten := rw.Rewrite(f.RelPath, string(content))
	result.Unresolved = append(result.Unresolved, rewritten.Unresolved...)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return manifestFile{}, err
	}
	data := []byte(rewritten.Text)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return manifestFile{}, err
	}
	return newManifestFile(f.RelPath, KindRewritten, data), nil
}

// RewriteDocument rewrites a single note of the vault against a freshly built
// attachment index without writing anything.
func RewriteDocument(vaultPath, publishSubpath, relPath string, cfg Config) (*RewriteResult, error) {
	sourceRoot, err := SourceRoot(vaultPath, publishSubpath)
	if err != nil {
		return nil, err
	}
	if !pathExists(sourceRoot) {
		return nil, fmt.Errorf("%w: %s", ErrSourceRootMissing, sourceRoot)
	}
	files, err := CollectFiles(sourceRoot, cfg)
	if err != nil {
		return nil, err
	}
	relPath = NormalizePath(relPath)
	var doc *SourceFile
	for i := range files {
		if files[i].RelPath == relPath {
			doc = &files[i]
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("file not found under source root (or ignored): %s", relPath)
	}
	if !isTextDocument(doc.RelPath) {
		return nil, fmt.Errorf("not a markdown document: %s", relPath)
	}

	resolver, err := NewResolver(cfg.AttachmentResolution, BuildAttachmentIndex(files, cfg.AttachmentFolders()))
	if err != nil {
		return nil, err
	}
	rules, _ := CompileRules(cfg.LinkRewriteRules)
	content, err := os.ReadFile(doc.AbsPath)
	if err != nil {
		return nil, err
	}
	res := NewRewriter(resolver, rules).Rewrite(doc.RelPath, string(content))
	return &res, nil
}
