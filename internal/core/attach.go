package core

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// DefaultAttachmentFolder is the folder name used when none is configured.
const DefaultAttachmentFolder = "attachments"

// AttachmentIndex maps a lowercase basename (extension included) to the
// root-relative paths of attachment files sharing it, in collation order.
type AttachmentIndex struct {
	folders  []string
	byName   map[string][]string
	detected bool
}

// BuildAttachmentIndex registers every file that has a path segment equal
// (case-insensitively) to one of folders.
func BuildAttachmentIndex(files []SourceFile, folders []string) *AttachmentIndex {
	lowered := make([]string, len(folders))
	for i, f := range folders {
		lowered[i] = strings.ToLower(f)
	}
	idx := &AttachmentIndex{
		folders: lowered,
		byName:  make(map[string][]string),
	}
	for _, f := range files {
		if !inAttachmentFolder(f.RelPath, lowered) {
			continue
		}
		idx.detected = true
		key := assetBasenameKey(f.RelPath)
		idx.byName[key] = append(idx.byName[key], f.RelPath)
	}
	pc := newPathCollator()
	for _, paths := range idx.byName {
		pc.sortStrings(paths)
	}
	return idx
}

func inAttachmentFolder(relPath string, folders []string) bool {
	for _, seg := range strings.Split(relPath, "/") {
		lower := strings.ToLower(seg)
		for _, name := range folders {
			if lower == name {
				return true
			}
		}
	}
	return false
}

// Detected reports whether any attachment-eligible file was found.
func (idx *AttachmentIndex) Detected() bool { return idx.detected }

// Folders returns the lowercase folder names the index was built with.
func (idx *AttachmentIndex) Folders() []string { return idx.folders }

// Len returns the number of distinct basenames.
func (idx *AttachmentIndex) Len() int { return len(idx.byName) }

// Lookup returns the candidate paths for a basename, matched case-insensitively.
func (idx *AttachmentIndex) Lookup(name string) []string {
	return idx.byName[assetBasenameKey(name)]
}

// AttachmentResolver maps an asset link target, as written in the document at
// docRelPath, to a root-relative path. ok is false when nothing matched and
// the target must be left as written.
type AttachmentResolver interface {
	ResolveAttachment(docRelPath, target string) (resolved string, ok bool)
}

// Resolution strategy names accepted in the config.
const (
	ResolutionShallowest = "shallowest"
	ResolutionUnique     = "unique"
)

// NewResolver returns the resolver for a strategy name. Empty means shallowest.
func NewResolver(strategy string, idx *AttachmentIndex) (AttachmentResolver, error) {
	switch strategy {
	case "", ResolutionShallowest:
		return &ShallowestResolver{Index: idx}, nil
	case ResolutionUnique:
		return &UniqueResolver{Index: idx}, nil
	}
	return nil, fmt.Errorf("unknown attachment resolution %q (must be %s or %s)", strategy, ResolutionShallowest, ResolutionUnique)
}

// ShallowestResolver picks the candidate with the fewest path segments when
// made relative to the linking document's directory. Ties keep index order.
type ShallowestResolver struct {
	Index *AttachmentIndex
}

func (r *ShallowestResolver) ResolveAttachment(docRelPath, target string) (string, bool) {
	candidates := r.Index.Lookup(target)
	if len(candidates) == 0 {
		return target, false
	}
	docDir := path.Dir(docRelPath)
	best := candidates[0]
	bestDepth := -1
	for _, c := range candidates {
		depth := relativeDepth(docDir, c)
		if bestDepth < 0 || depth < bestDepth {
			bestDepth = depth
			best = c
		}
	}
	return best, true
}

// relativeDepth counts the segments of target relative to dir.
func relativeDepth(dir, target string) int {
	rel, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(target))
	if err != nil {
		return len(strings.Split(target, "/"))
	}
	return len(strings.Split(filepath.ToSlash(rel), "/"))
}

// UniqueResolver resolves only basenames with exactly one candidate.
type UniqueResolver struct {
	Index *AttachmentIndex
}

func (r *UniqueResolver) ResolveAttachment(_, target string) (string, bool) {
	candidates := r.Index.Lookup(target)
	if len(candidates) != 1 {
		return target, false
	}
	return candidates[0], true
}
