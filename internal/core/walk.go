package core

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SourceFile is one regular file found under the source root.
type SourceFile struct {
	AbsPath string
	RelPath string // forward-slash normalized, relative to the walk root
}

// pathCollator orders paths the way an English-locale string comparison does.
// A Collator is not safe for concurrent use, so callers create their own.
type pathCollator struct {
	c *collate.Collator
}

func newPathCollator() *pathCollator {
	return &pathCollator{c: collate.New(language.English)}
}

// compare falls back to byte order when the collation keys are equal so the
// ordering is total.
func (pc *pathCollator) compare(a, b string) int {
	if r := pc.c.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

func (pc *pathCollator) sortStrings(s []string) {
	sort.SliceStable(s, func(i, j int) bool { return pc.compare(s[i], s[j]) < 0 })
}

// Walk returns every regular file beneath root, sorted by relative path.
// Directories and non-regular entries such as symlinks are never emitted.
func Walk(root string) ([]SourceFile, error) {
	var files []SourceFile
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, SourceFile{AbsPath: p, RelPath: NormalizePath(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	pc := newPathCollator()
	sort.SliceStable(files, func(i, j int) bool {
		return pc.compare(files[i].RelPath, files[j].RelPath) < 0
	})
	return files, nil
}
