package core

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// NormalizePath cleans a root-relative path: forward slashes, no leading "./".
func NormalizePath(p string) string {
	clean := filepath.ToSlash(filepath.Clean(p))
	return strings.TrimPrefix(clean, "./")
}

// extname returns the extension of the last segment of a slash path.
// A leading dot alone is not an extension: ".png" and "dir/.env" have none.
func extname(p string) string {
	base := path.Base(p)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 {
		return ""
	}
	return base[idx:]
}

// assetBasenameKey returns the lowercase filename with extension for asset lookup.
// Example: "sub/Image.PNG" → "image.png"
func assetBasenameKey(p string) string {
	return strings.ToLower(path.Base(filepath.ToSlash(p)))
}

// isTextDocument reports whether the file is rewritten rather than copied.
func isTextDocument(relPath string) bool {
	switch strings.ToLower(extname(relPath)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// isWithin reports whether child equals parent or lives below it. Both must be absolute.
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, "../"))
}

// copyFile copies src to dst byte for byte, creating dst's parent directories.
// The bytes are also written to tee when it is non-nil.
func copyFile(src, dst string, tee io.Writer) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	var w io.Writer = out
	if tee != nil {
		w = io.MultiWriter(out, tee)
	}
	n, err := io.Copy(w, in)
	if err != nil {
		out.Close()
		return n, err
	}
	return n, out.Close()
}

// copyTree mirrors every regular file under src into dst and returns the file count.
func copyTree(src, dst string) (int, error) {
	files, err := Walk(src)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, err
	}
	for _, f := range files {
		if _, err := copyFile(f.AbsPath, filepath.Join(dst, filepath.FromSlash(f.RelPath)), nil); err != nil {
			return 0, err
		}
	}
	return len(files), nil
}

// isFieldActive returns true if the field is requested (or if fields is empty, meaning all).
func isFieldActive(field string, fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
