// Package datapack writes flattened command programs to disk, either as a
// datapack directory or as a single zip archive.
package datapack

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"statuecraft.ai/internal/mcb"
)

// FileWriter stores one file. Implementations create missing parent
// directories.
type FileWriter interface {
	WriteFile(path string, data []byte) error
}

// OSWriter writes to the local filesystem through a temporary file and a
// rename.
type OSWriter struct{}

func (OSWriter) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// IsZip reports whether path names a zip archive rather than a directory.
func IsZip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

// Write stores files under dest as a directory, or as a zip when dest ends in
// ".zip".
func Write(w FileWriter, dest string, files []mcb.File) error {
	if IsZip(dest) {
		b, err := Zip(files)
		if err != nil {
			return err
		}
		return w.WriteFile(dest, b)
	}
	return WriteDir(w, dest, files)
}

// WriteDir stores every file below root.
func WriteDir(w FileWriter, root string, files []mcb.File) error {
	for _, f := range files {
		if err := checkPath(f.Path); err != nil {
			return err
		}
		if err := w.WriteFile(filepath.Join(root, filepath.FromSlash(f.Path)), f.Data); err != nil {
			return fmt.Errorf("datapack: %s: %w", f.Path, err)
		}
	}
	return nil
}

// zipEpoch keeps archives byte-identical across exports of the same program.
var zipEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Zip packs files sorted by path.
func Zip(files []mcb.File) ([]byte, error) {
	sorted := append([]mcb.File(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range sorted {
		if err := checkPath(f.Path); err != nil {
			return nil, err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Path,
			Method:   zip.Deflate,
			Modified: zipEpoch,
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func checkPath(p string) error {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return fmt.Errorf("datapack: bad file path %q", p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return fmt.Errorf("datapack: bad file path %q", p)
		}
	}
	return nil
}
