// Package archive keeps a compressed copy of every exported program so that
// earlier exports can be inspected or restored after the output file has been
// overwritten.
package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

// Header is the first line of every archive file.
type Header struct {
	Version   int    `json:"version"`
	ID        string `json:"id"`
	Project   string `json:"project"`
	CreatedAt string `json:"created_at"`
}

// Store writes archives under Dir, one directory per project.
type Store struct {
	Dir string
}

// Path is where Put stores the export id of project.
func (s Store) Path(id, project string) string {
	return filepath.Join(s.Dir, project, id+".mc.zst")
}

// Put compresses text to <Dir>/<project>/<id>.mc.zst and returns the path.
// The file is written to a temporary name first so a reader never sees a
// partial archive.
func (s Store) Put(id, project, text string) (string, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return "", fmt.Errorf("archive: empty dir")
	}
	if id == "" || project == "" {
		return "", fmt.Errorf("archive: missing id or project")
	}
	path := s.Path(id, project)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := writeFile(tmp, Header{
		Version:   Version,
		ID:        id,
		Project:   project,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}, text); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return path, nil
}

func writeFile(path string, h Header, text string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(h)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if _, err := bw.WriteString(text); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

// Get reads an archive written by Put.
func Get(path string) (Header, string, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, "", err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, "", err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, "", fmt.Errorf("archive header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, "", fmt.Errorf("archive header: %w", err)
	}
	if h.Version != Version {
		return h, "", fmt.Errorf("archive: unsupported version %d", h.Version)
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return h, "", fmt.Errorf("archive body: %w", err)
	}
	return h, string(body), nil
}
