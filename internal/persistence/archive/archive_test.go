package archive

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_PutGet(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	want := "function install {\n\tscoreboard objectives add aj.i dummy\n}\n"

	path, err := s.Put("01HZX3Q9J5T8W2V6K4M7N1P0RS", "demo", want)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if path != filepath.Join(s.Dir, "demo", "01HZX3Q9J5T8W2V6K4M7N1P0RS.mc.zst") {
		t.Fatalf("path=%q", path)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}

	h, got, err := Get(path)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Fatalf("text mismatch: got=%q want=%q", got, want)
	}
	if h.ID != "01HZX3Q9J5T8W2V6K4M7N1P0RS" || h.Project != "demo" || h.Version != Version {
		t.Fatalf("header=%+v", h)
	}
}

func TestStore_PutRejectsMissingFields(t *testing.T) {
	if _, err := (Store{}).Put("a", "b", "x"); err == nil {
		t.Fatalf("expected error for empty dir")
	}
	if _, err := (Store{Dir: t.TempDir()}).Put("", "b", "x"); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestGet_RejectsPlainFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.mc.zst")
	if err := os.WriteFile(p, []byte("not zstd"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := Get(p); err == nil {
		t.Fatalf("expected error")
	}
}
