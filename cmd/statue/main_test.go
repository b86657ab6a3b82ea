package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"statuecraft.ai/internal/exporter"
	"statuecraft.ai/internal/protocol"
	"statuecraft.ai/internal/settings"
)

const rigYAML = `
bones:
  - name: head
    pos: [0, 1.5, 0]
    custom_model_data: 1
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadInput_FlagOverrides(t *testing.T) {
	dir := t.TempDir()
	cfg := runConfig{
		RigPath: writeFile(t, dir, "rig.yaml", rigYAML),
		Mode:    settings.ModeDatapack,
		Out:     filepath.Join(dir, "pack.zip"),
	}
	in, err := loadInput(cfg)
	if err != nil {
		t.Fatalf("loadInput: %v", err)
	}
	if in.Settings.Statue.ExportMode != settings.ModeDatapack || in.Settings.OutputPath() != cfg.Out {
		t.Fatalf("overrides not applied: %+v", in.Settings.Statue)
	}
	if in.Settings.Statue.MCBFilePath != "" {
		t.Fatalf("mcb path should stay unset")
	}
	if len(in.Rig.Bones) != 1 {
		t.Fatalf("bones=%d", len(in.Rig.Bones))
	}
}

func TestLoadInput_InvalidSettingsIsConfigError(t *testing.T) {
	dir := t.TempDir()
	cfg := runConfig{
		RigPath: writeFile(t, dir, "rig.yaml", rigYAML),
		Mode:    "zip",
	}
	_, err := loadInput(cfg)
	var cerr *exporter.ConfigError
	if !errors.As(err, &cerr) || cerr.Silent {
		t.Fatalf("err=%v", err)
	}
	if cerr.Code != protocol.ErrConfig {
		t.Fatalf("code=%q want %q", cerr.Code, protocol.ErrConfig)
	}

	cfg.Mode = ""
	cfg.SettingsPath = writeFile(t, dir, "settings.yaml", "statue: [\n")
	_, err = loadInput(cfg)
	if !errors.As(err, &cerr) || cerr.Code != protocol.ErrConfig {
		t.Fatalf("unreadable settings: err=%v", err)
	}
}

func TestRunConfig_Check(t *testing.T) {
	cases := []struct {
		cfg runConfig
		ok  bool
	}{
		{runConfig{RigPath: "rig.yaml"}, true},
		{runConfig{BuildPath: "build.json"}, true},
		{runConfig{}, false},
		{runConfig{RigPath: "rig.yaml", BuildPath: "build.json"}, false},
		{runConfig{RigPath: "rig.yaml", NotifyListen: "127.0.0.1:8089"}, false},
		{runConfig{RigPath: "rig.yaml", NotifyListen: "127.0.0.1:8089", Watch: true}, true},
	}
	for i, c := range cases {
		if err := c.cfg.check(); (err == nil) != c.ok {
			t.Fatalf("case %d: err=%v want ok=%v", i, err, c.ok)
		}
	}
}

func TestModTimes_DetectsChanges(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "rig.yaml", rigYAML)
	missing := filepath.Join(dir, "settings.yaml")

	before := modTimes([]string{p, missing})
	if !strings.Contains(before, missing+":missing;") {
		t.Fatalf("missing file not marked: %s", before)
	}
	writeFile(t, dir, "rig.yaml", rigYAML+"    exported: true\n")
	if modTimes([]string{p, missing}) == before {
		t.Fatalf("size change not detected")
	}
}

func TestExitCode(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	cases := []struct {
		err  error
		want int
		logs bool
	}{
		{nil, 0, false},
		{&exporter.ConfigError{Title: "t", Body: "b", Silent: true}, 2, false},
		{&exporter.ConfigError{Title: "t", Body: "b"}, 2, true},
		{&exporter.Error{Code: protocol.ErrWrite, Err: errors.New("disk full")}, 1, false},
		{context.Canceled, 1, false},
		{errors.New("open rig.yaml: no such file"), 1, true},
	}
	for i, c := range cases {
		buf.Reset()
		if got := exitCode(c.err, logger); got != c.want {
			t.Fatalf("case %d: got %d want %d", i, got, c.want)
		}
		if logged := buf.Len() > 0; logged != c.logs {
			t.Fatalf("case %d: logged=%v want %v (%q)", i, logged, c.logs, buf.String())
		}
	}
}
