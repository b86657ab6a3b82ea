package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"statuecraft.ai/internal/persistence/archive"
	"statuecraft.ai/internal/persistence/exportdb"
)

type row struct {
	ID          string  `json:"id"`
	Project     string  `json:"project"`
	Mode        string  `json:"mode"`
	OutputPath  string  `json:"output_path"`
	ArchivePath string  `json:"archive_path,omitempty"`
	Digest      string  `json:"digest"`
	Bones       int     `json:"bones"`
	Variants    int     `json:"variants"`
	Distance    float64 `json:"distance"`
	CreatedAt   string  `json:"created_at"`
}

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "latest":
			latestCmd(os.Args[2:])
			return
		case "show":
			showCmd(os.Args[2:])
			return
		case "list":
			listCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func openIndex(path string) *exportdb.SQLiteIndex {
	if strings.TrimSpace(path) == "" {
		fmt.Fprintln(os.Stderr, "missing -db")
		os.Exit(2)
	}
	idx, err := exportdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	return idx
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbPath := fs.String("db", "./data/exports.sqlite", "sqlite export history path")
	project := fs.String("project", "", "project filter (optional)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	idx := openIndex(*dbPath)
	defer idx.Close()

	list, err := idx.List(context.Background(), strings.TrimSpace(*project), *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	for _, e := range list {
		_ = enc.Encode(toRow(e))
	}
}

func latestCmd(args []string) {
	fs := flag.NewFlagSet("latest", flag.ExitOnError)
	dbPath := fs.String("db", "./data/exports.sqlite", "sqlite export history path")
	project := fs.String("project", "", "project (required)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*project) == "" {
		fmt.Fprintln(os.Stderr, "missing -project")
		os.Exit(2)
	}
	idx := openIndex(*dbPath)
	defer idx.Close()

	e, err := idx.Latest(context.Background(), strings.TrimSpace(*project))
	if errors.Is(err, sql.ErrNoRows) {
		fmt.Fprintln(os.Stderr, "no exports for", *project)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	_ = json.NewEncoder(os.Stdout).Encode(toRow(e))
}

// showCmd prints the archived program of one export, or writes it to -out.
func showCmd(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	dbPath := fs.String("db", "./data/exports.sqlite", "sqlite export history path")
	id := fs.String("id", "", "export id (required)")
	outPath := fs.String("out", "", "write the program here instead of stdout (optional)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*id) == "" {
		fmt.Fprintln(os.Stderr, "missing -id")
		os.Exit(2)
	}
	idx := openIndex(*dbPath)
	defer idx.Close()

	_, h, text, err := restore(context.Background(), idx, strings.TrimSpace(*id))
	switch {
	case errors.Is(err, errUnknownExport), errors.Is(err, errNotArchived):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if strings.TrimSpace(*outPath) == "" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(*outPath, []byte(text), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
	fmt.Printf("show ok: id=%s project=%s archived=%s out=%s\n", h.ID, h.Project, h.CreatedAt, *outPath)
}

var (
	errUnknownExport = errors.New("unknown export")
	errNotArchived   = errors.New("export was not archived")
)

// restore reads the archived program of export id and checks it against the
// digest recorded in the index.
func restore(ctx context.Context, idx *exportdb.SQLiteIndex, id string) (exportdb.Export, archive.Header, string, error) {
	e, err := idx.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return e, archive.Header{}, "", fmt.Errorf("%w %s", errUnknownExport, id)
	}
	if err != nil {
		return e, archive.Header{}, "", fmt.Errorf("query: %w", err)
	}
	if e.ArchivePath == "" {
		return e, archive.Header{}, "", fmt.Errorf("%s: %w", e.ID, errNotArchived)
	}
	h, text, err := archive.Get(e.ArchivePath)
	if err != nil {
		return e, h, "", fmt.Errorf("read archive: %w", err)
	}
	if got := exportdb.Digest(text); got != e.Digest {
		return e, h, "", fmt.Errorf("digest mismatch: index=%s archive=%s", e.Digest, got)
	}
	return e, h, text, nil
}

func toRow(e exportdb.Export) row {
	return row{
		ID:          e.ID,
		Project:     e.Project,
		Mode:        e.Mode,
		OutputPath:  e.OutputPath,
		ArchivePath: e.ArchivePath,
		Digest:      e.Digest,
		Bones:       e.Bones,
		Variants:    e.Variants,
		Distance:    e.Distance,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
