package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"statuecraft.ai/internal/datapack"
	"statuecraft.ai/internal/mcb"
	"statuecraft.ai/internal/persistence/exportdb"
	"statuecraft.ai/internal/protocol"
	"statuecraft.ai/internal/settings"
)

// SuccessMessage is the quick message sent after a completed export.
const SuccessMessage = "Model Exported Successfully"

// ConfigError is a configuration problem the user has to fix in the project
// settings. Silent errors have already been shown through the notifier.
type ConfigError struct {
	Code   string
	Title  string
	Body   string
	Silent bool
}

func (e *ConfigError) Error() string { return e.Title + ": " + e.Body }

// Error is an export failure with the notice code reported for it.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Notifier shows quick messages and error dialogs in the editor.
type Notifier interface {
	Notify(m protocol.NoticeMsg)
}

// Archiver keeps a copy of the program text and returns where it went.
type Archiver interface {
	Put(id, project, text string) (string, error)
}

// Recorder adds an export to the history index.
type Recorder interface {
	Record(ctx context.Context, e exportdb.Export) error
}

type Options struct {
	Files  datapack.FileWriter // required
	Notify Notifier
	// Archive and Index are optional.
	Archive Archiver
	Index   Recorder
	Logger  *log.Logger
	Now     func() time.Time
}

type Exporter struct {
	files   datapack.FileWriter
	notify  Notifier
	archive Archiver
	index   Recorder
	logger  *log.Logger
	now     func() time.Time
}

func New(opts Options) *Exporter {
	e := &Exporter{
		files:   opts.Files,
		notify:  opts.Notify,
		archive: opts.Archive,
		index:   opts.Index,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if e.files == nil {
		e.files = datapack.OSWriter{}
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard, "", 0)
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Export builds the program and writes it to the destination of the
// configured mode. When the destination is unset, the built result is
// returned with a *ConfigError and nothing is written.
func (e *Exporter) Export(ctx context.Context, in Input) (*Result, error) {
	s := in.Settings
	project := s.Project()

	res, err := Build(in)
	if err != nil {
		var be *Error
		code := protocol.ErrInternal
		if errors.As(err, &be) {
			code = be.Code
		}
		e.showError(project, code, "Export failed", err.Error())
		return nil, err
	}
	if res.Raised {
		e.logger.Printf("project %s: max distance %.2f does not reach every bone; using %.2f", project, in.Rig.MaxDistance, res.Distance)
	}

	out := s.OutputPath()
	if out == "" {
		cerr := missingOutput(s.Statue.ExportMode)
		e.showError(project, cerr.Code, cerr.Title, cerr.Body)
		return res, cerr
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if err := e.write(s, out, res); err != nil {
		e.showError(project, protocol.ErrWrite, "Export failed", err.Error())
		return res, &Error{Code: protocol.ErrWrite, Err: err}
	}
	res.OutputPath = out

	now := e.now()
	res.ID = exportdb.NewID(now)
	if e.archive != nil {
		path, err := e.archive.Put(res.ID, project, res.Text)
		if err != nil {
			e.logger.Printf("project %s: archive %s: %v", project, res.ID, err)
		} else {
			res.ArchivePath = path
		}
	}
	if e.index != nil {
		rec := exportdb.Export{
			ID:          res.ID,
			Project:     project,
			Mode:        s.Statue.ExportMode,
			OutputPath:  out,
			ArchivePath: res.ArchivePath,
			Digest:      exportdb.Digest(res.Text),
			Bones:       res.Bones,
			Variants:    res.Variants,
			Distance:    res.Distance,
			CreatedAt:   now,
		}
		if err := e.index.Record(ctx, rec); err != nil {
			e.logger.Printf("project %s: index %s: %v", project, res.ID, err)
		}
	}

	e.logger.Printf("project %s: exported %d bones, %d variants to %s (%s)", project, res.Bones, res.Variants, out, res.ID)
	if e.notify != nil {
		e.notify.Notify(protocol.Notice(project, res.ID, SuccessMessage, now))
	}
	return res, nil
}

func (e *Exporter) write(s settings.Settings, out string, res *Result) error {
	if s.Statue.ExportMode != settings.ModeDatapack {
		if err := e.files.WriteFile(out, []byte(res.Text)); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		return nil
	}
	files, err := mcb.Flatten(res.Program, mcb.FlattenOptions{
		Namespace:     s.Project(),
		FlagObjective: s.Statue.InternalScoreboardObjective,
		PackFormat:    s.Statue.PackFormat,
		Description:   "Statue " + s.Project(),
		LoadFunction:  "install",
	})
	if err != nil {
		return err
	}
	if err := datapack.Write(e.files, out, files); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

func (e *Exporter) showError(project, code, title, body string) {
	if e.notify == nil {
		e.logger.Printf("project %s: %s: %s: %s", project, code, title, body)
		return
	}
	e.notify.Notify(protocol.Error(project, code, title, body, e.now()))
}

func missingOutput(mode string) *ConfigError {
	if mode == settings.ModeDatapack {
		return &ConfigError{
			Code:   protocol.ErrConfig,
			Title:  "Data Pack Path Not Defined",
			Body:   "Set statue.data_pack_path in the project settings before exporting.",
			Silent: true,
		}
	}
	return &ConfigError{
		Code:   protocol.ErrConfig,
		Title:  "MC-Build File Path Not Defined",
		Body:   "Set statue.mcb_file_path in the project settings before exporting.",
		Silent: true,
	}
}
