package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"statuecraft.ai/internal/exporter"
	"statuecraft.ai/internal/persistence/archive"
	"statuecraft.ai/internal/persistence/exportdb"
	"statuecraft.ai/internal/protocol"
	"statuecraft.ai/internal/rig"
	"statuecraft.ai/internal/settings"
	"statuecraft.ai/internal/transport/notify"
)

type runConfig struct {
	SettingsPath    string
	RigPath         string
	BuildPath       string
	StaticAnimation string
	Mode            string
	Out             string

	NotifyListen string
	Watch        bool
}

// check rejects flag combinations that cannot work.
func (c runConfig) check() error {
	if (c.RigPath == "") == (c.BuildPath == "") {
		return errors.New("exactly one of -rig or -build is required")
	}
	// Editors only reach the hub while the process keeps running.
	if c.NotifyListen != "" && !c.Watch {
		return errors.New("-notify_listen requires -watch")
	}
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		settingsPath    = flag.String("settings", "", "path to settings.yaml (default: built-in defaults)")
		rigPath         = flag.String("rig", "", "path to rig.yaml")
		buildPath       = flag.String("build", "", "path to editor build data JSON (instead of -rig)")
		staticAnimation = flag.String("static_animation", "", "animation uuid holding the static frame (default: build data's static_animation_uuid)")
		mode            = flag.String("mode", "", "export mode override: mcb or datapack")
		out             = flag.String("out", "", "output path override for the selected mode")
		archiveDir      = flag.String("archive", "", "directory for compressed copies of every export (empty to disable)")
		dbPath          = flag.String("db", "", "sqlite export history path (empty to disable)")
		notifyListen    = flag.String("notify_listen", "", "loopback address serving editor notices at /v1/notify; requires -watch (empty to disable)")
		watch           = flag.Bool("watch", false, "re-export whenever the settings or rig file changes")
		watchEvery      = flag.Duration("watch_interval", time.Second, "poll interval for -watch")
		printText       = flag.Bool("print", false, "print the MC-Build program to stdout")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[statue] ", log.LstdFlags|log.Lmicroseconds)

	cfg := runConfig{
		SettingsPath:    strings.TrimSpace(*settingsPath),
		RigPath:         strings.TrimSpace(*rigPath),
		BuildPath:       strings.TrimSpace(*buildPath),
		StaticAnimation: strings.TrimSpace(*staticAnimation),
		Mode:            strings.TrimSpace(*mode),
		Out:             strings.TrimSpace(*out),
		NotifyListen:    strings.TrimSpace(*notifyListen),
		Watch:           *watch,
	}
	if err := cfg.check(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := exporter.Options{Logger: logger}
	notifiers := notify.Multi{notify.LogNotifier{Log: logger}}

	if p := strings.TrimSpace(*dbPath); p != "" {
		idx, err := exportdb.OpenSQLite(p)
		if err != nil {
			logger.Printf("open export history: %v", err)
			return 1
		}
		defer idx.Close()
		opts.Index = idx
	}
	if d := strings.TrimSpace(*archiveDir); d != "" {
		opts.Archive = archive.Store{Dir: d}
	}

	if addr := cfg.NotifyListen; addr != "" {
		hub := notify.NewHub(logger)
		notifiers = append(notifiers, hub)

		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
			rw.WriteHeader(http.StatusOK)
			_, _ = rw.Write([]byte("ok\n"))
		})
		mux.HandleFunc("/v1/notify", hub.WSHandler())
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			<-ctx.Done()
			ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel2()
			_ = srv.Shutdown(ctx2)
		}()
		go func() {
			logger.Printf("notices on ws://%s/v1/notify", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("notify listener: %v", err)
			}
		}()
	}
	opts.Notify = notifiers
	ex := exporter.New(opts)

	once := func() error {
		in, err := loadInput(cfg)
		if err != nil {
			return err
		}
		res, err := ex.Export(ctx, in)
		if res != nil && *printText {
			fmt.Print(res.Text)
		}
		return err
	}

	if !cfg.Watch {
		return exitCode(once(), logger)
	}

	files := cfg.watched()
	last := modTimes(files)
	if err := once(); err != nil {
		exitCode(err, logger)
	}
	logger.Printf("watching %s", strings.Join(files, ", "))
	t := time.NewTicker(*watchEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return 0
		case <-t.C:
			cur := modTimes(files)
			if cur == last {
				continue
			}
			last = cur
			if err := once(); err != nil {
				exitCode(err, logger)
			}
		}
	}
}

func loadInput(cfg runConfig) (exporter.Input, error) {
	s, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		return exporter.Input{}, &exporter.ConfigError{Code: protocol.ErrConfig, Title: "Invalid settings", Body: err.Error()}
	}
	if cfg.Mode != "" {
		s.Statue.ExportMode = cfg.Mode
	}
	if cfg.Out != "" {
		if s.Statue.ExportMode == settings.ModeDatapack {
			s.Statue.DataPackPath = cfg.Out
		} else {
			s.Statue.MCBFilePath = cfg.Out
		}
	}
	if err := s.Validate(); err != nil {
		return exporter.Input{}, &exporter.ConfigError{Code: protocol.ErrConfig, Title: "Invalid settings", Body: err.Error()}
	}

	var r *rig.Rig
	if cfg.BuildPath != "" {
		raw, err := os.ReadFile(cfg.BuildPath)
		if err != nil {
			return exporter.Input{}, err
		}
		r, err = rig.LoadBuildData(raw, cfg.StaticAnimation)
		if err != nil {
			return exporter.Input{}, fmt.Errorf("%s: %w", cfg.BuildPath, err)
		}
	} else {
		r, err = rig.LoadFile(cfg.RigPath)
		if err != nil {
			return exporter.Input{}, err
		}
	}
	return exporter.Input{Settings: s, Rig: r}, nil
}

func (c runConfig) watched() []string {
	var out []string
	for _, p := range []string{c.SettingsPath, c.RigPath, c.BuildPath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// modTimes fingerprints files by modification time and size. Missing files
// contribute nothing, so their reappearance counts as a change.
func modTimes(files []string) string {
	var sb strings.Builder
	for _, p := range files {
		st, err := os.Stat(p)
		if err != nil {
			sb.WriteString(p + ":missing;")
			continue
		}
		fmt.Fprintf(&sb, "%s:%d:%d;", p, st.ModTime().UnixNano(), st.Size())
	}
	return sb.String()
}

// exitCode logs err and maps it to the process status: 2 for configuration
// problems the user has to fix, 1 for everything else.
func exitCode(err error, logger *log.Logger) int {
	if err == nil {
		return 0
	}
	var cerr *exporter.ConfigError
	if errors.As(err, &cerr) {
		if !cerr.Silent {
			logger.Printf("%s: %s", cerr.Title, cerr.Body)
		}
		return 2
	}
	// Exporter errors have been reported through the notifiers already.
	var xerr *exporter.Error
	if !errors.As(err, &xerr) && !errors.Is(err, context.Canceled) {
		logger.Printf("export: %v", err)
	}
	return 1
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
