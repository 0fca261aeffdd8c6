// Main entry point: CLI argument parsing, signal handling, and TUI initialization.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"app-selector/internal/candidate"
	"app-selector/internal/catalog"
	"app-selector/internal/config"
	"app-selector/internal/launch"
	"app-selector/internal/logging"
	"app-selector/internal/request"
)

// setupSignalHandler turns SIGTERM, SIGHUP and SIGQUIT into a terminate
// message so teardown still runs. SIGINT is handled by Bubbletea. The
// returned value holds the exit code for the signal received, if any.
func setupSignalHandler(p *tea.Program) *atomic.Int32 {
	code := new(atomic.Int32)
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	go func() {
		sig := <-c
		code.Store(int32(128 + int(sig.(syscall.Signal))))
		p.Send(terminateMsg{reason: sig.String()})
	}()
	return code
}

// exitCode maps the program result to the process exit status. An
// interrupt from outside the program ends it with ErrInterrupted.
func exitCode(runErr error, sigCode int32) int {
	switch {
	case errors.Is(runErr, tea.ErrInterrupted):
		return ExitSIGINT
	case runErr != nil:
		return ExitError
	}
	return int(sigCode)
}

func main() {
	args := os.Args[1:]
	cmd := "pick"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "help":
		printUsage()
		return
	case "pick", "compose", "locale", "catalog":
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(ExitError)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	log := logging.NewOrNop(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		OutputPaths: []string{cfg.Log.File},
	})
	defer log.Sync()

	var code int
	switch cmd {
	case "pick":
		b, err := parsePickArgs(args, os.Stdin)
		if errors.Is(err, pflag.ErrHelp) {
			printUsage()
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitError)
		}
		code = runPicker(cfg, log, b)
	case "compose":
		code = cmdCompose(cfg, log)
	case "locale":
		code = cmdLocale(cfg, args)
	case "catalog":
		code = cmdCatalog(cfg, log, args)
	}
	if code != 0 {
		log.Sync()
		os.Exit(code)
	}
}

func printUsage() {
	fmt.Print(`Usage: app-selector [command] [options]

Commands:
    pick [options]            Resolve a request and show the picker (default)
    compose                   Build a request interactively, then pick
    locale <tag>              Change the language of the running picker
    catalog import <dir>      Import app manifests (*.yaml) from a directory
    catalog import-flatpak    Import installed Flatpak apps
    catalog list              List catalog apps and their controls

Pick options:
    --bundle FILE|-           Read the request bundle (JSON) from FILE or stdin
    --operation OP            App control operation, e.g. share or view
    --mime TYPE               MIME type of the data
    --uri URI                 URI of the data
    --window-id ID            Window id passed to the launched app
    --caller-pid PID          Pid of the requesting process
    --caller-noti APP         App id to notify when the picker ends
    --extra APP               Explicit candidate app id (repeatable)

Examples:
    app-selector --operation share --mime image/png --uri file:///tmp/a.png
    app-selector pick --bundle request.json --extra org.gnome.Loupe
    app-selector locale ko_KR.UTF-8
    app-selector catalog import ~/.local/share/app-selector/apps

Config: ~/.config/app-selector/config.toml (or $APP_SELECTOR_CONFIG)
`)
}

// runPicker hands b to a running instance when there is one, otherwise runs
// the picker session in this process.
func runPicker(cfg config.Config, log *logging.Logger, b *request.Bundle) int {
	if cfg.Control.ReuseInstance {
		err := sendControl(cfg.Control.Socket, controlEnvelope{Kind: controlKindRequest, Bundle: b})
		if err == nil {
			log.Info("request handed to running instance", zap.String("socket", cfg.Control.Socket))
			return 0
		}
		if !errors.Is(err, errNoInstance) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
	}

	cat, err := catalog.Open(cfg.Catalog.Path, log.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer cat.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syncManifests(ctx, cat, cfg.Catalog.Manifests, log)

	launcher := launch.NewExecLauncher(cat, log.Logger)
	notifier := launch.NewNotifier(launcher, launch.SocketMessenger{Path: cfg.Notify.DaemonSocket}, os.Getpid(), log.Logger)
	s := newSession(ctx,
		candidate.NewResolver(cat, cat, log.Logger),
		launcher,
		notifier,
		newStringTable(cfg.Picker.Locale),
		sessionConfig{
			watchdogTimeout: cfg.Picker.WatchdogTimeout,
			infoDuration:    cfg.Picker.InfoDuration,
			startupPoll:     startupPollInterval,
			pauseTerminate:  cfg.Picker.PauseTerminate,
		},
		log.Logger,
	)

	p := tea.NewProgram(newModel(s, b), tea.WithAltScreen(), tea.WithReportFocus())

	if cfg.Control.ReuseInstance {
		srv, err := listenControl(cfg.Control.Socket, s.log)
		if err != nil {
			s.log.Warn("control socket unavailable", zap.Error(err))
		} else {
			srv.serve(p.Send)
			defer srv.Close()
		}
	}

	sigCode := setupSignalHandler(p)
	_, runErr := p.Run()

	if s.terminate("program exited") {
		s.log.Warn("program exited before the session ended")
	}
	code := exitCode(runErr, sigCode.Load())
	if code == ExitError {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
	}
	return code
}

func syncManifests(ctx context.Context, cat *catalog.Catalog, dir string, log *logging.Logger) {
	if dir == "" {
		return
	}
	if _, err := cat.ImportManifests(ctx, dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("manifest import failed", zap.String("dir", dir), zap.Error(err))
	}
}

// cmdCompose builds a request with a form and runs the picker with it.
func cmdCompose(cfg config.Config, log *logging.Logger) int {
	var ops []string
	if cat, err := catalog.Open(cfg.Catalog.Path, log.Logger); err == nil {
		ops, _ = cat.Operations(context.Background())
		cat.Close()
	}

	var v composeValues
	if err := composeForm(ops, &v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return runPicker(cfg, log, v.bundle())
}

// cmdLocale tells the running picker that the language changed.
func cmdLocale(cfg config.Config, args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", errLocaleRequired)
		fmt.Fprintln(os.Stderr, "Usage: app-selector locale <tag>")
		return ExitError
	}
	if err := sendControl(cfg.Control.Socket, controlEnvelope{Kind: controlKindLocale, Locale: args[0]}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return 0
}

func cmdCatalog(cfg config.Config, log *logging.Logger, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: app-selector catalog <import DIR|import-flatpak|list>")
		return ExitError
	}

	cat, err := catalog.Open(cfg.Catalog.Path, log.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer cat.Close()
	ctx := context.Background()

	switch args[0] {
	case "import":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "Error: %v\n", errDirRequired)
			return ExitError
		}
		n, err := cat.ImportManifests(ctx, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		fmt.Printf("Imported %d apps from %s\n", n, args[1])
	case "import-flatpak":
		n, err := cat.ImportFlatpak(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		fmt.Printf("Imported %d Flatpak apps\n", n)
	case "list":
		entries, err := cat.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		printCatalog(entries)
	default:
		fmt.Fprintf(os.Stderr, "Unknown catalog command: %s\n", args[0])
		return ExitError
	}
	return 0
}

func printCatalog(entries []catalog.Entry) {
	fmt.Println("Catalog apps:")
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, e := range entries {
		fmt.Printf("  App:   %s\n", e.Label)
		fmt.Printf("  ID:    %s\n", e.AppID)
		fmt.Printf("  Kind:  %s\n", e.Kind)
		if e.Exec != "" {
			fmt.Printf("  Exec:  %s\n", e.Exec)
		}
		for _, c := range e.Controls {
			fmt.Printf("  Control: %s mime=%q uri=%q\n", c.Operation, c.MIME, c.Scheme)
		}
		fmt.Println()
	}
}
