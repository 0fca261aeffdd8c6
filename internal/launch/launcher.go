// Package launch forwards a request to the chosen application and notifies
// the caller when the picker ends without a launch.
package launch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"app-selector/internal/catalog"
	"app-selector/internal/request"
)

// BundleEnv carries the forwarded bundle, JSON encoded, to the launched app.
const BundleEnv = "APP_SELECTOR_BUNDLE"

// Launcher is the platform launch primitive.
type Launcher interface {
	// Forward starts appID with the bundle and returns its pid.
	Forward(ctx context.Context, appID string, b *request.Bundle) (int, error)
	// IsRunning reports whether appID currently has a live process.
	IsRunning(ctx context.Context, appID string) bool
}

// EntrySource resolves how to start an app.
type EntrySource interface {
	Get(ctx context.Context, appID string) (catalog.Entry, error)
}

// ExecLauncher starts catalog apps as detached processes.
type ExecLauncher struct {
	entries EntrySource
	log     *zap.Logger

	// command builds the process; exec.Command outside tests.
	command func(name string, args ...string) *exec.Cmd

	mu      sync.Mutex
	started map[string]int
}

// NewExecLauncher returns a launcher backed by the catalog.
func NewExecLauncher(entries EntrySource, log *zap.Logger) *ExecLauncher {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExecLauncher{
		entries: entries,
		log:     log,
		command: exec.Command,
		started: make(map[string]int),
	}
}

// Forward implements Launcher.
func (l *ExecLauncher) Forward(ctx context.Context, appID string, b *request.Bundle) (int, error) {
	entry, err := l.entries.Get(ctx, appID)
	if err != nil {
		return 0, fmt.Errorf("forward %s: %w", appID, err)
	}

	name, args, err := commandLine(entry, b.Value(request.KeyURI))
	if err != nil {
		return 0, fmt.Errorf("forward %s: %w", appID, err)
	}

	payload, err := json.Marshal(b)
	if err != nil {
		return 0, fmt.Errorf("forward %s: encode bundle: %w", appID, err)
	}

	cmd := l.command(name, args...)
	cmd.Env = append(os.Environ(), BundleEnv+"="+string(payload))
	if w := b.Value(request.KeyWindowID); w != "" {
		cmd.Env = append(cmd.Env, "APP_SELECTOR_WINDOW_ID="+w)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("forward %s: %w", appID, err)
	}
	pid := cmd.Process.Pid

	// Reap the child; the picker may outlive it.
	go func() { _ = cmd.Wait() }()

	l.mu.Lock()
	l.started[appID] = pid
	l.mu.Unlock()

	l.log.Info("forwarded request",
		zap.String("app_id", appID),
		zap.String("kind", string(entry.Kind)),
		zap.Int("pid", pid),
	)
	return pid, nil
}

// IsRunning implements Launcher. Apps this launcher started are checked by
// pid; others through `flatpak ps` or pgrep.
func (l *ExecLauncher) IsRunning(ctx context.Context, appID string) bool {
	l.mu.Lock()
	pid, ok := l.started[appID]
	l.mu.Unlock()
	if ok && processAlive(pid) {
		return true
	}

	entry, err := l.entries.Get(ctx, appID)
	if err != nil {
		return false
	}

	switch entry.Kind {
	case catalog.KindFlatpak:
		out, err := exec.CommandContext(ctx, "flatpak", "ps", "--columns=application").Output()
		if err != nil {
			return false
		}
		return containsLine(string(out), appID)
	default:
		fields := strings.Fields(entry.Exec)
		if len(fields) == 0 {
			return false
		}
		err := exec.CommandContext(ctx, "pgrep", "-x", filepath.Base(fields[0])).Run()
		return err == nil
	}
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	if err := syscall.Kill(pid, 0); err != nil {
		return false
	}
	// Zombies still answer kill(0).
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return true
	}
	fields := strings.Fields(string(data))
	return len(fields) < 3 || fields[2] != "Z"
}

func containsLine(out, want string) bool {
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == want {
			return true
		}
	}
	return false
}

// commandLine builds the process for entry. Exec lines follow the desktop
// entry convention: %u %U %f %F take the URI, other field codes are dropped.
func commandLine(entry catalog.Entry, uri string) (string, []string, error) {
	switch entry.Kind {
	case catalog.KindFlatpak:
		return "flatpak", buildFlatpakArgs(entry.AppID, uri), nil
	case catalog.KindExec, "":
		fields := strings.Fields(entry.Exec)
		if len(fields) == 0 {
			return "", nil, fmt.Errorf("app %s has no exec line", entry.AppID)
		}

		var args []string
		for _, f := range fields[1:] {
			switch f {
			case "%u", "%U", "%f", "%F":
				if uri != "" {
					args = append(args, uriArg(f, uri))
				}
			case "%i", "%c", "%k":
			default:
				args = append(args, f)
			}
		}
		return fields[0], args, nil
	default:
		return "", nil, fmt.Errorf("unknown app kind: %s", entry.Kind)
	}
}

// uriArg converts file:// URIs to paths for the %f/%F codes.
func uriArg(code, uri string) string {
	if code == "%f" || code == "%F" {
		if p, ok := strings.CutPrefix(uri, "file://"); ok {
			return p
		}
	}
	return uri
}

// buildFlatpakArgs builds the flatpak run command arguments
func buildFlatpakArgs(appID, uri string) []string {
	args := []string{
		"run",
		"--file-forwarding",
		appID,
	}
	if uri != "" {
		args = append(args, "@@u", uri, "@@")
	}
	return args
}
