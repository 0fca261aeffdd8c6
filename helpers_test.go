package main

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"app-selector/internal/candidate"
	"app-selector/internal/launch"
	"app-selector/internal/request"
)

var testApps = map[string]candidate.App{
	"app.gallery": {PackageName: "app.gallery", DisplayName: "Gallery", AppID: "app.gallery"},
	"app.mail":    {PackageName: "app.mail", DisplayName: "Mail", AppID: "app.mail"},
	"app.viewer":  {PackageName: "app.viewer", DisplayName: "Viewer", AppID: "app.viewer"},
	"app.notes":   {PackageName: "app.notes", DisplayName: "Notes", AppID: "app.notes"},
	"app.music":   {PackageName: "app.music", DisplayName: "Music", AppID: "app.music"},
}

type fakeMeta map[string]candidate.App

func (f fakeMeta) Lookup(_ context.Context, appID string) (candidate.App, error) {
	app, ok := f[appID]
	if !ok {
		return candidate.App{}, errors.New("not installed")
	}
	return app, nil
}

type fakeDiscovery struct {
	byOp  map[string][]string
	err   error
	calls int
}

func (f *fakeDiscovery) Discover(_ context.Context, q candidate.Query, visit func(string)) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for _, id := range f.byOp[q.Operation] {
		visit(id)
	}
	return nil
}

type forwardCall struct {
	appID     string
	startInfo string
}

type fakeLauncher struct {
	pid     int
	err     error
	running map[string]bool
	calls   []forwardCall
}

func (f *fakeLauncher) Forward(_ context.Context, appID string, b *request.Bundle) (int, error) {
	f.calls = append(f.calls, forwardCall{appID: appID, startInfo: b.Value(request.KeyStartInfo)})
	return f.pid, f.err
}

func (f *fakeLauncher) IsRunning(_ context.Context, appID string) bool {
	return f.running[appID]
}

type fakeMessenger struct {
	sent []launch.CancelCommand
}

func (f *fakeMessenger) Send(cmd launch.CancelCommand) error {
	f.sent = append(f.sent, cmd)
	return nil
}

type harness struct {
	t         *testing.T
	m         model
	s         *session
	discovery *fakeDiscovery
	launcher  *fakeLauncher
	messenger *fakeMessenger
	logs      *observer.ObservedLogs
}

func newHarness(t *testing.T, byOp map[string][]string) *harness {
	t.Helper()
	return newHarnessWithConfig(t, byOp, sessionConfig{
		watchdogTimeout: 3 * time.Second,
		infoDuration:    2 * time.Second,
		startupPoll:     startupPollInterval,
		pauseTerminate:  true,
	})
}

func newHarnessWithConfig(t *testing.T, byOp map[string][]string, cfg sessionConfig) *harness {
	t.Helper()
	disc := &fakeDiscovery{byOp: byOp}
	l := &fakeLauncher{pid: 4242, running: map[string]bool{}}
	msgr := &fakeMessenger{}
	core, logs := observer.New(zap.DebugLevel)

	s := newSession(context.Background(),
		candidate.NewResolver(fakeMeta(testApps), disc, nil),
		l,
		launch.NewNotifier(l, msgr, 7, nil),
		newStringTable("en_US.UTF-8"),
		cfg,
		zap.New(core),
	)
	return &harness{t: t, m: newModel(s, nil), s: s, discovery: disc, launcher: l, messenger: msgr, logs: logs}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(model)
	return cmd
}

func (h *harness) request(kv ...string) *request.Bundle {
	h.t.Helper()
	b := bundleOf(kv...)
	h.send(requestMsg{bundle: b})
	return b
}

func bundleOf(kv ...string) *request.Bundle {
	b := request.NewBundle()
	for i := 0; i+1 < len(kv); i += 2 {
		b.Set(kv[i], kv[i+1])
	}
	return b
}

// isQuit runs cmd, so only call it with commands that do not sleep.
func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)
