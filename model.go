// TUI model: the session state machine driven by the Bubbletea event loop.
package main

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"app-selector/internal/launch"
	"app-selector/internal/request"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Cancel}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type orientation int

const (
	orientationPortrait orientation = iota
	orientationLandscape
)

func (o orientation) String() string {
	if o == orientationLandscape {
		return "landscape"
	}
	return "portrait"
}

// orientationFor treats a terminal as landscape when it is more than twice
// as wide as it is tall, since cells are roughly twice as tall as wide.
func orientationFor(width, height int) orientation {
	if width > 2*height {
		return orientationLandscape
	}
	return orientationPortrait
}

type model struct {
	s *session

	// Components
	help    help.Model
	keys    keyMap
	spinner spinner.Model

	// initial is delivered as the first request when the program starts.
	initial *request.Bundle

	// Window size
	width       int
	height      int
	orientation orientation
}

func newModel(s *session, initial *request.Bundle) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return model{
		s:           s,
		help:        help.New(),
		keys:        defaultKeyMap(),
		spinner:     sp,
		initial:     initial,
		width:       80,
		height:      24,
		orientation: orientationFor(80, 24),
	}
}

func (m model) Init() tea.Cmd {
	if m.initial == nil {
		return nil
	}
	return requestCmd(m.initial)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := m.s

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.FocusMsg:
		s.log.Debug("resume", zap.Stringer("state", s.state))
		return m, nil

	case tea.BlurMsg:
		s.log.Debug("pause", zap.Stringer("state", s.state), zap.Bool("pause_terminate", s.pauseTerminate))
		if s.pauseTerminate {
			return m.terminate("pause")
		}
		return m, nil

	case terminateMsg:
		return m.terminate(msg.reason)

	case requestMsg:
		return m.handleRequest(msg.bundle)

	case localeChangedMsg:
		return m.handleLocale(msg.locale)

	case watchdogFiredMsg:
		if !s.watchdog.armed || msg.gen != s.watchdog.gen {
			return m, nil
		}
		s.log.Warn("selected app did not start in time, terminating",
			zap.String("app_id", s.launchedApp),
			zap.Duration("timeout", s.cfg.watchdogTimeout),
		)
		return m.terminate("watchdog")

	case infoExpiredMsg:
		if s.state != stateNoMatchInfo || msg.gen != s.infoGen {
			return m, nil
		}
		return m.terminate("no match")

	case appStartedMsg:
		if s.state != stateLaunchRequested || msg.appID != s.launchedApp {
			return m, nil
		}
		s.log.Info("launched app is running", zap.String("app_id", msg.appID))
		return m.terminate("launched")

	case appPendingMsg:
		if s.state != stateLaunchRequested || msg.appID != s.launchedApp {
			return m, nil
		}
		return m, awaitStartupCmd(s.ctx, s.launcher, msg.appID, s.cfg.startupPoll)

	case spinner.TickMsg:
		if s.state != stateLaunchRequested {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if s.state == statePresenting {
			return m.updatePresenting(msg)
		}
		if msg.String() == "ctrl+c" {
			return m.terminate("interrupted")
		}
		return m, nil
	}

	return m, nil
}

func (m model) updatePresenting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.s.log.Info("selection cancelled")
		return m.terminate("cancelled")
	case key.Matches(msg, m.keys.Select):
		return m.selectCandidate()
	}
	return m, m.s.presenter.update(msg)
}

func (m model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width

	if o := orientationFor(msg.Width, msg.Height); o != m.orientation {
		m.orientation = o
		m.s.log.Info("orientation changed", zap.Stringer("orientation", o))
	}
	if m.s.presenter != nil {
		m.s.presenter.resize(msg.Width, msg.Height)
	}
	return m, nil
}

// handleRequest starts the session on the first request and refreshes it
// on later ones.
func (m model) handleRequest(b *request.Bundle) (tea.Model, tea.Cmd) {
	s := m.s
	switch s.state {
	case stateLaunchRequested, stateTerminating, stateTerminated:
		s.log.Info("request ignored", zap.Stringer("state", s.state))
		return m, nil
	}
	if b == nil {
		b = request.NewBundle()
	}

	s.bundle = b
	s.req = request.Parse(b)
	s.log.Info("request received",
		zap.String("operation", s.req.Operation),
		zap.String("mime", s.req.MIME),
		zap.String("uri", s.req.URI),
		zap.String("window_id", s.req.WindowID),
		zap.Int("caller_pid", s.req.CallerPID),
		zap.Strings("explicit", s.req.ExplicitIDs),
		zap.Strings("keys", b.Keys()),
		zap.Bool("reset", s.initialized),
	)

	if !s.req.HasOperation() {
		return m, m.enterNoMatch()
	}
	return m, m.resolve()
}

func (m model) handleLocale(locale string) (tea.Model, tea.Cmd) {
	s := m.s
	tag := s.text.setLocale(locale)
	s.log.Info("language changed", zap.String("locale", locale), zap.Stringer("tag", tag))

	if s.state != statePresenting {
		return m, nil
	}
	return m, m.resolve()
}

// resolve rebuilds the store for the current request and presents it, or
// falls back to the no-match message.
func (m model) resolve() tea.Cmd {
	s := m.s
	s.state = stateResolving

	if err := s.resolver.Resolve(s.ctx, s.req, s.store); err != nil {
		s.log.Warn("resolution failed", zap.Error(err), zap.Int("partial", s.store.Len()))
		return m.enterNoMatch()
	}
	if s.store.Len() == 0 {
		s.log.Info("no candidates", zap.String("operation", s.req.Operation))
		return m.enterNoMatch()
	}

	s.nextInfo()
	if !s.initialized {
		s.presenter = newPresenter(storeRows{store: s.store}, s.icons, m.width, m.height)
		s.presenter.show()
		s.initialized = true
	} else {
		s.presenter.refresh()
	}
	s.state = statePresenting
	s.log.Info("presenting candidates",
		zap.Int("count", s.store.Len()),
		zap.Stringer("layout", s.presenter.layout),
	)
	return nil
}

func (m model) enterNoMatch() tea.Cmd {
	s := m.s
	s.state = stateNoMatchInfo
	gen := s.nextInfo()
	return infoTimerCmd(gen, s.cfg.infoDuration)
}

func (m model) selectCandidate() (tea.Model, tea.Cmd) {
	s := m.s
	i, ok := s.presenter.selected()
	if !ok {
		return m, nil
	}
	app := s.store.At(i)
	if app == nil {
		return m, nil
	}

	s.state = stateLaunchRequested
	out := launch.Select(s.ctx, s.launcher, app, s.bundle, s.req.CallerPID, s.log)
	if !out.Launched() {
		return m.terminate("launch failed")
	}

	s.launched = true
	s.launchedApp = out.AppID
	s.pauseTerminate = true
	gen := s.armWatchdog()

	return m, tea.Batch(
		watchdogCmd(gen, s.cfg.watchdogTimeout),
		awaitStartupCmd(s.ctx, s.launcher, out.AppID, s.cfg.startupPoll),
		m.spinner.Tick,
	)
}

func (m model) terminate(reason string) (tea.Model, tea.Cmd) {
	if !m.s.terminate(reason) {
		return m, nil
	}
	return m, tea.Quit
}

func (m model) View() string {
	switch m.s.state {
	case statePresenting:
		return m.renderPresenting()
	case stateNoMatchInfo:
		return m.renderInfo()
	case stateLaunchRequested:
		return m.renderLaunching()
	case stateTerminating, stateTerminated:
		return ""
	default:
		return m.renderWaiting()
	}
}
