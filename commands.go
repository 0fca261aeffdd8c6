// Bubbletea messages and commands: requests, timers and the startup check.
package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"app-selector/internal/launch"
	"app-selector/internal/request"
)

// Message types

// requestMsg delivers an app control request, first or re-delivered.
type requestMsg struct {
	bundle *request.Bundle
}

type localeChangedMsg struct {
	locale string
}

type watchdogFiredMsg struct {
	gen int
}

type infoExpiredMsg struct {
	gen int
}

type appStartedMsg struct {
	appID string
}

type appPendingMsg struct {
	appID string
}

// terminateMsg asks the session to end, e.g. on a signal.
type terminateMsg struct {
	reason string
}

// Commands

func requestCmd(b *request.Bundle) tea.Cmd {
	return func() tea.Msg {
		return requestMsg{bundle: b}
	}
}

func watchdogCmd(gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return watchdogFiredMsg{gen: gen}
	})
}

func infoTimerCmd(gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return infoExpiredMsg{gen: gen}
	})
}

// awaitStartupCmd checks once, after d, whether appID is running.
func awaitStartupCmd(ctx context.Context, l launch.Launcher, appID string, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		if l.IsRunning(ctx, appID) {
			return appStartedMsg{appID: appID}
		}
		return appPendingMsg{appID: appID}
	})
}
