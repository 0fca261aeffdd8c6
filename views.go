// View rendering: the popup, the info message and the launch spinner.
package main

import (
	"github.com/charmbracelet/lipgloss"
)

func (m model) place(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m model) renderFooter() string {
	return footerStyle.Render(m.help.View(m.keys))
}

func (m model) renderPresenting() string {
	p := m.s.presenter
	content := lipgloss.JoinVertical(lipgloss.Left,
		p.view(m.s.text.text(msgTitle)),
		m.renderFooter(),
	)
	if p.layout == layoutFull {
		return content
	}
	return m.place(content)
}

func (m model) renderInfo() string {
	return m.place(infoFrameStyle.Render(errorStyle.Render(m.s.text.text(msgNoMatch))))
}

func (m model) renderLaunching() string {
	label := m.s.launchedApp
	if app := m.s.store.At(m.selectedIndex()); app != nil {
		label = app.Label()
	}
	return m.place(m.spinner.View() + " " + dimStyle.Render(m.s.text.text(msgStarting, label)))
}

func (m model) renderWaiting() string {
	return m.place(m.spinner.View())
}

func (m model) selectedIndex() int {
	if m.s.presenter == nil {
		return -1
	}
	i, ok := m.s.presenter.selected()
	if !ok {
		return -1
	}
	return i
}
