// List presenter: the candidate list inside the popup, rendered lazily.
package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"app-selector/internal/candidate"
)

type layout int

const (
	layoutCompact layout = iota
	layoutFull
)

func (l layout) String() string {
	if l == layoutFull {
		return "full"
	}
	return "compact"
}

// layoutFor picks the popup layout for count candidates.
func layoutFor(count int) layout {
	if count > fullLayoutThreshold {
		return layoutFull
	}
	return layoutCompact
}

// rowSource supplies row content on demand.
type rowSource interface {
	Len() int
	Label(i int) string
	Icon(i int) string
}

// storeRows adapts the candidate store to rowSource.
type storeRows struct {
	store *candidate.Store
}

func (r storeRows) Len() int { return r.store.Len() }

func (r storeRows) Label(i int) string {
	if app := r.store.At(i); app != nil {
		return app.Label()
	}
	return ""
}

func (r storeRows) Icon(i int) string {
	if app := r.store.At(i); app != nil {
		return app.IconPath
	}
	return ""
}

// candidateItem only carries the row index; content comes from the
// rowSource when the row is drawn.
type candidateItem struct {
	index int
}

func (i candidateItem) FilterValue() string { return "" }

type candidateDelegate struct {
	rows  rowSource
	icons *iconLoader
}

func (d candidateDelegate) Height() int                             { return 1 }
func (d candidateDelegate) Spacing() int                            { return 0 }
func (d candidateDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d candidateDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(candidateItem)
	if !ok || d.rows == nil {
		return
	}

	label := runewidth.Truncate(d.rows.Label(i.index), max(m.Width()-6, 4), "…")
	icon := iconStyle.Render(d.icons.glyph(d.rows.Icon(i.index)))

	var str string
	if index == m.Index() {
		str = cursorStyle.Render("> ") + icon + " " + selectedItemStyle.Render(label)
	} else {
		str = "  " + icon + " " + itemStyle.Render(label)
	}

	fmt.Fprint(w, str)
}

type presenter struct {
	list   list.Model
	rows   rowSource
	layout layout
	width  int
	height int
}

func newPresenter(rows rowSource, icons *iconLoader, width, height int) *presenter {
	l := list.New(nil, candidateDelegate{rows: rows, icons: icons}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	return &presenter{list: l, rows: rows, width: width, height: height}
}

// show fills the list for the first time.
func (p *presenter) show() {
	p.populate()
}

// refresh rebuilds the rows in place after the store was re-resolved.
func (p *presenter) refresh() {
	p.populate()
	p.list.ResetSelected()
}

// dismiss drops every row. The presenter is unusable afterwards.
func (p *presenter) dismiss() {
	p.list.SetItems(nil)
	p.list.SetDelegate(candidateDelegate{})
	p.rows = nil
}

func (p *presenter) populate() {
	n := p.rows.Len()
	items := make([]list.Item, n)
	for i := range items {
		items[i] = candidateItem{index: i}
	}
	p.list.SetItems(items)
	p.layout = layoutFor(n)
	p.resize(p.width, p.height)
}

func (p *presenter) resize(width, height int) {
	p.width, p.height = width, height
	switch p.layout {
	case layoutFull:
		p.list.SetShowPagination(true)
		p.list.SetSize(max(width-6, 10), max(height-8, 3))
	default:
		p.list.SetShowPagination(false)
		p.list.SetSize(compactWidth-4, max(len(p.list.Items()), 1))
	}
}

// selected returns the index of the highlighted row.
func (p *presenter) selected() (int, bool) {
	i, ok := p.list.SelectedItem().(candidateItem)
	if !ok {
		return 0, false
	}
	return i.index, true
}

func (p *presenter) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

func (p *presenter) view(title string) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		p.list.View(),
	)
	if p.layout == layoutFull {
		return fullFrameStyle.Width(max(p.width-2, 20)).Render(content)
	}
	return compactFrameStyle.Render(content)
}
