// Lipgloss styles for the popup, rows and the info message.
package main

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("212") // Pink
	secondaryColor = lipgloss.Color("86")  // Cyan
	errorColor     = lipgloss.Color("196") // Red
	dimColor       = lipgloss.Color("240") // Gray

	// Popup frames
	compactFrameStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(0, 1)

	fullFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	infoFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(1, 2)

	// Titles
	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			MarginBottom(1)

	// Items
	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	iconStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// Status
	footerStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	// Spinner
	spinnerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)
)
