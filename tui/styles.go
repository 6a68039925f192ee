package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/safwentrabelsi/spl-approval-revoker/notify"
)

func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true).
		Padding(0, 1)
}

func ConnectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
}

func DisconnectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
}

func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("238"))
}

func CursorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Bold(true)
}

func DisabledStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Strikethrough(true)
}

func HelpStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(width)
}

// ToastStyle colours a notification by level.
func ToastStyle(level notify.Level) lipgloss.Style {
	color := lipgloss.Color("39")
	switch level {
	case notify.Success:
		color = lipgloss.Color("42")
	case notify.Error:
		color = lipgloss.Color("196")
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1)
}
