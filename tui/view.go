package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/safwentrabelsi/spl-approval-revoker/session"
	"github.com/safwentrabelsi/spl-approval-revoker/utils"
)

const (
	colCheck    = 5
	colMint     = 14
	colDelegate = 14
	colAmount   = 20
	colOwner    = 14
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString(toasts)
		b.WriteString("\n")
	}
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m *Model) renderHeader() string {
	title := TitleStyle().Render("SPL Approval Revoker")
	status := DisconnectedStyle().Render("○ wallet not connected")
	if m.snapshot.Connected {
		status = ConnectedStyle().Render("● " + m.snapshot.PublicKey)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", status)
}

func cell(s string, width int) string {
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(s)
}

func (m *Model) renderTable() string {
	if m.snapshot.Busy[session.OpFetch] {
		return "Searching delegated tokens" + strings.Repeat(".", m.dots) + "\n"
	}
	if len(m.snapshot.Tokens) == 0 {
		hint := "Press s to search or m to load demo data."
		if !m.snapshot.Connected {
			hint = "Press c to connect or m to load demo data."
		}
		return DisconnectedStyle().Render("No delegated tokens to display. "+hint) + "\n"
	}

	var b strings.Builder
	allBox := "[ ]"
	if m.snapshot.AllSelected() {
		allBox = "[x]"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		cell(allBox, colCheck),
		cell("Mint", colMint),
		cell("Delegate", colDelegate),
		cell("Delegated", colAmount),
		cell("Owner", colOwner),
	)
	b.WriteString(HeaderStyle().Render(header))
	b.WriteString("\n")

	for i, token := range m.snapshot.Tokens {
		box := "[ ]"
		if m.snapshot.IsSelected(token.Mint) {
			box = "[x]"
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			cell(box, colCheck),
			cell(utils.ShortAddress(token.Mint), colMint),
			cell(utils.ShortAddress(token.Delegate), colDelegate),
			cell(token.UIDelegatedAmount(), colAmount),
			cell(utils.ShortAddress(token.Owner), colOwner),
		)
		if i == m.cursor {
			row = CursorStyle().Render("> " + row)
		} else {
			row = "  " + row
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderToasts() string {
	active := m.feed.Active(m.now())
	if len(active) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(active))
	for _, n := range active {
		rendered = append(rendered, ToastStyle(n.Level).Render(n.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func (m *Model) renderHelp() string {
	revoke := fmt.Sprintf("r revoke (%d)", len(m.snapshot.Selected))
	switch {
	case m.snapshot.Busy[session.OpRevoke]:
		revoke = "revoking" + strings.Repeat(".", m.dots)
	case !m.snapshot.CanRevoke():
		revoke = DisabledStyle().Render(revoke)
	}
	connect := "c connect"
	if m.snapshot.Busy[session.OpConnect] {
		connect = "connecting" + strings.Repeat(".", m.dots)
	}
	search := "s search"
	if !m.snapshot.Connected {
		search = DisabledStyle().Render(search)
	}
	keys := []string{connect, search, "m mock", "↑/↓ move", "space toggle", "a all", revoke, "q quit"}
	return HelpStyle(m.width).Render(strings.Join(keys, " • "))
}
