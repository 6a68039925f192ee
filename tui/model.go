package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/safwentrabelsi/spl-approval-revoker/notify"
	"github.com/safwentrabelsi/spl-approval-revoker/revoke"
	"github.com/safwentrabelsi/spl-approval-revoker/session"
	"github.com/safwentrabelsi/spl-approval-revoker/types"
)

// Session is the state the terminal UI renders and drives.
type Session interface {
	Snapshot() session.Snapshot
	TryReconnect(ctx context.Context) bool
	ConnectWallet(ctx context.Context) error
	FetchDelegatedTokens(ctx context.Context) ([]types.Token, error)
	LoadMockTokens() ([]types.Token, error)
	Toggle(mint string) error
	SelectAll(checked bool)
	RevokeSelected(ctx context.Context) (revoke.Result, error)
}

type Notifications interface {
	Active(now time.Time) []notify.Notification
}

type TickMsg time.Time

// OpDoneMsg reports the end of an asynchronous session operation. Failures
// are already surfaced as notifications.
type OpDoneMsg struct {
	Op  session.Op
	Err error
}

type reconnectedMsg bool

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type Model struct {
	ctx     context.Context
	session Session
	feed    Notifications
	now     func() time.Time

	snapshot session.Snapshot
	cursor   int
	dots     int
	width    int
	height   int
}

func NewModel(ctx context.Context, s Session, feed Notifications) *Model {
	return &Model{
		ctx:      ctx,
		session:  s,
		feed:     feed,
		now:      time.Now,
		snapshot: s.Snapshot(),
		width:    100,
	}
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, s Session, feed Notifications) error {
	_, err := tea.NewProgram(NewModel(ctx, s, feed), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(TickCmd(), m.reconnect())
}

func (m *Model) reconnect() tea.Cmd {
	return func() tea.Msg {
		return reconnectedMsg(m.session.TryReconnect(m.ctx))
	}
}

func (m *Model) run(op session.Op, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return OpDoneMsg{Op: op, Err: fn(m.ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case TickMsg:
		m.dots = (m.dots + 1) % 4
		cmd = TickCmd()
	}
	m.refresh()
	return m, cmd
}

func (m *Model) refresh() {
	m.snapshot = m.session.Snapshot()
	if m.cursor >= len(m.snapshot.Tokens) {
		m.cursor = len(m.snapshot.Tokens) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) handleKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "ctrl+c", "q":
		return tea.Quit
	case "c":
		if m.snapshot.Busy[session.OpConnect] {
			return nil
		}
		return m.run(session.OpConnect, m.session.ConnectWallet)
	case "s":
		if !m.snapshot.Connected || m.snapshot.Busy[session.OpFetch] {
			return nil
		}
		return m.run(session.OpFetch, func(ctx context.Context) error {
			_, err := m.session.FetchDelegatedTokens(ctx)
			return err
		})
	case "m":
		_, _ = m.session.LoadMockTokens()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snapshot.Tokens)-1 {
			m.cursor++
		}
	case " ", "space", "x":
		if m.cursor < len(m.snapshot.Tokens) {
			_ = m.session.Toggle(m.snapshot.Tokens[m.cursor].Mint)
		}
	case "a":
		m.session.SelectAll(!m.snapshot.AllSelected())
	case "r":
		if !m.snapshot.CanRevoke() {
			return nil
		}
		return m.run(session.OpRevoke, func(ctx context.Context) error {
			_, err := m.session.RevokeSelected(ctx)
			return err
		})
	}
	return nil
}
