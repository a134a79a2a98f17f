package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/entropy/pkg/commands"
	"github.com/papercomputeco/entropy/pkg/llm"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#39FF14"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	panelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00"))
)

type (
	submittedMsg struct {
		stream llm.Stream
		err    error
	}

	chunkMsg struct {
		text string
	}

	streamDoneMsg struct {
		err error
	}
)

// Model is the bubbletea model of the terminal. The session is only touched
// from Update, and never while a submit is in flight.
type Model struct {
	session  *Session
	relayURL string

	ctx    context.Context
	cancel context.CancelFunc

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	darkBG   bool

	busy       bool
	stream     llm.Stream
	statusLine string
	width      int
	ready      bool
}

// NewModel creates the terminal model over session.
func NewModel(session *Session, relayURL string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message or !help"
	ti.Prompt = "# "
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		session:  session,
		relayURL: relayURL,
		ctx:      ctx,
		cancel:   cancel,
		input:    ti,
		spinner:  sp,
		darkBG:   termenv.HasDarkBackground(),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancel()
			if m.stream != nil {
				m.stream.Close()
			}
			return m, tea.Quit

		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			line := m.input.Value()
			if strings.TrimSpace(line) == "" {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			return m, m.submit(line)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		height := msg.Height - 3 // input line, status line, padding
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.input.Width = msg.Width - 4
		m.renderer = newRenderer(msg.Width, m.darkBG)
		m.refresh()
		return m, nil

	case submittedMsg:
		if msg.err != nil || msg.stream == nil {
			m.busy = false
			m.refresh()
			return m, nil
		}
		m.stream = msg.stream
		m.refresh()
		return m, recv(msg.stream)

	case chunkMsg:
		m.session.AppendDelta(msg.text)
		m.refresh()
		return m, recv(m.stream)

	case streamDoneMsg:
		m.session.Finish(msg.err)
		m.stream.Close()
		m.stream = nil
		m.busy = false
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var tiCmd, vpCmd tea.Cmd
	m.input, tiCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.busy {
		b.WriteString(m.spinner.View())
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(ansi.Truncate(m.statusLine, m.width, "…")))
	return b.String()
}

func (m Model) submit(line string) tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		stream, err := session.Submit(ctx, line)
		return submittedMsg{stream: stream, err: err}
	}
}

func recv(stream llm.Stream) tea.Cmd {
	return func() tea.Msg {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return streamDoneMsg{}
		}
		if err != nil {
			return streamDoneMsg{err: err}
		}
		return chunkMsg{text: chunk}
	}
}

func (m *Model) refresh() {
	// Submit is running on another goroutine.
	if m.busy && m.stream == nil {
		return
	}
	m.statusLine = m.status()
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	var b strings.Builder
	for _, msg := range m.session.Messages() {
		switch msg.Role {
		case llm.RoleSystem:
			b.WriteString(bannerStyle.Render(msg.Content))
			b.WriteString("\n\n")
		case llm.RoleUser:
			b.WriteString(userStyle.Render("> " + msg.Content))
			b.WriteString("\n")
		case llm.RoleAssistant:
			b.WriteString(m.renderMarkdown(msg.Content))
			b.WriteString("\n")
		}
	}
	for _, p := range m.session.State().OpenPanels {
		b.WriteString(panelStyle.Render(fmt.Sprintf("[%s] interface open", panelTitle(p))))
		b.WriteString("\n")
	}
	if text := m.session.ErrorText(); text != "" {
		b.WriteString(errorStyle.Render(text))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) status() string {
	wallet := "wallet: not connected"
	if st := m.session.State(); st.WalletConnected {
		wallet = "wallet: " + st.PublicKey
	}
	return fmt.Sprintf("%s | relay: %s | %s | ctrl+c to quit", llm.Banner, m.relayURL, wallet)
}

func newRenderer(width int, dark bool) *glamour.TermRenderer {
	style := "light"
	if dark {
		style = "dark"
	}
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

func panelTitle(p commands.Panel) string {
	switch p {
	case commands.PanelBundler:
		return "Token Bundler"
	case commands.PanelOnChainActions:
		return "OnChain Actions"
	case commands.PanelVolumeBot:
		return "Anti-MEV Volume Bot"
	}
	return string(p)
}
