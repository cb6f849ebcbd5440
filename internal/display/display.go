// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent playback status bar and an input
// prompt at the bottom of the terminal. All application output is
// printed above the rendered area via Program.Println,
// ensuring concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottovoice/internal/domain"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	listeningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	processingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	playingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// ── Output styles (soft palette) ──

	// BannerStyle is the startup banner colour.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Chat: replies to typed commands.
	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	// Step headers.
	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	// Step text.
	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Hints and metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// Errors.
	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking).  Other goroutines may
// safely call [UI.Println] and the Print helpers, and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	inputCh chan string
	readyCh chan struct{}
	status  StatusSource
	done    atomic.Bool
}

// StatusSource supplies the state shown in the status bar.
type StatusSource interface {
	State() domain.PlaybackState
}

// NewUI creates the display. Call Run() to start.
func NewUI(status StatusSource) *UI {
	return &UI{
		status:  status,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe.
// Each argument is converted via fmt.Sprint and printed on its own
// line(s).  If the program hasn't started yet, falls back to
// fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────
// These give output visual hierarchy with lipgloss colors.

// PrintChat prints a conversational assistant line.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintStep prints a step header like "Step 2/8".
func (u *UI) PrintStep(text string) {
	u.Println(stepStyle.Render("  " + text))
}

// PrintInstruction prints the step's main instruction text.
func (u *UI) PrintInstruction(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line (red, bold).
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintVoice prints a voice-recognised input line.
func (u *UI) PrintVoice(text string) {
	u.Println(secondaryStyle.Render("[voice] ") + primaryStyle.Render(text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("otto") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// ReportError shows a user-facing failure. It matches
// domain.ErrorReporter.
func (u *UI) ReportError(where, message string) {
	u.PrintUrgent(where + ": " + message)
}

// Refresh redraws the status bar now instead of on the next tick. Safe
// to call from any goroutine, before or after Run.
func (u *UI) Refresh() {
	if u.program != nil && !u.done.Load() {
		go u.program.Send(refreshMsg{})
	}
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// Run starts the Bubble Tea event loop.  Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Use a plain-text prompt so the textinput width math stays correct.
	// Lipgloss-styled prompts add invisible ANSI bytes that break the
	// internal offset/scroll calculations for long input.
	ti.Prompt = "otto> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		status:  u.status,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echoFn: func(v string) {
			u.PrintUserInput(v)
		},
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	status  StatusSource
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string) // prints user input into scrollback
	state   domain.PlaybackState
	width   int
}

// Messages.
type (
	tickMsg    time.Time
	refreshMsg struct{}
)

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Return a Cmd that prints the echo — this runs
				// outside Update so it won't deadlock on msgs.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		// Let the text input use the full width minus the prompt ("otto> " = 6 chars).
		const promptLen = 6
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tea.Batch(tickCmd(), tea.SetWindowTitle(titleStr(m.state)))

	case refreshMsg:
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) refresh() {
	if m.status != nil {
		m.state = m.status.State()
	}
}

func (m model) View() string {
	var b strings.Builder

	if m.state.StepCount > 0 || m.state.IsListening {
		b.WriteString(m.renderBar())
		b.WriteByte('\n')
	}

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar() string {
	var parts []string
	for _, f := range statusFlags(m.state) {
		parts = append(parts, f.style.Render(f.text))
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

// ── Helpers ──────────────────────────────────────────────────────

type flag struct {
	text  string
	style lipgloss.Style
}

// statusFlags lists the bar segments for a state, left to right.
func statusFlags(s domain.PlaybackState) []flag {
	out := []flag{{"step " + stepCounter(s), labelStyle}}
	if s.IsListening {
		out = append(out, flag{"● LISTENING", listeningStyle})
	}
	if s.IsProcessing {
		out = append(out, flag{"… PROCESSING", processingStyle})
	}
	if s.IsPlaying {
		out = append(out, flag{"▶ PLAYING", playingStyle})
	}
	if len(out) == 1 {
		out = append(out, flag{"idle", idleStyle})
	}
	return out
}

func stepCounter(s domain.PlaybackState) string {
	if s.StepCount == 0 {
		return "-/-"
	}
	return fmt.Sprintf("%d/%d", s.CurrentStepIndex+1, s.StepCount)
}

func titleStr(s domain.PlaybackState) string {
	if s.StepCount == 0 {
		return "OttoVoice"
	}
	t := "OttoVoice — step " + stepCounter(s)
	if s.IsPlaying {
		t += " ▶"
	}
	return t
}
