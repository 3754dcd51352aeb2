package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 40

var (
	stageStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	fullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

type progressMsg int

type doneMsg struct{}

type model struct {
	stage   string
	total   int
	done    int
	started time.Time
	now     time.Time
	quit    bool
}

func newModel(stage string, total int, now time.Time) model {
	return model{stage: stage, total: total, started: now, now: now}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.done = int(msg)
		m.now = time.Now()
	case doneMsg:
		m.done = m.total
		m.now = time.Now()
		m.quit = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) fraction() float64 {
	if m.total <= 0 {
		return 1
	}
	f := float64(m.done) / float64(m.total)
	if f > 1 {
		f = 1
	}
	if f < 0 {
		f = 0
	}
	return f
}

func (m model) View() string {
	f := m.fraction()
	filled := int(f * barWidth)
	bar := fullStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", barWidth-filled))

	elapsed := m.now.Sub(m.started).Round(100 * time.Millisecond)
	line := fmt.Sprintf("%s %s %3.0f%% %s",
		stageStyle.Render(fmt.Sprintf("%-10s", m.stage)),
		bar,
		f*100,
		dimStyle.Render(fmt.Sprintf("%d/%d %s", m.done, m.total, elapsed)),
	)
	if m.quit {
		return line + "\n"
	}
	return line
}

// TUI draws a bubbletea progress bar per stage.
type TUI struct {
	out io.Writer

	mu   sync.Mutex
	prog *tea.Program
	wg   sync.WaitGroup
}

func NewTUI(out io.Writer) *TUI {
	return &TUI{out: out}
}

func (t *TUI) Start(stage string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := tea.NewProgram(newModel(stage, total, time.Now()),
		tea.WithOutput(t.out),
		tea.WithInput(nil),
	)
	t.prog = p
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		_, _ = p.Run()
	}()
}

func (t *TUI) Update(done int) {
	t.mu.Lock()
	p := t.prog
	t.mu.Unlock()
	if p != nil {
		p.Send(progressMsg(done))
	}
}

func (t *TUI) Finish() {
	t.mu.Lock()
	p := t.prog
	t.prog = nil
	t.mu.Unlock()
	if p == nil {
		return
	}
	p.Send(doneMsg{})
	t.wg.Wait()
}
