package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"maestro/internal/control"
	"maestro/internal/driver"
	"maestro/internal/util"
)

// Messages delivered to the progress model from the run driver.
type (
	// ArtifactStartMsg marks an artifact entering the pipeline.
	ArtifactStartMsg struct {
		Name string
	}

	// ArtifactDoneMsg marks an artifact reaching a terminal status, or
	// failing with an infrastructure error.
	ArtifactDoneMsg struct {
		Name   string
		Status control.TerminalStatus
		Err    error
	}

	// RunFinishedMsg ends the program once the driver returns.
	RunFinishedMsg struct{}
)

// ProgressModel is the live view of a multi-artifact run: a spinner, a
// completion bar, and one line per finished artifact.
type ProgressModel struct {
	spinner spinner.Model
	bar     progress.Model

	total    int
	done     int
	active   map[string]bool
	lines    []string
	finished bool
}

// NewProgress creates the model for a run over total artifacts.
func NewProgress(total int) ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = Primary

	return ProgressModel{
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
		total:   total,
		active:  make(map[string]bool),
	}
}

// Init starts the spinner tick.
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles driver messages and terminal input.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, 60)

	case ArtifactStartMsg:
		m.active[msg.Name] = true

	case ArtifactDoneMsg:
		delete(m.active, msg.Name)
		m.done++
		m.lines = append(m.lines, doneLine(msg))

	case RunFinishedMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the current run state.
func (m ProgressModel) View() string {
	var b strings.Builder

	b.WriteString(Title.Render("maestro"))
	b.WriteString("\n")

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	b.WriteString(m.bar.ViewAs(percent))
	b.WriteString(Muted.Render(fmt.Sprintf("  %d/%d", m.done, m.total)))
	b.WriteString("\n\n")

	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if !m.finished && len(m.active) > 0 {
		names := make([]string, 0, len(m.active))
		for name := range m.active {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString(m.spinner.View())
		b.WriteString(Subtitle.Render(" improving " + strings.Join(names, ", ")))
		b.WriteString("\n")
	}

	return b.String()
}

func doneLine(msg ArtifactDoneMsg) string {
	switch {
	case msg.Err != nil:
		return StatusFailure.Render("✗ ") + msg.Name + Muted.Render(" "+util.TruncateString(msg.Err.Error(), 80))
	case msg.Status.Succeeded():
		return StatusSuccess.Render("✓ ") + msg.Name + Muted.Render(" "+msg.Status.String())
	case msg.Status.Failed():
		return StatusFailure.Render("✗ ") + msg.Name + Muted.Render(" "+msg.Status.String())
	default:
		return StatusNeutral.Render("- ") + msg.Name + Muted.Render(" "+msg.Status.String())
	}
}

// Observer adapts driver events into program messages. The returned
// callback is safe to invoke from the driver's worker goroutines.
func Observer(p *tea.Program) func(driver.Event) {
	return func(ev driver.Event) {
		if !ev.Done {
			p.Send(ArtifactStartMsg{Name: ev.Artifact})
			return
		}
		msg := ArtifactDoneMsg{Name: ev.Artifact, Err: ev.Err}
		if ev.Result != nil {
			msg.Status = ev.Result.TerminalStatus
		}
		p.Send(msg)
	}
}
