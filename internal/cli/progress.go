package cli

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// resolveProgress is the bubbletea model shown while a dependency tree is
// being resolved: an animated spinner, the running package count, and the
// most recently visited package.
type resolveProgress struct {
	message string
	frame   int
	count   int
	last    string
	depth   int
	done    bool
}

type visitMsg struct {
	name  string
	depth int
}

type finishMsg struct{}

type frameMsg time.Time

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m resolveProgress) Init() tea.Cmd {
	return tick()
}

func (m resolveProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, tick()
	case visitMsg:
		m.count++
		m.last = msg.name
		m.depth = msg.depth
		return m, nil
	case finishMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m resolveProgress) View() string {
	if m.done {
		return ""
	}
	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	line := fmt.Sprintf("%s %s", styleIconSpinner.Render(frame), StyleDim.Render(m.message))
	if m.count > 0 {
		line += StyleDim.Render(fmt.Sprintf("  %d packages", m.count)) +
			StyleDim.Render(fmt.Sprintf("  %s (depth %d)", m.last, m.depth))
	}
	return line
}

// progressUI drives a resolveProgress model in a background goroutine and
// exposes a callback suitable for resolver.Options.OnProgress. The callback
// is safe to call from concurrent resolution goroutines.
type progressUI struct {
	prog    *tea.Program
	done    chan struct{}
	stopped atomic.Bool
}

// startProgress launches the progress display on stderr.
func startProgress(message string) *progressUI {
	ui := &progressUI{
		prog: tea.NewProgram(resolveProgress{message: message}, tea.WithOutput(os.Stderr)),
		done: make(chan struct{}),
	}
	go func() {
		defer close(ui.done)
		_, _ = ui.prog.Run()
	}()
	return ui
}

// visit reports a visited package to the display.
func (u *progressUI) visit(name string, depth int) {
	if u.stopped.Load() {
		return
	}
	u.prog.Send(visitMsg{name: name, depth: depth})
}

// stop tears down the display and waits for the terminal to be restored.
func (u *progressUI) stop() {
	if u.stopped.Swap(true) {
		return
	}
	u.prog.Send(finishMsg{})
	<-u.done
}
