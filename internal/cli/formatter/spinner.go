package formatter

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type spinnerDoneMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("  %s %s", m.spinner.View(), Dim(m.message))
}

// RunWithSpinner animates a spinner on out until fn returns, then clears
// it and returns fn's error. Input is never read.
func RunWithSpinner(out io.Writer, message string, fn func() error) error {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(StylePurple))
	p := tea.NewProgram(
		spinnerModel{spinner: s, message: message},
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
		p.Send(spinnerDoneMsg{})
	}()

	// A terminal that cannot host the program only loses the animation.
	_, _ = p.Run()
	return <-errCh
}
