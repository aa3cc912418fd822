package formatter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/slotwise/internal/teatest"
)

func TestSpinnerModel_QuitsWhenWorkIsDone(t *testing.T) {
	d := teatest.New(t, spinnerModel{spinner: spinner.New(), message: "Thinking"})
	d.Init()
	assert.Contains(t, stripANSI(d.View()), "Thinking")
	assert.Positive(t, d.Abandoned, "the next tick waits on a timer")

	d.Send(spinnerDoneMsg{})
	assert.True(t, d.Quitting)
	assert.Empty(t, d.View())
}

func TestRunWithSpinner_ReturnsWorkError(t *testing.T) {
	boom := errors.New("boom")
	var out bytes.Buffer

	err := RunWithSpinner(&out, "Working", func() error { return boom })
	assert.ErrorIs(t, err, boom)

	err = RunWithSpinner(&out, "Working", func() error { return nil })
	assert.NoError(t, err)
}
