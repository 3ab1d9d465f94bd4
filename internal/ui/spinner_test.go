package ui

import (
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestSpinnerModel(t *testing.T) {
	model := newSpinnerModel("Exchanging code", testStyles())

	assert.NotNil(t, model.Init())
	assert.Contains(t, model.View(), "Exchanging code")

	result, cmd := model.Update(spinner.TickMsg{})
	model = result.(SpinnerModel)
	assert.NotNil(t, cmd)
	assert.False(t, model.done)

	boom := errors.New("boom")
	result, cmd = model.Update(operationDoneMsg{err: boom})
	model = result.(SpinnerModel)
	assert.NotNil(t, cmd)
	assert.True(t, model.done)
	assert.Equal(t, boom, model.err)
	assert.Equal(t, "\033[2K\r", model.View())
}

func TestSpinnerModel_Interrupt(t *testing.T) {
	model := newSpinnerModel("Exchanging code", testStyles())

	result, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	model = result.(SpinnerModel)
	assert.NotNil(t, cmd)
	assert.True(t, model.interrupted)
	assert.True(t, model.done)
}

func TestSpinnerModel_IgnoresOtherKeys(t *testing.T) {
	model := newSpinnerModel("Exchanging code", testStyles())

	result, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Nil(t, cmd)
	assert.False(t, result.(SpinnerModel).done)
}
