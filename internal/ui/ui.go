package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//go:generate go tool mockgen --build_flags=--mod=mod -destination mock/mock.go -package mock . Provider

// ErrCancelled is returned when the user leaves a prompt with esc or ctrl+c.
var ErrCancelled = errors.New("cancelled")

// Provider provides interactive terminal UI components
type Provider interface {
	// Select presents a list of options and returns the selected index
	Select(prompt string, options []Option) (int, error)

	// TextInput prompts for text input with optional validation
	TextInput(prompt string, placeholder string, validator func(string) error) (string, error)

	// RunWithSpinner runs a function with a bubbletea spinner
	RunWithSpinner(message string, operation func() error) error

	// ShowHeading displays a heading
	ShowHeading(message string)

	// ShowKeyValue displays a key-value pair with a highlighted key
	ShowKeyValue(key, value string)

	// NewLine prints a blank line
	NewLine()

	// ShowJSON displays formatted JSON output
	ShowJSON(data any) error

	// ShowYAML displays formatted YAML output
	ShowYAML(data any) error
}

// Option is a selectable entry with an optional dimmed description.
type Option struct {
	Label       string
	Description string
}

// BubbleteaUI implementation of the UI Provider interface.
type BubbleteaUI struct {
	stdout         io.Writer
	styles         styles
	programOptions []tea.ProgramOption
}

var _ Provider = (*BubbleteaUI)(nil)

// New creates a new UI instance using bubbletea
func New() *BubbleteaUI {
	return &BubbleteaUI{
		stdout: os.Stdout,
		styles: newStyles(lipgloss.DefaultRenderer()),
	}
}

// NewWithOptions creates a UI reading keys from input and writing to stdout, without a renderer.
func NewWithOptions(stdout io.Writer, input io.Reader) *BubbleteaUI {
	var options []tea.ProgramOption
	if input != nil {
		options = append(options, tea.WithInput(input))
	}
	if stdout != nil {
		options = append(options, tea.WithOutput(stdout))
	}
	options = append(options, tea.WithoutRenderer())

	return &BubbleteaUI{
		stdout:         stdout,
		styles:         newStyles(lipgloss.NewRenderer(stdout)),
		programOptions: options,
	}
}

// Select presents a list of options and returns the selected index
func (ui *BubbleteaUI) Select(prompt string, options []Option) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("nothing to select")
	}

	program := tea.NewProgram(newSelectModel(prompt, options, ui.styles), ui.programOptions...)
	finalModel, err := program.Run()
	if err != nil {
		return 0, fmt.Errorf("error running select: %w", err)
	}

	m := finalModel.(SelectModel)
	if m.cancelled {
		return 0, fmt.Errorf("selection %w", ErrCancelled)
	}
	return m.selected, nil
}

// TextInput prompts for text input with optional validation
func (ui *BubbleteaUI) TextInput(prompt string, placeholder string, validator func(string) error) (string, error) {
	program := tea.NewProgram(newTextInputModel(prompt, placeholder, validator, ui.styles), ui.programOptions...)
	finalModel, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("error running text input: %w", err)
	}

	m := finalModel.(TextInputModel)
	if m.cancelled {
		return "", fmt.Errorf("input %w", ErrCancelled)
	}
	return m.value, nil
}

// RunWithSpinner runs a function with a bubbletea spinner
func (ui *BubbleteaUI) RunWithSpinner(message string, operation func() error) error {
	program := tea.NewProgram(newSpinnerModel(message, ui.styles), ui.programOptions...)

	go func() {
		program.Send(operationDoneMsg{err: operation()})
	}()

	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("spinner error: %w", err)
	}

	m := finalModel.(SpinnerModel)
	if m.interrupted {
		return fmt.Errorf("%s %w", message, ErrCancelled)
	}
	return m.err
}

// ShowHeading displays a heading
func (ui *BubbleteaUI) ShowHeading(message string) {
	_, _ = fmt.Fprintf(ui.stdout, "%s\n\n", ui.styles.heading.Render(message))
}

// ShowKeyValue displays a key-value pair with a highlighted key
func (ui *BubbleteaUI) ShowKeyValue(key, value string) {
	_, _ = fmt.Fprintf(ui.stdout, "%s %s\n", ui.styles.key.Render(key+":"), value)
}

// NewLine prints a blank line
func (ui *BubbleteaUI) NewLine() {
	_, _ = fmt.Fprintln(ui.stdout)
}
