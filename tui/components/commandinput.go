package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/user/trimline-cli/tui/layout"
	"github.com/user/trimline-cli/tui/styles"
)

// KeyHint is shown in the command line when nothing else is.
const KeyHint = "space play · [ ] mark in/out · ←/→ nudge in · shift+←/→ nudge out · s commit · r reset · ? help · q quit"

const historyLimit = 50

// CommandInputState is the ':' command line: a small rune editor with history plus
// the transient result message shown when the editor is closed.
type CommandInputState struct {
	Active bool
	// Result is the toast text; IsError selects its colour.
	Result  string
	IsError bool
	// ResultID increments on every SetResult so a delayed clear only removes
	// the message it was scheduled for.
	ResultID int

	buf     []rune
	pos     int
	history []string
	// recall indexes history while browsing it; len(history) means "not browsing".
	recall int
}

// Open starts a fresh command.
func (s *CommandInputState) Open() {
	s.Active = true
	s.buf = s.buf[:0]
	s.pos = 0
	s.recall = len(s.history)
}

// Close abandons the command being typed.
func (s *CommandInputState) Close() {
	s.Active = false
	s.buf = s.buf[:0]
	s.pos = 0
}

// Submit closes the editor and returns what was typed. Non-empty commands are
// remembered for HistoryPrev.
func (s *CommandInputState) Submit() string {
	line := string(s.buf)
	s.Close()
	if line == "" {
		return ""
	}
	if n := len(s.history); n == 0 || s.history[n-1] != line {
		s.history = append(s.history, line)
		if len(s.history) > historyLimit {
			s.history = s.history[len(s.history)-historyLimit:]
		}
	}
	return line
}

// Input returns the text typed so far.
func (s *CommandInputState) Input() string { return string(s.buf) }

// Insert types r at the cursor.
func (s *CommandInputState) Insert(r rune) {
	s.buf = append(s.buf, 0)
	copy(s.buf[s.pos+1:], s.buf[s.pos:])
	s.buf[s.pos] = r
	s.pos++
}

// Backspace deletes the rune before the cursor.
func (s *CommandInputState) Backspace() {
	if s.pos == 0 {
		return
	}
	s.buf = append(s.buf[:s.pos-1], s.buf[s.pos:]...)
	s.pos--
}

// Delete deletes the rune under the cursor.
func (s *CommandInputState) Delete() {
	if s.pos >= len(s.buf) {
		return
	}
	s.buf = append(s.buf[:s.pos], s.buf[s.pos+1:]...)
}

func (s *CommandInputState) Left() {
	if s.pos > 0 {
		s.pos--
	}
}

func (s *CommandInputState) Right() {
	if s.pos < len(s.buf) {
		s.pos++
	}
}

func (s *CommandInputState) Home() { s.pos = 0 }

func (s *CommandInputState) End() { s.pos = len(s.buf) }

// HistoryPrev replaces the input with the previous remembered command.
func (s *CommandInputState) HistoryPrev() {
	if s.recall == 0 {
		return
	}
	s.recall--
	s.load(s.history[s.recall])
}

// HistoryNext moves forward through history, ending on an empty line.
func (s *CommandInputState) HistoryNext() {
	if s.recall >= len(s.history) {
		return
	}
	s.recall++
	if s.recall == len(s.history) {
		s.load("")
		return
	}
	s.load(s.history[s.recall])
}

func (s *CommandInputState) load(line string) {
	s.buf = append(s.buf[:0], []rune(line)...)
	s.pos = len(s.buf)
}

// SetResult sets the result message and returns its id.
func (s *CommandInputState) SetResult(msg string, isError bool) int {
	s.Result = msg
	s.IsError = isError
	s.ResultID++
	return s.ResultID
}

// ClearResult clears the result message if it is still the one identified by id.
func (s *CommandInputState) ClearResult(id int) {
	if id != s.ResultID {
		return
	}
	s.Result = ""
	s.IsError = false
}

var (
	commandLineStyle = lipgloss.NewStyle().Background(styles.DarkPurple)
	promptStyle      = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	typedStyle       = lipgloss.NewStyle().Foreground(styles.LightLavender)
	caretStyle       = lipgloss.NewStyle().Foreground(styles.DarkPurple).Background(styles.LightLavender)
	okStyle          = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	errStyle         = lipgloss.NewStyle().Foreground(styles.Pink).Bold(true)
	hintStyle        = lipgloss.NewStyle().Foreground(styles.Lavender).Italic(true)
)

// CommandInput renders the command line: the editor while active, otherwise the
// latest result, otherwise the key hint. The output is exactly width cells wide.
func CommandInput(s CommandInputState, width int) string {
	var content string
	switch {
	case s.Active:
		under := " "
		if s.pos < len(s.buf) {
			under = string(s.buf[s.pos])
		}
		var after string
		if s.pos+1 < len(s.buf) {
			after = string(s.buf[s.pos+1:])
		}
		content = promptStyle.Render(":") +
			typedStyle.Render(string(s.buf[:s.pos])) +
			caretStyle.Render(under) +
			typedStyle.Render(after)
	case s.Result != "":
		st := okStyle
		if s.IsError {
			st = errStyle
		}
		content = " " + st.Render(s.Result)
	default:
		content = " " + hintStyle.Render(KeyHint)
	}
	return commandLineStyle.Render(layout.Fit(content, width))
}
