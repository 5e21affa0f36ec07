package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/vexpr/lang"
	"github.com/ardnew/vexpr/log"
)

// Messages delivered when the external editor returns.
type (
	editSourceMsg    struct{ source string }
	editCancelledMsg struct{}
	editErrorMsg     struct{ err error }
)

// inputMode selects whether input is evaluated or run as a command.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const (
	defaultWidth = 80
	inputLimit   = 1024
)

var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	typeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

func (mode inputMode) prompt() string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt)
	}

	return promptStyle.Render(evalPrompt)
}

func (mode inputMode) other() inputMode {
	if mode == modeCtrl {
		return modeEval
	}

	return modeCtrl
}

// echo renders submitted input the way it appeared on the input line.
func (mode inputMode) echo(input string) string {
	return mode.prompt() + inputStyle.Render(input)
}

func (mode inputMode) hint() string {
	if mode == modeCtrl {
		return "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
	}

	return "Type an expression or press Esc for commands"
}

// inputState is the text and cursor of an input line.
type inputState struct {
	text   string
	cursor int
}

// altNav is the state of command history navigation started from another
// mode, restored when navigation runs off either end.
type altNav struct {
	active bool
	mode   inputMode
	state  inputState
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	session    *Session
	logger     log.Logger
	history    *History
	historyIdx int
	lastEval   string
	comp       completion
	alt        altNav
	saved      [2]inputState // per-mode input, indexed by inputMode
	width      int
	mode       inputMode
	quitting   bool
}

// Run starts the REPL on session. History is persisted in cacheDir.
func Run(
	ctx context.Context,
	session *Session,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if session == nil {
		return ErrNoSession
	}

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", history.path),
			slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("history", history.Len()),
		slog.Int("vars", len(session.Vars())),
		slog.Int("funcs", len(session.Functions())),
	)

	_, err = tea.NewProgram(
		newModel(ctx, session, history, logger),
		tea.WithContext(ctx),
	).Run()

	return err
}

func newModel(
	ctx context.Context,
	session *Session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = modeEval.prompt()
	ti.CharLimit = inputLimit
	ti.Width = defaultWidth
	ti.Focus()

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    session,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		comp:       completion{index: -1},
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editSourceMsg:
		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("source_length", len(msg.source)))

		m.lastEval = msg.source

		return m, m.evaluate(msg.source)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.hintLine() + "\n"
}

// hintLine returns the line below the input: the history position, a usage
// hint, the signature of the enclosing call, or the completion candidates.
func (m model) hintLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		return hintStyle.Render(m.mode.hint())
	}

	if m.mode == modeEval {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			if signature, params := m.session.Signature(call.name); signature != "" {
				return renderSignatureHint(signature, params, call.argIndex)
			}
		}
	}

	return renderCandidateBar(m.comp, m.width, m.session.IsFunction)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()))

	switch {
	case key.Matches(msg, keys.Interrupt):
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.comp.cycling = false
		m.alt.active = false
		m.historyIdx = m.history.Len()
		m.refresh(false)

		return m, nil

	case key.Matches(msg, keys.Quit):
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case key.Matches(msg, keys.Submit):
		m.alt.active = false

		if !m.comp.cycling || len(m.comp.matches) == 0 {
			return m.submit()
		}

		// Keep the selected candidate without submitting.
		m.comp.cycling = false
		m.refresh(true)

		return m, nil

	case key.Matches(msg, keys.Complete):
		return m.cycle(+1), nil

	case key.Matches(msg, keys.CompleteBack):
		return m.cycle(-1), nil

	case key.Matches(msg, keys.PrevCtrl):
		return m.historyCtrl(-1), nil

	case key.Matches(msg, keys.NextCtrl):
		return m.historyCtrl(+1), nil

	case key.Matches(msg, keys.PrevInMode):
		return m.historyStep(-1, m.inMode(m.mode)), nil

	case key.Matches(msg, keys.NextInMode):
		return m.historyStep(+1, m.inMode(m.mode)), nil

	case key.Matches(msg, keys.Prev):
		return m.historyStep(-1, nil), nil

	case key.Matches(msg, keys.Next):
		return m.historyStep(+1, nil), nil

	case key.Matches(msg, keys.Toggle):
		if m.comp.cycling {
			m.comp.cycling = false
			m.input.SetValue(m.comp.origText)
			m.input.SetCursor(m.comp.origCursor)
			m.refresh(false)

			return m, nil
		}

		m.alt.active = false

		return m.switchToMode(m.mode.other()), nil
	}

	// Typed runes may complete a word; edits and cursor motion never do.
	typed := msg.Type == tea.KeyRunes
	if !typed || msg.String() == " " {
		m.comp.cycling = false
	}

	if !typed {
		m.alt.active = false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(typed)

	return m, cmd
}

// cycle selects the next candidate in direction step and writes it into the
// input. A lone candidate is accepted immediately.
func (m model) cycle(step int) model {
	n := len(m.comp.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		m.replaceWord(m.comp.matches[0].Str)
		m.comp = completion{index: -1}

		return m

	case m.comp.cycling:
		m.comp.index = (m.comp.index + step + n) % n

	default:
		m.comp.cycling = true
		m.comp.origText = m.input.Value()
		m.comp.origCursor = m.input.Position()

		m.comp.index = 0
		if step < 0 {
			m.comp.index = n - 1
		}
	}

	m.replaceWord(m.comp.matches[m.comp.index].Str)

	return m
}

// replaceWord replaces the word being completed and moves the cursor past it.
func (m *model) replaceWord(word string) {
	input := m.input.Value()
	cursor := m.comp.start + len(word)

	m.input.SetValue(input[:m.comp.start] + word + input[m.comp.end:])
	m.input.SetCursor(cursor)

	m.comp.end = cursor
}

// refresh recomputes completion candidates for the input. When accept is set
// and the word at the cursor already spells the only candidate, completion
// ends.
func (m *model) refresh(accept bool) {
	m.comp.matches, m.comp.start, m.comp.end = m.computeMatches()

	if !m.comp.cycling {
		m.comp.index = -1
	}

	if !accept || len(m.comp.matches) != 1 {
		return
	}

	if m.input.Value()[m.comp.start:m.comp.end] == m.comp.matches[0].Str {
		m.comp = completion{index: -1, start: m.comp.start, end: m.comp.end}
	}
}

func (m model) submit() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	mode := m.mode

	m.saved = [2]inputState{}
	m.input.SetValue("")

	if _, err := m.history.WriteWithMode(input, mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not write history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	m.logger.TraceContext(m.ctxFunc(), "repl submit",
		slog.String("input", input),
		slog.Int("mode", int(mode)))

	if mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.lastEval = input

	return m, tea.Sequence(tea.Println(mode.echo(input)), m.evaluate(input))
}

// evaluate evaluates source in the session and prints the result.
func (m model) evaluate(source string) tea.Cmd {
	ctx := m.ctxFunc()

	result, err := m.session.Eval(ctx, source)
	if err != nil {
		m.logger.TraceContext(ctx, "repl eval failed",
			slog.String("class", lang.ClassOf(err).String()),
			slog.Any("error", err))

		return tea.Println(formatError(err, source))
	}

	m.logger.TraceContext(ctx, "repl eval result",
		slog.String("type", result.Type().String()))

	return tea.Println(formatResult(result.String(), result.Type().String()))
}

// formatResult renders an evaluated value followed by its type.
func formatResult(value, typ string) string {
	return resultStyle.Render(value) + " " + typeStyle.Render(typ)
}

// formatError renders an error with the offending source line and a caret
// under the reported position, when known.
func formatError(err error, source string) string {
	out := errorStyle.Render("error: " + err.Error())

	if snippet := lang.Snippet(err, source); snippet != "" {
		out += "\n" + hintStyle.Render(snippet)
	}

	return out
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	name, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	echo := tea.Println(modeCtrl.echo(input))

	cmd, ok := lookupCommand(name)
	if !ok {
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + name + " (try 'help')"),
		)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", cmd),
		slog.String("args", args))

	switch cmd {
	case "quit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "vars":
		return m, tea.Sequence(echo, tea.Println(m.listVars()))

	case "funcs":
		return m, tea.Sequence(echo, tea.Println(m.listFuncs()))

	case "reset":
		m.session.Reset()

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render("variables cleared")))

	case "clear":
		return m, tea.ClearScreen

	case "edit":
		return m, tea.Sequence(echo, m.edit(args))
	}

	return m, nil
}

// edit opens the external editor on initial, or on the most recent evaluated
// input when initial is empty.
func (m model) edit(initial string) tea.Cmd {
	if initial == "" {
		initial = m.lastEval
	}

	cmd := &editSourceCommand{
		session: m.session,
		ctxFunc: m.ctxFunc,
		initial: initial,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editCancelledMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.source == "":
			return editCancelledMsg{}
		}

		return editSourceMsg{source: cmd.source}
	})
}

func (m model) listVars() string {
	vars := m.session.Vars()
	if len(vars) == 0 {
		return hintStyle.Render("  (no variables)")
	}

	lines := make([]string, len(vars))
	for i, v := range vars {
		lines[i] = fmt.Sprintf("  %s %s = %s",
			typeStyle.Render(v.Type.String()), v.Name,
			resultStyle.Render(v.Value.Literal()))
	}

	return strings.Join(lines, "\n")
}

func (m model) listFuncs() string {
	names := m.session.Functions()

	lines := make([]string, len(names))
	for i, name := range names {
		signature, _ := m.session.Signature(name)
		lines[i] = "  " + hintStyle.Render(signature)
	}

	return strings.Join(lines, "\n")
}

// seekHistory returns the index of the nearest history entry from the
// current position in direction step (-1 or +1) that satisfies keep.
func (m model) seekHistory(step int, keep func(HistoryEntry) bool) (int, bool) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.GetEntry(i)
		if err == nil && (keep == nil || keep(entry)) {
			return i, true
		}
	}

	return 0, false
}

func (m model) inMode(mode inputMode) func(HistoryEntry) bool {
	return func(e HistoryEntry) bool { return e.Mode == mode }
}

// historyStep moves through history in direction step, switching to the mode
// of each recalled entry. Stepping past the newest entry clears the input.
func (m model) historyStep(step int, keep func(HistoryEntry) bool) model {
	if i, ok := m.seekHistory(step, keep); ok {
		return m.recall(i)
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		return m.restore(inputState{})
	}

	return m
}

// historyCtrl navigates command history in direction step. The first step
// saves the current input and switches to command mode; running off either
// end of the command history restores them.
func (m model) historyCtrl(step int) model {
	if !m.alt.active {
		m.alt = altNav{
			active: true,
			mode:   m.mode,
			state:  inputState{m.input.Value(), m.input.Position()},
		}
		m = m.switchToMode(modeCtrl)
	}

	if i, ok := m.seekHistory(step, m.inMode(modeCtrl)); ok {
		return m.recall(i)
	}

	m.alt.active = false
	m = m.switchToMode(m.alt.mode)

	return m.restore(m.alt.state)
}

// recall loads history entry i into the input, switching to its mode.
func (m model) recall(i int) model {
	entry, err := m.history.GetEntry(i)
	if err != nil {
		return m
	}

	m = m.switchToMode(entry.Mode)
	m.historyIdx = i
	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	m.refresh(false)

	return m
}

// restore leaves history navigation with the given input.
func (m model) restore(state inputState) model {
	m.historyIdx = m.history.Len()
	m.input.SetValue(state.text)
	m.input.SetCursor(state.cursor)
	m.refresh(false)

	return m
}

// switchToMode saves the input of the current mode and restores the input
// last saved for mode.
func (m model) switchToMode(mode inputMode) model {
	if mode == m.mode {
		return m
	}

	m.saved[m.mode] = inputState{m.input.Value(), m.input.Position()}
	m.mode = mode

	m.input.Prompt = mode.prompt()
	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)
	m.refresh(false)

	return m
}
