package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ninecc/pkg/asm"
	"ninecc/pkg/compiler"
	"ninecc/pkg/cpu"
)

var (
	blue  = lipgloss.Color("#3B82F6")
	green = lipgloss.Color("#10B981")
	red   = lipgloss.Color("#EF4444")
	grey  = lipgloss.Color("#6B7280")
	amber = lipgloss.Color("#F59E0B")

	promptStyle = lipgloss.NewStyle().Foreground(blue).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(blue).Bold(true)
	resultStyle = lipgloss.NewStyle().Foreground(green)
	errorStyle  = lipgloss.NewStyle().Foreground(red)
	dimStyle    = lipgloss.NewStyle().Foreground(grey)
	keyStyle    = lipgloss.NewStyle().Foreground(amber)
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1)
)

// frameBase is rbp inside main: below the return sentinel and the saved rbp.
const frameBase = cpu.StackTop - 16

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

type variable struct {
	name  byte
	value int64
}

type replModel struct {
	textInput   textinput.Model
	session     []string // statements accepted so far, each ending in ";"
	vars        []variable
	lastAsm     string
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showVars    bool
	showAsm     bool
	quitting    bool
	initialized bool
}

// Panel toggles sit on function keys; the text input already binds most
// ctrl combinations for line editing.
var (
	keyPrev    = key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous input"))
	keyNext    = key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next input"))
	keyRun     = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run"))
	keyQuit    = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	keyEOF     = key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "quit on empty line"))
	keyClear   = key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear"))
	keyHelp    = key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help"))
	keyVars    = key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "vars"))
	keyAsm     = key.NewBinding(key.WithKeys("f3"), key.WithHelp("f3", "asm"))
	footerKeys = []key.Binding{keyHelp, keyVars, keyAsm, keyClear, keyQuit}
)

func newREPLModel() replModel {
	ti := textinput.New()
	ti.Placeholder = "a = 3; a * 2"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "ninecc> "

	return replModel{textInput: ti, historyIdx: -1}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		if next, cmd, ok := m.handleKey(msg); ok {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// handleKey reports ok=false for keys that belong to the text input.
func (m replModel) handleKey(msg tea.KeyMsg) (replModel, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keyQuit),
		key.Matches(msg, keyEOF) && m.textInput.Value() == "":
		m.quitting = true
		return m, tea.Quit, true
	case key.Matches(msg, keyClear):
		m.history = nil
	case key.Matches(msg, keyHelp):
		m.showHelp = !m.showHelp
	case key.Matches(msg, keyVars):
		m.showVars = !m.showVars
	case key.Matches(msg, keyAsm):
		m.showAsm = !m.showAsm
	case key.Matches(msg, keyPrev):
		m.recall(-1)
	case key.Matches(msg, keyNext):
		m.recall(+1)
	case key.Matches(msg, keyRun):
		return m.submit()
	default:
		return m, nil, false
	}
	return m, nil, true
}

// recall moves through earlier inputs; stepping past the newest clears the line.
func (m *replModel) recall(delta int) {
	if len(m.cmdHistory) == 0 || (delta > 0 && m.historyIdx == -1) {
		return
	}
	switch {
	case m.historyIdx == -1:
		m.historyIdx = len(m.cmdHistory) - 1
	case m.historyIdx+delta >= len(m.cmdHistory):
		m.historyIdx = -1
	default:
		m.historyIdx = max(m.historyIdx+delta, 0)
	}

	if m.historyIdx == -1 {
		m.textInput.SetValue("")
	} else {
		m.textInput.SetValue(m.cmdHistory[m.historyIdx])
	}
	m.textInput.CursorEnd()
}

func (m replModel) submit() (replModel, tea.Cmd, bool) {
	input := strings.TrimSpace(m.textInput.Value())
	if input == "" {
		return m, nil, true
	}
	m.textInput.SetValue("")
	m.historyIdx = -1

	if strings.HasPrefix(input, ":") {
		next, cmd := m.handleCommand(input)
		return next, cmd, true
	}

	output, isErr := m.evaluate(input)
	m.history = append(m.history, historyEntry{input: input, output: output, isErr: isErr})
	m.cmdHistory = append(m.cmdHistory, input)
	return m, nil, true
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.history = nil
	case ":vars", ":v":
		m.showVars = !m.showVars
	case ":asm", ":a":
		m.showAsm = !m.showAsm
	case ":reset", ":r":
		m.session = nil
		m.vars = nil
		m.lastAsm = ""
		m.history = append(m.history, historyEntry{
			input:  input,
			output: "Session reset",
			isErr:  false,
		})
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Unknown command: %s", cmd),
			isErr:  true,
		})
	}
	return m, nil
}

// evaluate appends input to the session, recompiles the whole session and
// runs it. The session only keeps input that compiled and ran cleanly.
func (m *replModel) evaluate(input string) (string, bool) {
	if !strings.HasSuffix(input, ";") {
		input += ";"
	}

	// Positions in diagnostics refer to what the user just typed.
	if _, err := compiler.Compile(input); err != nil {
		return compiler.Diagnostic(input, err), true
	}

	src := strings.Join(append(append([]string(nil), m.session...), input), " ")
	tokens, err := compiler.Lex(src)
	if err != nil {
		return err.Error(), true
	}
	prog, err := compiler.Parse(tokens)
	if err != nil {
		return err.Error(), true
	}
	assembly := compiler.Generate(prog)

	image, err := asm.Assemble(assembly)
	if err != nil {
		return err.Error(), true
	}
	vm := cpu.NewCPU()
	if err := vm.Load(image.Code, image.Entry); err != nil {
		return err.Error(), true
	}
	if err := vm.Run(); err != nil {
		return err.Error(), true
	}

	m.session = append(m.session, input)
	m.lastAsm = assembly
	m.vars = m.vars[:0]
	for _, sym := range prog.Vars.Used() {
		val, err := vm.Read64(frameBase - uint64(sym.Offset))
		if err != nil {
			continue
		}
		m.vars = append(m.vars, variable{name: sym.Name, value: int64(val)})
	}
	return fmt.Sprintf("%d", vm.Result()), false
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}
	if m.quitting {
		return dimStyle.Render("bye\n")
	}

	var panels []string
	if m.showVars {
		panels = append(panels, varsPanel(m.vars))
	}
	if m.showAsm {
		panels = append(panels, asmPanel(m.lastAsm))
	}
	if m.showHelp {
		panels = append(panels, helpPanel())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ninecc REPL") + " ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d statements", len(m.session))) + "\n\n")

	// Each entry takes three lines; keep the newest that fit above the panels.
	used := 6
	for _, p := range panels {
		used += lipgloss.Height(p)
	}
	fit := max((m.height-used)/3, 0)
	for _, entry := range m.history[max(len(m.history)-fit, 0):] {
		b.WriteString(dimStyle.Render("  › ") + entry.input + "\n")
		if entry.isErr {
			b.WriteString(errorStyle.Render(entry.output) + "\n\n")
		} else {
			b.WriteString("  " + resultStyle.Render("= "+entry.output) + "\n\n")
		}
	}

	for _, p := range panels {
		b.WriteString(p + "\n")
	}
	b.WriteString(m.textInput.View() + "\n\n")

	hints := make([]string, len(footerKeys))
	for i, k := range footerKeys {
		hints[i] = keyStyle.Render(k.Help().Key) + " " + dimStyle.Render(k.Help().Desc)
	}
	b.WriteString(strings.Join(hints, "  "))
	return b.String()
}

func panel(title, body string) string {
	return panelStyle.Render(titleStyle.Render(title) + "\n" + body)
}

// varsPanel lists each used variable with its value and frame slot.
func varsPanel(vars []variable) string {
	if len(vars) == 0 {
		return panel("Variables", dimStyle.Render("none yet"))
	}
	lines := make([]string, len(vars))
	for i, v := range vars {
		lines[i] = fmt.Sprintf("%s = %d  [rbp-%d]", keyStyle.Render(string(v.name)), v.value, compiler.Offset(v.name))
	}
	return panel("Variables", strings.Join(lines, "\n"))
}

func asmPanel(assembly string) string {
	if assembly == "" {
		return panel("Assembly", dimStyle.Render("nothing compiled yet"))
	}
	return panel("Assembly", strings.TrimSuffix(assembly, "\n"))
}

func helpPanel() string {
	rows := [][2]string{
		{"enter", "run the session with this statement"},
		{"↑ ↓", "input history"},
		{":vars", "toggle variables (f2)"},
		{":asm", "toggle assembly (f3)"},
		{":clear", "clear the output (ctrl+l)"},
		{":reset", "forget every statement"},
		{":quit", "exit (ctrl+c, ctrl+d on an empty line)"},
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = keyStyle.Render(fmt.Sprintf("%-7s", r[0])) + " " + r[1]
	}
	return panel("Help", strings.Join(lines, "\n"))
}

func runREPL() error {
	p := tea.NewProgram(newREPLModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
