package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestUpdateQuitCommandReturnsQuit(t *testing.T) {
	m := newREPLModel()
	m.textInput.SetValue(":quit")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if !rm.quitting {
		t.Fatalf("quitting flag not set")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after quit command")
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg, got %T", msg)
		}
	}
}

func TestUpdateToggleCommands(t *testing.T) {
	m := newREPLModel()
	for _, input := range []string{":help", ":vars", ":asm"} {
		m.textInput.SetValue(input)
		model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd != nil {
			t.Fatalf("%s: expected no command", input)
		}
		m = model.(replModel)
	}
	if !m.showHelp || !m.showVars || !m.showAsm {
		t.Fatalf("toggles = help %v vars %v asm %v; want all on", m.showHelp, m.showVars, m.showAsm)
	}
	if m.quitting {
		t.Fatalf("quitting should remain false")
	}
}

func TestUpdateEnterRunsStatement(t *testing.T) {
	m := newREPLModel()
	m.textInput.SetValue("a = 6 * 7")

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm := model.(replModel)

	if len(rm.history) != 1 || rm.history[0].output != "42" || rm.history[0].isErr {
		t.Fatalf("history = %+v; want one result 42", rm.history)
	}
	if len(rm.cmdHistory) != 1 || rm.cmdHistory[0] != "a = 6 * 7" {
		t.Fatalf("cmdHistory = %q", rm.cmdHistory)
	}

	model, _ = rm.Update(tea.KeyMsg{Type: tea.KeyUp})
	rm = model.(replModel)
	if rm.textInput.Value() != "a = 6 * 7" {
		t.Errorf("up arrow recalled %q", rm.textInput.Value())
	}
}

func TestEvaluateAccumulatesSession(t *testing.T) {
	m := newREPLModel()

	steps := []struct {
		input string
		want  string
	}{
		{"a = 3", "3"},
		{"b = a * 2;", "6"},
		{"a + b", "9"},
		{"b > a", "1"},
	}
	for _, s := range steps {
		output, isErr := m.evaluate(s.input)
		if isErr || output != s.want {
			t.Fatalf("evaluate(%q) = %q, %v; want %q", s.input, output, isErr, s.want)
		}
	}

	if len(m.session) != 4 || m.session[0] != "a = 3;" {
		t.Errorf("session = %q", m.session)
	}
	want := []variable{{name: 'a', value: 3}, {name: 'b', value: 6}}
	if len(m.vars) != len(want) || m.vars[0] != want[0] || m.vars[1] != want[1] {
		t.Errorf("vars = %+v; want %+v", m.vars, want)
	}
	if !strings.Contains(m.lastAsm, "  sub rsp, 208") {
		t.Errorf("lastAsm not recorded:\n%s", m.lastAsm)
	}
}

func TestEvaluateErrorsLeaveSessionUnchanged(t *testing.T) {
	m := newREPLModel()
	if _, isErr := m.evaluate("a = 5"); isErr {
		t.Fatal("unexpected error")
	}

	tests := []struct {
		input   string
		wantMsg string
	}{
		{"1 +", `^ expected expression, found ";"`},
		{"a $ 1", "^ invalid token '$'"},
		{"a / 0", "divide error"},
	}
	for _, tc := range tests {
		output, isErr := m.evaluate(tc.input)
		if !isErr || !strings.Contains(output, tc.wantMsg) {
			t.Errorf("evaluate(%q) = %q, %v; want error containing %q", tc.input, output, isErr, tc.wantMsg)
		}
	}

	if len(m.session) != 1 {
		t.Errorf("session = %q; want only the first statement", m.session)
	}
	if output, _ := m.evaluate("a"); output != "5" {
		t.Errorf("a = %q after errors; want 5", output)
	}
}

func TestResetCommandClearsSession(t *testing.T) {
	m := newREPLModel()
	m.evaluate("z = 9")

	m, _ = m.handleCommand(":reset")
	if len(m.session) != 0 || len(m.vars) != 0 || m.lastAsm != "" {
		t.Fatalf("reset left session=%q vars=%v", m.session, m.vars)
	}
	if last := m.history[len(m.history)-1]; last.output != "Session reset" {
		t.Errorf("history tail = %+v", last)
	}
}

func TestViewRendersPanels(t *testing.T) {
	m := newREPLModel()
	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 60})
	m = model.(replModel)
	m.evaluate("c = 4")
	m.showVars = true
	m.showAsm = true

	view := m.View()
	for _, want := range []string{"ninecc REPL", "Variables", "= 4", "[rbp-24]", "Assembly", "mov rbp, rsp"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestLineEditingKeysReachInput(t *testing.T) {
	m := newREPLModel()
	m.textInput.SetValue("a = 1")
	m.textInput.CursorEnd()

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	m = model.(replModel)
	if m.textInput.Position() != 0 {
		t.Errorf("ctrl+a left cursor at %d; want line start", m.textInput.Position())
	}
	if m.showAsm {
		t.Error("ctrl+a should not toggle the assembly panel")
	}

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	m = model.(replModel)
	if m.textInput.Value() != "" {
		t.Errorf("ctrl+k left %q; want the line deleted", m.textInput.Value())
	}
	if m.showHelp {
		t.Error("ctrl+k should not toggle help")
	}
}

func TestFunctionKeysTogglePanels(t *testing.T) {
	m := newREPLModel()
	for _, k := range []tea.KeyType{tea.KeyF1, tea.KeyF2, tea.KeyF3} {
		model, cmd := m.Update(tea.KeyMsg{Type: k})
		if cmd != nil {
			t.Fatalf("%v: expected no command", k)
		}
		m = model.(replModel)
	}
	if !m.showHelp || !m.showVars || !m.showAsm {
		t.Errorf("toggles = help %v vars %v asm %v; want all on", m.showHelp, m.showVars, m.showAsm)
	}
}

func TestCtrlDQuitsOnlyOnEmptyLine(t *testing.T) {
	m := newREPLModel()
	m.textInput.SetValue("b")
	m.textInput.CursorStart()

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = model.(replModel)
	if m.quitting {
		t.Fatal("ctrl+d with text on the line should not quit")
	}
	if m.textInput.Value() != "" {
		t.Errorf("ctrl+d left %q; want the character deleted", m.textInput.Value())
	}

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = model.(replModel)
	if !m.quitting || cmd == nil {
		t.Error("ctrl+d on an empty line should quit")
	}
}
