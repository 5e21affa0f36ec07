package repl

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the key bindings of the REPL.
type keyMap struct {
	Interrupt    key.Binding
	Quit         key.Binding
	Submit       key.Binding
	Complete     key.Binding
	CompleteBack key.Binding
	Toggle       key.Binding
	Prev         key.Binding
	Next         key.Binding
	PrevInMode   key.Binding
	NextInMode   key.Binding
	PrevCtrl     key.Binding
	NextCtrl     key.Binding
}

var keys = keyMap{
	Interrupt: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "clear input, or exit on an empty line"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "exit on an empty line"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "evaluate, or accept the selected candidate"),
	),
	Complete: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next completion candidate"),
	),
	CompleteBack: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous completion candidate"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "toggle command mode, or cancel completion"),
	),
	Prev: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("up", "previous history entry (switches mode)"),
	),
	Next: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("down", "next history entry (switches mode)"),
	),
	PrevInMode: key.NewBinding(
		key.WithKeys("shift+up"),
		key.WithHelp("shift+up", "previous history entry in this mode"),
	),
	NextInMode: key.NewBinding(
		key.WithKeys("shift+down"),
		key.WithHelp("shift+down", "next history entry in this mode"),
	),
	PrevCtrl: key.NewBinding(
		key.WithKeys("alt+up"),
		key.WithHelp("alt+up", "previous command (restores input at the end)"),
	),
	NextCtrl: key.NewBinding(
		key.WithKeys("alt+down"),
		key.WithHelp("alt+down", "next command (restores input at the end)"),
	),
}

// Bindings returns every binding in help order.
func (k keyMap) Bindings() []key.Binding {
	return []key.Binding{
		k.Submit, k.Complete, k.CompleteBack, k.Toggle,
		k.Prev, k.Next, k.PrevInMode, k.NextInMode, k.PrevCtrl, k.NextCtrl,
		k.Interrupt, k.Quit,
	}
}

// keyHelp renders one aligned line per binding.
func keyHelp(bindings []key.Binding) string {
	width := 0
	for _, b := range bindings {
		width = max(width, len(b.Help().Key))
	}

	var sb strings.Builder

	for _, b := range bindings {
		h := b.Help()
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, h.Key, h.Desc)
	}

	return sb.String()
}
