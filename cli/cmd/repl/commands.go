package repl

import (
	"fmt"
	"strings"
)

// command is a control-mode command.
type command struct {
	name    string
	aliases []string
	help    string
}

var commands = []command{
	{"help", []string{"h", "?"}, "Print this message"},
	{"vars", []string{"v"}, "List variables with their types and values"},
	{"funcs", []string{"f"}, "List callable functions"},
	{"edit", []string{"e"}, "Edit an expression in $EDITOR (default: the last one)"},
	{"reset", []string{"r"}, "Discard every variable"},
	{"clear", []string{"c"}, "Clear screen"},
	{"quit", []string{"q", "exit"}, "Exit REPL"},
}

// ctrlCommands are the completion candidates of control mode.
var ctrlCommands = commandNames()

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}

	return names
}

// lookupCommand returns the name of the command called name or one of its
// aliases.
func lookupCommand(name string) (string, bool) {
	for _, c := range commands {
		if c.name == name {
			return c.name, true
		}

		for _, alias := range c.aliases {
			if alias == name {
				return c.name, true
			}
		}
	}

	return "", false
}

func helpMessage() string {
	var sb strings.Builder

	sb.WriteString("\n: Commands (press Esc to toggle mode):\n\n")

	for _, c := range commands {
		fmt.Fprintf(&sb, "  %-6s %s\n", c.name, c.help)
	}

	sb.WriteString(`
Usage:
  Type an expression to evaluate it; declarations persist between lines
    float3 v = new float3(1, 2, 3)
    length(v) * 2
  Completions appear as you type; Space accepts the selected candidate

Keys:
`)
	sb.WriteString(keyHelp(keys.Bindings()))

	return sb.String()
}
