package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// FormatNative writes the canonical source text of the program to w.
func (p *Program) FormatNative(_ context.Context, w io.Writer) error {
	_, err := fmt.Fprintln(w, p.Format())

	return err
}

// FormatJSON writes the syntax tree of the program as JSON to w.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(p)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the syntax tree of the program as YAML to w.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return writeYAML(ctx, w, ToMap(p.Root), indent)
}

// Print writes the syntax tree of the program to w, one node per line,
// indented by depth and followed by its position.
func (p *Program) Print(w io.Writer) error {
	return printNode(w, p.Root, 0)
}

func printNode(w io.Writer, n Node, depth int) error {
	_, err := fmt.Fprintf(w, "%s%s @%s\n",
		strings.Repeat("  ", depth), nodeLabel(n), n.Pos())
	if err != nil {
		return err
	}

	for _, c := range children(n) {
		if err := printNode(w, c, depth+1); err != nil {
			return err
		}
	}

	return nil
}

func nodeLabel(n Node) string {
	kind, _ := ToMap(n)["node"].(string)

	switch n := n.(type) {
	case *Assign:
		return kind + " " + assignSymbol(n.Op)
	case *Increment:
		if n.Prefix {
			return kind + " " + n.Op.String() + n.Op.String() + "x"
		}

		return kind + " x" + n.Op.String() + n.Op.String()
	case *Declare:
		return kind + " " + n.Type.String() + " " + n.Name
	case *Logical:
		return kind + " " + n.Op.String()
	case *Compare:
		return kind + " " + n.Op.String()
	case *Chain:
		ops := make([]string, len(n.Terms))
		for i, t := range n.Terms {
			ops[i] = t.Op.String()
		}

		return kind + " " + strings.Join(ops, " ")
	case *UnaryExpr:
		return kind + " " + n.Op.String()
	case *Literal:
		return kind + " " + n.Value.Type().String() + " " + n.Raw
	case *Variable:
		return kind + " " + n.Name
	case *Call:
		return kind + " " + n.Name
	case *NewValue:
		return kind + " " + n.Type.String()
	case *NewArrayExpr:
		return kind + " " + n.Type.String()
	default:
		return kind
	}
}

// FormatValueJSON writes the native form of v as JSON to w.
func FormatValueJSON(w io.Writer, v Value, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(v.Native(), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(v.Native())
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatValueYAML writes the native form of v as YAML to w.
func FormatValueYAML(ctx context.Context, w io.Writer, v Value, indent int) error {
	return writeYAML(ctx, w, v.Native(), indent)
}

func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}
