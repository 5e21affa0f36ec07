package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/vexpr/lang"
	"github.com/ardnew/vexpr/log"
)

const defaultEditor = "vi"

// editSourceCommand implements [tea.ExecCommand] for the edit-check-retry
// loop. It writes the initial source to a temp file, opens the user's
// editor, and checks the result against the session. On error the user is
// prompted to re-edit; declining abandons the edit.
type editSourceCommand struct {
	session *Session
	ctxFunc func() context.Context
	initial string
	source  string
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editSourceCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editSourceCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editSourceCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-check-retry loop. An empty file cancels the edit
// and leaves source empty. If the user declines to re-edit, it returns
// [ErrEditDeclined].
func (c *editSourceCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "vexpr-repl-*.vx")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	content := c.initial

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		source := strings.TrimSpace(string(data))
		if source == "" {
			return nil
		}

		checkErr := c.session.Check(ctx, source)
		c.logger.TraceContext(
			ctx,
			"editor check attempt",
			slog.Int("content_length", len(source)),
			slog.Bool("success", checkErr == nil),
		)

		if checkErr == nil {
			c.source = source

			return nil
		}

		fmt.Fprintf(c.stderr, "\nerror: %s\n", checkErr)

		if snippet := lang.Snippet(checkErr, source); snippet != "" {
			fmt.Fprintln(c.stderr, snippet)
		}

		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// runEditor launches the user's editor on the given file path and returns
// the edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
