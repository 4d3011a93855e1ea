package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wildfly/wildfly-sub133/internal/cli/output"
	"github.com/wildfly/wildfly-sub133/internal/management"
)

// Prompt is printed before every line.
const Prompt = "[kernel] "

// Executor runs a management operation against a server.
type Executor interface {
	Execute(ctx context.Context, op management.Operation) (management.Result, error)
}

// REPL is the read-eval-print loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	exec      Executor
	formatter output.Formatter
	completer *Completer
	history   *History
}

// New creates a REPL reading from in and writing to out.
func New(in io.Reader, out io.Writer, exec Executor, f output.Formatter, h *History) *REPL {
	if h == nil {
		h = NewHistory("")
	}
	return &REPL{
		input:     in,
		output:    out,
		exec:      exec,
		formatter: f,
		completer: NewCompleter(),
		history:   h,
	}
}

// Run reads lines until exit, EOF or ctx is cancelled. Errors from individual
// requests are printed and do not stop the loop.
func (r *REPL) Run(ctx context.Context) error {
	reader := bufio.NewReader(r.input)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(r.output, Prompt)

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		eof := err == io.EOF

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		r.history.Add(line)
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "error: %v\n", err)
		}
		if eof {
			return nil
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	switch {
	case line == "help":
		fmt.Fprintln(r.output, "Operations: "+strings.Join(r.completer.operations, ", "))
		fmt.Fprintln(r.output, "Example: /subsystem=ejb3:read-resource(recursive=true)")
		fmt.Fprintln(r.output, "Commands: help, history, exit")
		return nil
	case line == "history":
		for i, e := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, e)
		}
		return nil
	case strings.HasSuffix(line, "?"):
		for _, s := range r.completer.Complete(strings.TrimSuffix(line, "?")) {
			fmt.Fprintln(r.output, s)
		}
		return nil
	}

	op, err := ParseRequest(line)
	if err != nil {
		return err
	}
	res, err := r.exec.Execute(ctx, op)
	if err != nil {
		return err
	}
	if res.Failed() {
		return fmt.Errorf("%s", res.FailureDescription)
	}
	return r.formatter.Format(r.output, res.Result)
}
