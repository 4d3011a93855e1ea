package repl

import (
	"sort"
	"strings"

	"github.com/wildfly/wildfly-sub133/internal/management"
)

// Completer suggests shell commands and operation names.
type Completer struct {
	commands   []string
	operations []string
}

// NewCompleter creates a Completer.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{"exit", "help", "history", "quit"},
		operations: []string{
			management.OpReadAttribute,
			management.OpReadChildrenNames,
			management.OpReadResource,
			management.OpReadResourceDescription,
		},
	}
}

// Complete returns full-line suggestions for a partial line. After a ':' it
// completes operation names, otherwise shell commands.
func (c *Completer) Complete(line string) []string {
	if i := strings.LastIndex(line, ":"); i >= 0 {
		head, prefix := line[:i+1], line[i+1:]
		if strings.Contains(prefix, "(") {
			return nil
		}
		return withPrefix(c.operations, head, prefix)
	}
	return withPrefix(c.commands, "", line)
}

func withPrefix(candidates []string, head, prefix string) []string {
	var out []string
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			out = append(out, head+cand)
		}
	}
	sort.Strings(out)
	return out
}
