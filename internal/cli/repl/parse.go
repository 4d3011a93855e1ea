package repl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wildfly/wildfly-sub133/internal/management"
)

// ParseRequest parses "address:operation(k=v,...)".
func ParseRequest(line string) (management.Operation, error) {
	line = strings.TrimSpace(line)

	head := line
	if paren := strings.Index(line, "("); paren >= 0 {
		head = line[:paren]
	}
	colon := strings.LastIndex(head, ":")
	if colon < 0 {
		return management.Operation{}, fmt.Errorf("missing ':' before operation name in %q", line)
	}

	addr, err := management.ParseAddress(line[:colon])
	if err != nil {
		return management.Operation{}, err
	}

	name, rawParams, hasParams := strings.Cut(line[colon+1:], "(")
	name = strings.TrimSpace(name)
	if name == "" {
		return management.Operation{}, fmt.Errorf("missing operation name in %q", line)
	}

	op := management.Operation{Name: name, Address: addr}
	if !hasParams {
		return op, nil
	}
	if !strings.HasSuffix(rawParams, ")") {
		return management.Operation{}, fmt.Errorf("unterminated parameter list in %q", line)
	}

	rawParams = strings.TrimSpace(strings.TrimSuffix(rawParams, ")"))
	if rawParams == "" {
		return op, nil
	}

	op.Params = make(map[string]any)
	for _, pair := range strings.Split(rawParams, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return management.Operation{}, fmt.Errorf("malformed parameter %q", strings.TrimSpace(pair))
		}
		op.Params[k] = paramValue(strings.TrimSpace(v))
	}
	return op, nil
}

func paramValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return strings.Trim(s, `"`)
}
