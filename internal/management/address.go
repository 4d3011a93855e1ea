package management

import (
	"errors"
	"fmt"
	"strings"
)

// PathElement is one key=value segment of an address.
type PathElement struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Wildcard matches any value of a path element key.
const Wildcard = "*"

// String renders the element as key=value.
func (p PathElement) String() string {
	return p.Key + "=" + p.Value
}

// Address locates a resource in the model. The empty address is the root.
type Address []PathElement

// ErrInvalidAddress is returned by ParseAddress for malformed input.
var ErrInvalidAddress = errors.New("management: invalid address")

// ParseAddress parses "/k1=v1/k2=v2". Both "" and "/" denote the root.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "/")
	if s == "" {
		return Address{}, nil
	}

	segments := strings.Split(s, "/")
	addr := make(Address, 0, len(segments))
	for _, seg := range segments {
		k, v, ok := strings.Cut(seg, "=")
		if !ok || k == "" || v == "" {
			return nil, fmt.Errorf("%w: segment %q", ErrInvalidAddress, seg)
		}
		addr = append(addr, PathElement{Key: k, Value: v})
	}
	return addr, nil
}

// MustParseAddress is like ParseAddress but panics on error.
// Intended for constant addresses.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the address in its parseable form.
func (a Address) String() string {
	if len(a) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, p := range a {
		b.WriteByte('/')
		b.WriteString(p.String())
	}
	return b.String()
}

// Append returns a new address with elems appended. a is not modified.
func (a Address) Append(elems ...PathElement) Address {
	out := make(Address, 0, len(a)+len(elems))
	out = append(out, a...)
	return append(out, elems...)
}

// Child is shorthand for Append(PathElement{key, value}).
func (a Address) Child(key, value string) Address {
	return a.Append(PathElement{Key: key, Value: value})
}

// Parent returns the address without its last element.
// The parent of the root is the root.
func (a Address) Parent() Address {
	if len(a) == 0 {
		return Address{}
	}
	return a[:len(a)-1:len(a)-1]
}

// Last returns the final path element, or the zero element for the root.
func (a Address) Last() PathElement {
	if len(a) == 0 {
		return PathElement{}
	}
	return a[len(a)-1]
}

// Value returns the value of the first element with the given key.
func (a Address) Value(key string) (string, bool) {
	for _, p := range a {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Equal reports whether two addresses have the same elements.
func (a Address) Equal(b Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
