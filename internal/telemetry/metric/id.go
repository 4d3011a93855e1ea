package metric

import (
	"cmp"
	"slices"
	"strings"

	"github.com/spaolacci/murmur3"
)

// Tag is a single key/value pair attached to a metric identity.
type Tag struct {
	Key   string
	Value string
}

// ID identifies a metric by name and tag set.
//
// Tags are kept sorted by key so that two IDs built from the same tags in a
// different order are equal, share the same Key and the same Hash.
type ID struct {
	Name string
	Tags []Tag
}

// NewID builds an ID. The tags slice is copied and sorted; a later tag with
// the same key replaces an earlier one.
func NewID(name string, tags ...Tag) ID {
	sorted := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if i := slices.IndexFunc(sorted, func(s Tag) bool { return s.Key == t.Key }); i >= 0 {
			sorted[i] = t
			continue
		}
		sorted = append(sorted, t)
	}
	slices.SortFunc(sorted, compareTag)
	return ID{Name: name, Tags: sorted}
}

// Compare orders IDs by name, then by number of tags, then pairwise by tag.
func Compare(a, b ID) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := cmp.Compare(len(a.Tags), len(b.Tags)); c != 0 {
		return c
	}
	for i := range a.Tags {
		if c := compareTag(a.Tags[i], b.Tags[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareTag(a, b Tag) int {
	if c := strings.Compare(a.Key, b.Key); c != 0 {
		return c
	}
	return strings.Compare(a.Value, b.Value)
}

// Equal reports whether two IDs identify the same metric.
func (id ID) Equal(other ID) bool {
	return Compare(id, other) == 0
}

// Tag returns the value of the tag with the given key.
func (id ID) Tag(key string) (string, bool) {
	for _, t := range id.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// Key returns the canonical string form used as a map key.
// Separators are control characters that cannot appear in metric names.
func (id ID) Key() string {
	var b strings.Builder
	b.WriteString(id.Name)
	for _, t := range id.Tags {
		b.WriteByte(0x1f)
		b.WriteString(t.Key)
		b.WriteByte(0x1e)
		b.WriteString(t.Value)
	}
	return b.String()
}

// Hash returns a 64-bit hash of the canonical form.
func (id ID) Hash() uint64 {
	return murmur3.Sum64([]byte(id.Key()))
}

// String renders the ID as name{k="v",...}.
func (id ID) String() string {
	if len(id.Tags) == 0 {
		return id.Name
	}
	var b strings.Builder
	b.WriteString(id.Name)
	b.WriteByte('{')
	for i, t := range id.Tags {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.Key)
		b.WriteString(`="`)
		b.WriteString(t.Value)
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}
