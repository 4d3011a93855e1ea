package collector

import (
	"regexp"
	"strings"

	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/metric"
)

var (
	nonWord    = regexp.MustCompile(`\W+`)
	camelBound = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// Naming derives metric names and tags from management addresses.
type Naming struct {
	// Prefix is prepended to every name when non-empty.
	Prefix string
}

// Derive returns the metric name and tags for attr at addr.
//
// The first subsystem=<x> element becomes a name segment; every other
// element becomes a tag. A deployment tag is mirrored onto subdeployment
// when the latter is absent.
func (n Naming) Derive(addr management.Address, attr string, counter bool) (string, []metric.Tag) {
	var segments []string
	if n.Prefix != "" {
		segments = append(segments, n.Prefix)
	}

	var tags []metric.Tag
	subsystemSeen := false
	for _, p := range addr {
		if p.Key == "subsystem" && !subsystemSeen {
			subsystemSeen = true
			segments = append(segments, p.Value)
			continue
		}
		tags = append(tags, metric.Tag{Key: snakeCase(p.Key), Value: p.Value})
	}
	segments = append(segments, attr)

	for i, s := range segments {
		segments[i] = snakeCase(s)
	}
	name := strings.Join(segments, "_")
	if counter && !strings.HasSuffix(name, "_total") {
		name += "_total"
	}

	if dep, ok := findTag(tags, "deployment"); ok {
		if _, ok := findTag(tags, "subdeployment"); !ok {
			tags = append(tags, metric.Tag{Key: "subdeployment", Value: dep})
		}
	}
	return name, tags
}

func findTag(tags []metric.Tag, key string) (string, bool) {
	for _, t := range tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// snakeCase replaces non-word runs with '_', splits camelCase words and
// lower-cases the result.
func snakeCase(s string) string {
	s = nonWord.ReplaceAllString(s, "_")
	s = camelBound.ReplaceAllString(s, "${1}_${2}")
	return strings.Trim(strings.ToLower(s), "_")
}
