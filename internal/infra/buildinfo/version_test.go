package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if info.Commit == "" || info.BuildTime == "" {
		t.Errorf("Commit and BuildTime should never be empty: %+v", info)
	}
}

func TestGet_LdflagsWin(t *testing.T) {
	oldCommit, oldTime := Commit, BuildTime
	t.Cleanup(func() { Commit, BuildTime = oldCommit, oldTime })
	Commit, BuildTime = "abc123", "2026-01-01T00:00:00Z"

	info := Get()
	if info.Commit != "abc123" || info.BuildTime != "2026-01-01T00:00:00Z" {
		t.Errorf("Get() = %+v", info)
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, Version+" (") {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, runtime.Version()) {
		t.Errorf("String() should include the Go version, got %q", s)
	}
}
