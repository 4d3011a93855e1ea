package repl

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistory_AddAndGet(t *testing.T) {
	h := NewHistory("")
	h.maxSize = 3

	for _, l := range []string{"a", "b", "c", "d"} {
		h.Add(l)
	}

	if got := h.Entries(); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("Entries() = %v", got)
	}
	if h.Get(0) != "d" || h.Get(2) != "b" {
		t.Errorf("Get(0) = %q, Get(2) = %q", h.Get(0), h.Get(2))
	}
	if h.Get(3) != "" || h.Get(-1) != "" {
		t.Error("out of range Get should return empty string")
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "history")

	h := NewHistory(file)
	h.Add(":read-resource")
	h.Add("/subsystem=ejb3:read-attribute(name=pool-size)")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := NewHistory(file)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded.Entries(), h.Entries()) {
		t.Errorf("loaded %v, want %v", loaded.Entries(), h.Entries())
	}
}

func TestHistory_LoadMissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "absent"))
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
	if len(h.Entries()) != 0 {
		t.Error("expected empty history")
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistory("")
	h.Add("x")
	if err := h.Save(); err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}
