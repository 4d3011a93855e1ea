package repl

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
)

const defaultHistorySize = 500

// History is a bounded list of entered lines, optionally backed by a file.
type History struct {
	entries []string
	maxSize int
	file    string
}

// NewHistory creates a History stored at file. An empty file keeps history
// in memory only.
func NewHistory(file string) *History {
	return &History{maxSize: defaultHistorySize, file: file}
}

// DefaultHistoryFile returns ~/.kernel-cli_history.
func DefaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kernel-cli_history")
}

// Add records a line, dropping the oldest past the size limit.
func (h *History) Add(line string) {
	h.entries = append(h.entries, line)
	if over := len(h.entries) - h.maxSize; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Get returns the entry at index, where 0 is the most recent.
func (h *History) Get(index int) string {
	if index < 0 || index >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-index]
}

// Entries returns the entries oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Load appends the entries stored in the history file.
func (h *History) Load() error {
	if h.file == "" {
		return nil
	}
	f, err := os.Open(h.file)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			h.Add(line)
		}
	}
	return sc.Err()
}

// Save writes the entries to the history file.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.file), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(h.file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, e := range h.entries {
		w.WriteString(e)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
