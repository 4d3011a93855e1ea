package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestRedact_PasswordHashValue(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.Info("user loaded", "stored", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA")

	out := buf.String()
	if strings.Contains(out, "c2FsdA") {
		t.Errorf("hash leaked: %s", out)
	}
	if !strings.Contains(out, `$argon2id$***`) {
		t.Errorf("hash not masked: %s", out)
	}
}

func TestRedact_SensitiveKeys(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.Info("login", "password", "hunter2", "user", "admin")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("password leaked: %s", out)
	}
	if !strings.Contains(out, `"user":"admin"`) {
		t.Errorf("user should not be redacted: %s", out)
	}
}

func TestRedact_Groups(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Output: &buf})
	Slog(l).WithGroup("req").Info("header", "authorization", "Basic YWRtaW46YWRtaW4=")
	if strings.Contains(buf.String(), "YWRtaW4") {
		t.Errorf("grouped credential leaked: %s", buf.String())
	}
}

func TestRedactString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"$argon2id$v=19$abc", "$argon2id$***"},
		{"Basic dXNlcjpwYXNz", "Basic ***"},
		{"Calculator", "Calculator"},
	}
	for _, tt := range tests {
		if got := RedactString(tt.in); got != tt.want {
			t.Errorf("RedactString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSensitive(t *testing.T) {
	if !IsSensitiveKey("Password_Hash") || IsSensitiveKey("deployment") {
		t.Error("IsSensitiveKey misclassified")
	}
	if !IsSensitiveValue("Basic abc") || IsSensitiveValue("plain") {
		t.Error("IsSensitiveValue misclassified")
	}
}
