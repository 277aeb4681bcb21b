package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	type spec struct {
		in     string
		exp    Level
		expErr bool
	}
	specs := []spec{
		{"debug", Debug, false},
		{" INFO ", Info, false},
		{"warn", Warning, false},
		{"error", Error, false},
		{"chatty", Notice, true},
	}

	for index, s := range specs {
		level, err := ParseLevel(s.in)
		if s.expErr != (err != nil) {
			t.Fatalf("[spec %d] expected error to be %t; got %v", index, s.expErr, err)
		}
		if level != s.exp {
			t.Fatalf("[spec %d] expected level %s; got %s", index, s.exp, level)
		}
	}
}

func TestSinkHonorsLevel(t *testing.T) {
	defer SetSink(os.Stdout)
	defer SetLevel(GetLevel())

	var buf bytes.Buffer
	SetSink(&buf)
	SetLevel(Warning)

	logger := New("test")
	logger.Notice("hidden")
	logger.Warning("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected notice message to be filtered; got %q", out)
	}
	if !strings.Contains(out, "[test]") || !strings.Contains(out, "shown") {
		t.Fatalf("expected warning message with module name; got %q", out)
	}
}
