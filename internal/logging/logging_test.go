package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetTeeMirrorsOutput(t *testing.T) {
	var buf bytes.Buffer
	SetTee(&buf)
	defer SetTee(nil)

	Printf("hello %d", 42)

	if !strings.Contains(buf.String(), "hello 42") {
		t.Fatalf("got %q, expected it to contain the logged line", buf.String())
	}
}

func TestSetTeeNilClearsMirror(t *testing.T) {
	var buf bytes.Buffer
	SetTee(&buf)
	SetTee(nil)

	Printf("should not reach buf")

	if buf.Len() != 0 {
		t.Fatalf("expected buf untouched after clearing tee, got %q", buf.String())
	}
}
