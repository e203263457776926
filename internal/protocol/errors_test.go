package protocol

import (
	"strings"
	"testing"
)

func TestProtocolErrorIncludesField(t *testing.T) {
	err := &ProtocolError{Reason: "bad value", Field: "origin[0]", Client: 3}
	if !strings.Contains(err.Error(), "origin[0]") || !strings.Contains(err.Error(), "3") {
		t.Fatalf("got %q", err.Error())
	}
}

func TestProtocolErrorOmitsFieldWhenEmpty(t *testing.T) {
	err := &ProtocolError{Reason: "bad opcode", Client: -1}
	if strings.Contains(err.Error(), "field") {
		t.Fatalf("got %q, expected no field segment", err.Error())
	}
}

func TestErrorDropAndFatalMessages(t *testing.T) {
	d := &ErrorDrop{Reason: "reliable overflow", Client: 2}
	if !strings.Contains(d.Error(), "drop client 2") {
		t.Fatalf("got %q", d.Error())
	}
	f := &ErrorFatal{Reason: "listener died"}
	if !strings.Contains(f.Error(), "fatal") {
		t.Fatalf("got %q", f.Error())
	}
}
