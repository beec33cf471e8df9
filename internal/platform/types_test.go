package platform

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestSourceError_Is(t *testing.T) {
	err := error(&SourceError{Op: "enumerate", Err: io.ErrUnexpectedEOF})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Error("SourceError should match ErrSourceUnavailable")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("SourceError should match its cause")
	}
}

func TestSourceError_Message(t *testing.T) {
	err := &SourceError{Op: "title", Handle: 0x2a, Err: errors.New("bad window")}
	msg := err.Error()
	if !strings.Contains(msg, "title 0x2a") || !strings.Contains(msg, "bad window") {
		t.Errorf("unexpected message %q", msg)
	}
}
