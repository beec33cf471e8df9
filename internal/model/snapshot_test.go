package model

import "testing"

func TestSnapshot_Empty(t *testing.T) {
	var s Snapshot
	if !s.Empty() {
		t.Error("zero snapshot should be empty")
	}
	s.Windows = []Window{{Handle: 1}}
	if s.Empty() {
		t.Error("snapshot with a window should not be empty")
	}
}

func TestSnapshot_Lookup(t *testing.T) {
	s := Snapshot{Windows: []Window{
		{Handle: 0x10, Title: "first"},
		{Handle: 0x20, Title: "second"},
	}}
	w, ok := s.Lookup(0x20)
	if !ok {
		t.Fatal("expected to find handle 0x20")
	}
	if w.Title != "second" {
		t.Errorf("got %q, want %q", w.Title, "second")
	}
	if _, ok := s.Lookup(0x30); ok {
		t.Error("lookup of unknown handle should fail")
	}
}
