package model

import (
	"testing"
	"time"
)

func snap(seq uint64, windows ...Window) Snapshot {
	return Snapshot{Seq: seq, TakenAt: time.Unix(1707500000, 0), Windows: windows}
}

func TestDiffSnapshots_NoChanges(t *testing.T) {
	s := snap(1, Window{Handle: 1, Title: "Editor", Visible: true})
	changes := DiffSnapshots(s, s)
	if len(changes) != 0 {
		t.Errorf("expected no changes, got %d", len(changes))
	}
}

func TestDiffSnapshots_Added(t *testing.T) {
	prev := snap(1, Window{Handle: 1, Title: "Editor"})
	curr := snap(2, Window{Handle: 1, Title: "Editor"}, Window{Handle: 2, Title: "Terminal"})
	changes := DiffSnapshots(prev, curr)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Type != ChangeAdded {
		t.Errorf("expected added, got %s", changes[0].Type)
	}
	if changes[0].Window == nil || changes[0].Window.Title != "Terminal" {
		t.Errorf("expected added window Terminal, got %+v", changes[0].Window)
	}
	if changes[0].Seq != 2 {
		t.Errorf("expected seq 2, got %d", changes[0].Seq)
	}
}

func TestDiffSnapshots_Removed(t *testing.T) {
	prev := snap(1, Window{Handle: 1, Title: "Editor"}, Window{Handle: 2, Title: "Loading..."})
	curr := snap(2, Window{Handle: 1, Title: "Editor"})
	changes := DiffSnapshots(prev, curr)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Type != ChangeRemoved {
		t.Errorf("expected removed, got %s", changes[0].Type)
	}
	if changes[0].Handle != 2 || changes[0].Title != "Loading..." {
		t.Errorf("unexpected removed change: %+v", changes[0])
	}
}

func TestDiffSnapshots_Changed(t *testing.T) {
	prev := snap(1, Window{Handle: 7, Title: "a.txt - Notepad", Visible: true})
	curr := snap(2, Window{Handle: 7, Title: "b.txt - Notepad", Visible: false})
	changes := DiffSnapshots(prev, curr)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	c := changes[0]
	if c.Type != ChangeChanged {
		t.Fatalf("expected changed, got %s", c.Type)
	}
	if got := c.Changes["title"]; got != [2]string{"a.txt - Notepad", "b.txt - Notepad"} {
		t.Errorf("title diff: got %v", got)
	}
	if got := c.Changes["visible"]; got != [2]string{"true", "false"} {
		t.Errorf("visible diff: got %v", got)
	}
}

func TestDiffSnapshots_FromEmpty(t *testing.T) {
	curr := snap(1, Window{Handle: 1}, Window{Handle: 2}, Window{Handle: 3})
	changes := DiffSnapshots(Snapshot{}, curr)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(changes))
	}
	for i, c := range changes {
		if c.Type != ChangeAdded {
			t.Errorf("change %d: expected added, got %s", i, c.Type)
		}
		if c.Handle != Handle(i+1) {
			t.Errorf("change %d: expected handle %d, got %d", i, i+1, c.Handle)
		}
	}
}
