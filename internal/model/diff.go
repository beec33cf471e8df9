package model

import (
	"strconv"
	"time"
)

// ChangeType represents the kind of window change detected.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeChanged ChangeType = "changed"
)

// WindowChange represents a single change between two snapshots.
type WindowChange struct {
	Type    ChangeType           `yaml:"type"              json:"type"`
	TS      int64                `yaml:"ts"                json:"ts"`
	Seq     uint64               `yaml:"seq"               json:"seq"`
	Handle  Handle               `yaml:"handle"            json:"handle"`
	Window  *Window              `yaml:"window,omitempty"  json:"window,omitempty"`  // For added: the full window
	Title   string               `yaml:"title,omitempty"   json:"title,omitempty"`   // For removed: last known title
	Changes map[string][2]string `yaml:"changes,omitempty" json:"changes,omitempty"` // For changed: field diffs
}

// DiffSnapshots compares two snapshots and returns the changes. Windows are
// matched by handle. Added and changed entries follow curr's order, removed
// entries follow prev's.
func DiffSnapshots(prev, curr Snapshot) []WindowChange {
	prevMap := make(map[Handle]Window, len(prev.Windows))
	for _, w := range prev.Windows {
		prevMap[w.Handle] = w
	}
	currMap := make(map[Handle]Window, len(curr.Windows))
	for _, w := range curr.Windows {
		currMap[w.Handle] = w
	}

	var changes []WindowChange
	ts := curr.TakenAt.Unix()
	if curr.TakenAt.IsZero() {
		ts = time.Now().Unix()
	}

	for _, w := range curr.Windows {
		prevW, existed := prevMap[w.Handle]
		if !existed {
			wCopy := w
			changes = append(changes, WindowChange{
				Type:   ChangeAdded,
				TS:     ts,
				Seq:    curr.Seq,
				Handle: w.Handle,
				Window: &wCopy,
			})
			continue
		}
		if diffs := diffProperties(prevW, w); len(diffs) > 0 {
			changes = append(changes, WindowChange{
				Type:    ChangeChanged,
				TS:      ts,
				Seq:     curr.Seq,
				Handle:  w.Handle,
				Changes: diffs,
			})
		}
	}

	for _, w := range prev.Windows {
		if _, exists := currMap[w.Handle]; !exists {
			changes = append(changes, WindowChange{
				Type:   ChangeRemoved,
				TS:     ts,
				Seq:    curr.Seq,
				Handle: w.Handle,
				Title:  w.Title,
			})
		}
	}

	return changes
}

// diffProperties compares two windows and returns changed fields.
func diffProperties(prev, curr Window) map[string][2]string {
	diffs := make(map[string][2]string)
	if prev.Title != curr.Title {
		diffs["title"] = [2]string{prev.Title, curr.Title}
	}
	if prev.Visible != curr.Visible {
		diffs["visible"] = [2]string{
			strconv.FormatBool(prev.Visible),
			strconv.FormatBool(curr.Visible),
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	return diffs
}
