package model

import "time"

// Snapshot is the ordered window list produced by one refresh tick.
// The Windows slice is shared between readers and must not be modified.
type Snapshot struct {
	Seq     uint64    `yaml:"seq"      json:"seq"`
	TakenAt time.Time `yaml:"taken_at" json:"taken_at"`
	Windows []Window  `yaml:"windows"  json:"windows"`
}

// Empty reports whether no refresh has been published yet or the last one
// found no windows.
func (s Snapshot) Empty() bool {
	return len(s.Windows) == 0
}

// Lookup returns the window with the given handle.
func (s Snapshot) Lookup(h Handle) (Window, bool) {
	for _, w := range s.Windows {
		if w.Handle == h {
			return w, true
		}
	}
	return Window{}, false
}
