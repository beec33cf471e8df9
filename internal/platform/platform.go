package platform

import "github.com/mj1618/winwatch/internal/model"

// WindowSource enumerates top-level windows and reads their attributes.
type WindowSource interface {
	// Enumerate lists the handles of currently existing top-level windows.
	// Order is whatever the OS reports and may change between calls.
	Enumerate() ([]model.Handle, error)

	TitleOf(h model.Handle) (string, error)
	IsVisible(h model.Handle) (bool, error)
}

// WindowManager performs imperative actions on a window. The registry never
// calls it; commands do, after selecting windows from a snapshot.
type WindowManager interface {
	BringToFront(h model.Handle) error
	Show(h model.Handle) error
}
