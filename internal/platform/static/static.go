// Package static provides an in-memory window backend. It drives tests and
// the --fixture mode, where the window list comes from a YAML file instead
// of the OS.
package static

import (
	"fmt"
	"os"
	"sync"

	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/platform"
	"gopkg.in/yaml.v3"
)

// Source serves a fixed, replaceable window list.
type Source struct {
	mu        sync.Mutex
	windows   []model.Window
	err       error
	enumerate int
}

var (
	_ platform.WindowSource  = (*Source)(nil)
	_ platform.WindowManager = (*Source)(nil)
)

// New creates a source serving windows in the given order.
func New(windows ...model.Window) *Source {
	s := &Source{}
	s.Set(windows...)
	return s
}

// Load reads a YAML list of windows (title, handle, visible) from path.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var windows []model.Window
	if err := yaml.Unmarshal(data, &windows); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	return New(windows...), nil
}

// Set replaces the window list.
func (s *Source) Set(windows ...model.Window) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows = append([]model.Window(nil), windows...)
}

// Fail makes Enumerate return err until called again with nil.
func (s *Source) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Enumerations returns how many times Enumerate has been called.
func (s *Source) Enumerations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enumerate
}

func (s *Source) Enumerate() ([]model.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enumerate++
	if s.err != nil {
		return nil, &platform.SourceError{Op: "enumerate", Err: s.err}
	}
	handles := make([]model.Handle, len(s.windows))
	for i, w := range s.windows {
		handles[i] = w.Handle
	}
	return handles, nil
}

func (s *Source) lookup(op string, h model.Handle) (*model.Window, error) {
	for i := range s.windows {
		if s.windows[i].Handle == h {
			return &s.windows[i], nil
		}
	}
	return nil, &platform.SourceError{Op: op, Handle: h, Err: platform.ErrNoWindow}
}

func (s *Source) TitleOf(h model.Handle) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.lookup("title", h)
	if err != nil {
		return "", err
	}
	return w.Title, nil
}

func (s *Source) IsVisible(h model.Handle) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.lookup("visible", h)
	if err != nil {
		return false, err
	}
	return w.Visible, nil
}

// BringToFront moves the window to the front of the list.
func (s *Source) BringToFront(h model.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.lookup("front", h)
	if err != nil {
		return err
	}
	front := *w
	rest := make([]model.Window, 0, len(s.windows))
	rest = append(rest, front)
	for _, other := range s.windows {
		if other.Handle != h {
			rest = append(rest, other)
		}
	}
	s.windows = rest
	return nil
}

// Show marks the window visible.
func (s *Source) Show(h model.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.lookup("show", h)
	if err != nil {
		return err
	}
	w.Visible = true
	return nil
}

// Provider wraps s as a platform.Provider.
func (s *Source) Provider() *platform.Provider {
	return &platform.Provider{Source: s, Manager: s}
}
