//go:build linux

package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/platform"
)

// stateRemove is the _NET_WM_STATE action that clears a state atom.
const stateRemove = 0

// Backend implements platform.WindowSource and platform.WindowManager on
// top of an xgbutil connection.
type Backend struct {
	xu *xgbutil.XUtil
}

var (
	_ platform.WindowSource  = (*Backend)(nil)
	_ platform.WindowManager = (*Backend)(nil)
)

// Connect opens a connection to the display named by $DISPLAY.
func Connect() (*Backend, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &Backend{xu: xu}, nil
}

// Close disconnects from the X server.
func (b *Backend) Close() error {
	if b != nil && b.xu != nil {
		b.xu.Conn().Close()
	}
	return nil
}

// Enumerate returns the window manager's _NET_CLIENT_LIST in mapping order.
func (b *Backend) Enumerate() ([]model.Handle, error) {
	clients, err := ewmh.ClientListGet(b.xu)
	if err != nil {
		return nil, &platform.SourceError{Op: "enumerate", Err: err}
	}
	handles := make([]model.Handle, len(clients))
	for i, win := range clients {
		handles[i] = model.Handle(win)
	}
	return handles, nil
}

// TitleOf prefers the UTF-8 _NET_WM_NAME and falls back to ICCCM WM_NAME.
func (b *Backend) TitleOf(h model.Handle) (string, error) {
	win := xproto.Window(h)
	title, err := ewmh.WmNameGet(b.xu, win)
	if err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title, nil
		}
	}

	title, err2 := icccm.WmNameGet(b.xu, win)
	if err2 == nil {
		return strings.TrimSpace(title), nil
	}
	if err != nil {
		return "", &platform.SourceError{Op: "title", Handle: h, Err: err2}
	}
	// _NET_WM_NAME was set but empty and WM_NAME is missing: untitled.
	return "", nil
}

// IsVisible reports whether the window is mapped and not hidden (minimized
// or on another workspace, as far as the window manager reports it).
func (b *Backend) IsVisible(h model.Handle) (bool, error) {
	win := xproto.Window(h)
	attrs, err := xproto.GetWindowAttributes(b.xu.Conn(), win).Reply()
	if err != nil {
		return false, &platform.SourceError{Op: "visible", Handle: h, Err: err}
	}
	if attrs.MapState != xproto.MapStateViewable {
		return false, nil
	}
	states, err := ewmh.WmStateGet(b.xu, win)
	if err != nil {
		// No _NET_WM_STATE property means no hidden state either.
		return true, nil
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return false, nil
		}
	}
	return true, nil
}

// BringToFront asks the window manager to activate the window.
func (b *Backend) BringToFront(h model.Handle) error {
	if err := ewmh.ActiveWindowReq(b.xu, xproto.Window(h)); err != nil {
		return &platform.SourceError{Op: "front", Handle: h, Err: err}
	}
	return nil
}

// Show maps the window and clears _NET_WM_STATE_HIDDEN.
func (b *Backend) Show(h model.Handle) error {
	win := xproto.Window(h)
	if err := xproto.MapWindowChecked(b.xu.Conn(), win).Check(); err != nil {
		return &platform.SourceError{Op: "show", Handle: h, Err: err}
	}
	if err := ewmh.WmStateReq(b.xu, win, stateRemove, "_NET_WM_STATE_HIDDEN"); err != nil {
		return &platform.SourceError{Op: "show", Handle: h, Err: err}
	}
	return nil
}
