//go:build windows

package win32

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/platform"
	"golang.org/x/sys/windows"
)

const (
	swShow    = 5
	swRestore = 9
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumWindows          = user32.NewProc("EnumWindows")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
	procIsWindow             = user32.NewProc("IsWindow")
	procIsWindowVisible      = user32.NewProc("IsWindowVisible")
	procIsIconic             = user32.NewProc("IsIconic")
	procSetForegroundWindow  = user32.NewProc("SetForegroundWindow")
	procShowWindow           = user32.NewProc("ShowWindow")
)

// The runtime caps the number of callbacks a process may create, so the
// enumeration callback is built once and shared behind enumMu.
var (
	enumMu      sync.Mutex
	enumHandles []model.Handle
	enumProc    = windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		enumHandles = append(enumHandles, model.Handle(hwnd))
		return 1
	})
)

// Backend implements platform.WindowSource and platform.WindowManager.
type Backend struct{}

var (
	_ platform.WindowSource  = Backend{}
	_ platform.WindowManager = Backend{}
)

func hwnd(h model.Handle) uintptr { return uintptr(h) }

func (Backend) Enumerate() ([]model.Handle, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumHandles = nil
	r1, _, e1 := procEnumWindows.Call(enumProc, 0)
	if r1 == 0 {
		return nil, &platform.SourceError{Op: "enumerate", Err: e1}
	}
	handles := enumHandles
	enumHandles = nil
	return handles, nil
}

func (Backend) exists(op string, h model.Handle) error {
	if r1, _, _ := procIsWindow.Call(hwnd(h)); r1 == 0 {
		return &platform.SourceError{Op: op, Handle: h, Err: platform.ErrNoWindow}
	}
	return nil
}

func (b Backend) TitleOf(h model.Handle) (string, error) {
	if err := b.exists("title", h); err != nil {
		return "", err
	}
	n, _, _ := procGetWindowTextLengthW.Call(hwnd(h))
	if n == 0 {
		return "", nil
	}
	buf := make([]uint16, n+1)
	r1, _, e1 := procGetWindowTextW.Call(hwnd(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r1 == 0 && e1 != windows.ERROR_SUCCESS {
		return "", &platform.SourceError{Op: "title", Handle: h, Err: e1}
	}
	return windows.UTF16ToString(buf), nil
}

func (b Backend) IsVisible(h model.Handle) (bool, error) {
	if err := b.exists("visible", h); err != nil {
		return false, err
	}
	r1, _, _ := procIsWindowVisible.Call(hwnd(h))
	return r1 != 0, nil
}

// BringToFront restores a minimized window and makes it the foreground window.
func (b Backend) BringToFront(h model.Handle) error {
	if err := b.exists("front", h); err != nil {
		return err
	}
	if iconic, _, _ := procIsIconic.Call(hwnd(h)); iconic != 0 {
		procShowWindow.Call(hwnd(h), swRestore)
	}
	if r1, _, e1 := procSetForegroundWindow.Call(hwnd(h)); r1 == 0 {
		return &platform.SourceError{Op: "front", Handle: h, Err: fmt.Errorf("SetForegroundWindow refused: %v", e1)}
	}
	return nil
}

func (b Backend) Show(h model.Handle) error {
	if err := b.exists("show", h); err != nil {
		return err
	}
	// ShowWindow returns the previous visibility, not success.
	procShowWindow.Call(hwnd(h), swShow)
	return nil
}
