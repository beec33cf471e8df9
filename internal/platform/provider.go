package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles the platform backends for the current OS.
type Provider struct {
	Source  WindowSource
	Manager WindowManager

	// Close releases the backend's OS resources, if any.
	Close func() error
}

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("winwatch is not supported on %s/%s; supported: linux (X11), windows", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/x11 and internal/platform/win32.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}

// Shutdown calls p.Close when set.
func (p *Provider) Shutdown() error {
	if p == nil || p.Close == nil {
		return nil
	}
	return p.Close()
}
