//go:build windows

package win32

import (
	"fmt"

	"github.com/mj1618/winwatch/internal/platform"
)

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		if err := user32.Load(); err != nil {
			return nil, fmt.Errorf("load user32.dll: %w", err)
		}
		b := Backend{}
		return &platform.Provider{Source: b, Manager: b}, nil
	}
}
