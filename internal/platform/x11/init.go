//go:build linux

package x11

import "github.com/mj1618/winwatch/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		b, err := Connect()
		if err != nil {
			return nil, err
		}
		return &platform.Provider{Source: b, Manager: b, Close: b.Close}, nil
	}
}
