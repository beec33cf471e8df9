//go:build windows

// Package win32 enumerates top-level windows through user32.dll. Importing
// it registers the backend with platform.NewProviderFunc.
package win32
