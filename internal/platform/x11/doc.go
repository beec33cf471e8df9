//go:build linux

// Package x11 reads top-level windows from an EWMH-compliant X11 window
// manager. Importing it registers the backend with platform.NewProviderFunc.
package x11
