package platform

import "testing"

func TestNewProvider_UnsupportedPlatform(t *testing.T) {
	// Temporarily clear the provider func to simulate unsupported platform
	orig := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = orig }()

	_, err := NewProvider()
	if err == nil {
		t.Fatal("expected error on unsupported platform")
	}
	if err != ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}

func TestNewProvider_UsesRegisteredFunc(t *testing.T) {
	orig := NewProviderFunc
	defer func() { NewProviderFunc = orig }()

	closed := false
	NewProviderFunc = func() (*Provider, error) {
		return &Provider{Close: func() error { closed = true; return nil }}, nil
	}
	p, err := NewProvider()
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if !closed {
		t.Error("Shutdown should call Close")
	}
}

func TestProvider_ShutdownNil(t *testing.T) {
	var p *Provider
	if err := p.Shutdown(); err != nil {
		t.Errorf("nil provider shutdown: %v", err)
	}
}
