package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Handle is the platform identity of a top-level window (an HWND on Windows,
// an X11 window ID on Linux). It is compared and looked up, never dereferenced.
type Handle uint64

// String renders the handle in hex, the way window tools usually show it.
func (h Handle) String() string {
	return fmt.Sprintf("0x%x", uint64(h))
}

// ParseHandle accepts decimal or 0x-prefixed hex.
func ParseHandle(s string) (Handle, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid window handle %q: %w", s, err)
	}
	return Handle(v), nil
}

func (h Handle) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Handle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Plain numbers are accepted too.
		var n uint64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid window handle %s", data)
		}
		*h = Handle(n)
		return nil
	}
	v, err := ParseHandle(s)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

func (h Handle) MarshalYAML() (interface{}, error) {
	return h.String(), nil
}

func (h *Handle) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseHandle(node.Value)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Window is one top-level window as captured by a single refresh. It is a
// value snapshot: a later refresh produces new Windows instead of mutating
// old ones.
type Window struct {
	Title   string `yaml:"title"   json:"title"`
	Handle  Handle `yaml:"handle"  json:"handle"`
	Visible bool   `yaml:"visible" json:"visible"`
}
