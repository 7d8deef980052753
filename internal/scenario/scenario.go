// Package scenario drives a layer stack through a scripted sequence of
// opens, closes and Escape presses, without a terminal.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/kastheco/layerstack/layer"
	"gopkg.in/yaml.v3"
)

// Scenario is a parsed scenario file.
type Scenario struct {
	Name   string      `yaml:"name"`
	Layers []LayerSpec `yaml:"layers"`
	Steps  []Step      `yaml:"steps"`
}

// LayerSpec declares a layer the steps can open by name.
type LayerSpec struct {
	Name              string `yaml:"name"`
	Type              string `yaml:"type"`
	Priority          int    `yaml:"priority"`
	AriaLabel         string `yaml:"aria_label"`
	FocusTrap         string `yaml:"focus_trap"`
	CapturesFocus     bool   `yaml:"captures_focus"`
	BlocksLowerLayers bool   `yaml:"blocks_lower_layers"`
	AllowClickOutside bool   `yaml:"allow_click_outside"`
	IsDirty           bool   `yaml:"is_dirty"`
	// Veto installs OnBeforeClose on a modal. true refuses every close
	// until an allow step flips it.
	Veto *bool `yaml:"veto"`
	// UnregisterOnEscape makes OnEscape remove the layer, which is what a
	// real surface does when it closes.
	UnregisterOnEscape bool `yaml:"unregister_on_escape"`
	FailEscape         bool `yaml:"fail_escape"`
}

// Step is one action plus optional expectations checked after it.
type Step struct {
	Open   string `yaml:"open,omitempty"`
	Close  string `yaml:"close,omitempty"`
	Escape bool   `yaml:"escape,omitempty"`
	Swap   string `yaml:"swap,omitempty"`
	Allow  string `yaml:"allow,omitempty"`
	Clear  bool   `yaml:"clear,omitempty"`

	ExpectClosed *bool `yaml:"expect_closed,omitempty"`
	// ExpectTop names the layer expected on top; "" expects an empty stack.
	ExpectTop   *string `yaml:"expect_top,omitempty"`
	ExpectCount *int    `yaml:"expect_count,omitempty"`
}

// Action describes the step's action, e.g. "open settings".
func (s Step) Action() string {
	switch {
	case s.Open != "":
		return "open " + s.Open
	case s.Close != "":
		return "close " + s.Close
	case s.Escape:
		return "escape"
	case s.Swap != "":
		return "swap " + s.Swap
	case s.Allow != "":
		return "allow " + s.Allow
	case s.Clear:
		return "clear"
	}
	return "noop"
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{s.Open != "", s.Close != "", s.Escape, s.Swap != "", s.Allow != "", s.Clear} {
		if set {
			n++
		}
	}
	return n
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks layer declarations and that every step has exactly one
// action referring to a declared layer.
func (sc *Scenario) Validate() error {
	var errs []error
	names := make(map[string]LayerSpec, len(sc.Layers))

	for i, l := range sc.Layers {
		if l.Name == "" {
			errs = append(errs, fmt.Errorf("layer %d: name is required", i+1))
			continue
		}
		if _, dup := names[l.Name]; dup {
			errs = append(errs, fmt.Errorf("layer %q: declared twice", l.Name))
		}
		names[l.Name] = l

		switch layer.Kind(l.Type) {
		case layer.KindModal:
		case layer.KindOverlay:
			if l.Veto != nil || l.IsDirty {
				errs = append(errs, fmt.Errorf("layer %q: overlays cannot veto or be dirty", l.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("layer %q: type must be modal or overlay, got %q", l.Name, l.Type))
		}

		switch layer.FocusTrap(l.FocusTrap) {
		case "", layer.FocusTrapStrict, layer.FocusTrapLenient, layer.FocusTrapNone:
		default:
			errs = append(errs, fmt.Errorf("layer %q: unknown focus_trap %q", l.Name, l.FocusTrap))
		}
	}

	for i, s := range sc.Steps {
		if n := s.actions(); n != 1 {
			errs = append(errs, fmt.Errorf("step %d: want exactly one action, got %d", i+1, n))
			continue
		}
		for _, ref := range []string{s.Open, s.Close, s.Swap, s.Allow} {
			if ref == "" {
				continue
			}
			if _, ok := names[ref]; !ok {
				errs = append(errs, fmt.Errorf("step %d: unknown layer %q", i+1, ref))
			}
		}
		if s.Allow != "" && names[s.Allow].Veto == nil {
			errs = append(errs, fmt.Errorf("step %d: layer %q has no veto to allow", i+1, s.Allow))
		}
		if s.ExpectClosed != nil && !s.Escape {
			errs = append(errs, fmt.Errorf("step %d: expect_closed only applies to escape", i+1))
		}
		if s.ExpectTop != nil && *s.ExpectTop != "" {
			if _, ok := names[*s.ExpectTop]; !ok {
				errs = append(errs, fmt.Errorf("step %d: expect_top names unknown layer %q", i+1, *s.ExpectTop))
			}
		}
	}

	return errors.Join(errs...)
}
