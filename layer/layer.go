// Package layer arbitrates which modal or overlay surface owns the Escape key.
//
// Surfaces register a Config when they open and unregister when they close.
// The Stack keeps registrations ordered by priority and, on each Escape,
// asks only the highest-priority layer to close.
package layer

import "context"

// Kind discriminates the two layer variants.
type Kind string

const (
	// KindModal blocks everything below it and traps focus.
	KindModal Kind = "modal"
	// KindOverlay is a lighter surface (menu, popover) that may coexist with
	// lower layers.
	KindOverlay Kind = "overlay"
)

// FocusTrap describes how strongly a layer holds keyboard focus. The stack
// stores it for consumers and never interprets it.
type FocusTrap string

const (
	FocusTrapStrict  FocusTrap = "strict"
	FocusTrapLenient FocusTrap = "lenient"
	FocusTrapNone    FocusTrap = "none"
)

// EscapeFunc closes a layer. It may block; ctx is the context handed to
// Stack.CloseTop.
type EscapeFunc func(ctx context.Context) error

// BeforeCloseFunc can veto a close by returning false.
type BeforeCloseFunc func(ctx context.Context) (bool, error)

// Base holds the attributes shared by every layer kind.
type Base struct {
	// Priority orders layers; higher is closer to the top. Negative values
	// are allowed.
	Priority int
	// BlocksLowerLayers is informational for the consuming UI.
	BlocksLowerLayers bool
	// CapturesFocus reports whether the layer wants keyboard focus.
	CapturesFocus bool
	FocusTrap     FocusTrap
	// OnEscape runs when the layer is the top layer and Escape is pressed.
	// A nil OnEscape closes nothing but still counts as a successful close.
	OnEscape EscapeFunc
	// AriaLabel is used for introspection only.
	AriaLabel string
}

// ModalConfig registers a modal layer.
type ModalConfig struct {
	Base
	// IsDirty marks unsaved state. The stack only carries it so that
	// OnBeforeClose implementations and debug tooling can read it.
	IsDirty bool
	// OnBeforeClose, when set, is consulted before OnEscape.
	OnBeforeClose BeforeCloseFunc
	// ParentModalID is an informational back-reference to another layer.
	ParentModalID string
}

// OverlayConfig registers an overlay layer. Overlays are never asked for
// permission to close.
type OverlayConfig struct {
	Base
	AllowClickOutside bool
}

// Config is implemented by *ModalConfig and *OverlayConfig only.
type Config interface {
	Kind() Kind
	common() *Base
	clone() Config
}

func (c *ModalConfig) Kind() Kind { return KindModal }
func (c *ModalConfig) common() *Base { return &c.Base }
func (c *ModalConfig) clone() Config { cp := *c; return &cp }
func (c *OverlayConfig) Kind() Kind { return KindOverlay }
func (c *OverlayConfig) common() *Base { return &c.Base }
func (c *OverlayConfig) clone() Config { cp := *c; return &cp }

// Layer is a registered Config together with the id the stack assigned.
// Layers returned by a Stack are copies; changing them does not affect the
// stack.
type Layer struct {
	ID     string
	Config Config
}

func (l Layer) Kind() Kind {
	return l.Config.Kind()
}

func (l Layer) Priority() int {
	return l.Config.common().Priority
}

func (l Layer) AriaLabel() string {
	return l.Config.common().AriaLabel
}

// Base returns a copy of the attributes shared by all kinds.
func (l Layer) Base() Base {
	return *l.Config.common()
}

// Modal returns the modal attributes when the layer is a modal.
func (l Layer) Modal() (*ModalConfig, bool) {
	m, ok := l.Config.(*ModalConfig)
	return m, ok
}

// Overlay returns the overlay attributes when the layer is an overlay.
func (l Layer) Overlay() (*OverlayConfig, bool) {
	o, ok := l.Config.(*OverlayConfig)
	return o, ok
}
