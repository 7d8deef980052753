package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kastheco/layerstack/app"
	"github.com/kastheco/layerstack/layer"
)

// ErrExpectation marks a step whose expectations were not met.
var ErrExpectation = errors.New("expectation not met")

// errEscape is what fail_escape layers return from OnEscape.
var errEscape = errors.New("escape handler failed")

// StepResult records what one step did.
type StepResult struct {
	Index  int
	Action string
	// Closed and Err are the escape outcome; both are zero for other steps.
	Closed bool
	Err    error
	// Fired lists the callbacks that ran during the step, in order.
	Fired []string
	// Top is the name of the top layer after the step; "" when empty.
	Top   string
	Count int
}

// Report is the outcome of a run.
type Report struct {
	Name  string
	Steps []StepResult
	// Final is the stack after the last executed step.
	Final []layer.Layer
	// Names maps layer ids to scenario names.
	Names map[string]string
}

// instance is the runtime state of one declared layer.
type instance struct {
	spec  LayerSpec
	reg   *layer.Registration
	veto  atomic.Bool
	swaps int
}

type runner struct {
	stack     *layer.Stack
	sender    *app.DirectSender
	instances map[string]*instance
	names     map[string]string

	mu    sync.Mutex
	fired []string
}

// Run executes sc against stack and stops at the first unmet expectation,
// returning the partial report alongside an error wrapping ErrExpectation.
// Escape failures are recorded in the step result and do not stop the run.
func Run(ctx context.Context, sc *Scenario, stack *layer.Stack) (*Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	r := &runner{
		stack:     stack,
		sender:    app.NewDirectSender(app.NewDispatcher(ctx, stack)),
		instances: make(map[string]*instance, len(sc.Layers)),
		names:     make(map[string]string),
	}
	for _, spec := range sc.Layers {
		inst := &instance{spec: spec}
		if spec.Veto != nil {
			inst.veto.Store(*spec.Veto)
		}
		r.instances[spec.Name] = inst
	}

	report := &Report{Name: sc.Name, Names: r.names}
	defer func() { report.Final = stack.Layers() }()

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := r.step(step)
		res.Index = i + 1
		res.Action = step.Action()
		res.Top, res.Count = r.top()
		report.Steps = append(report.Steps, res)
		if err != nil {
			return report, fmt.Errorf("step %d (%s): %w", res.Index, res.Action, err)
		}
		if err := check(step, res); err != nil {
			return report, fmt.Errorf("step %d (%s): %w", res.Index, res.Action, err)
		}
	}
	return report, nil
}

func (r *runner) step(s Step) (StepResult, error) {
	r.mu.Lock()
	r.fired = nil
	r.mu.Unlock()

	var res StepResult
	switch {
	case s.Open != "":
		if err := r.open(r.instances[s.Open]); err != nil {
			return res, err
		}
	case s.Close != "":
		if inst := r.instances[s.Close]; inst.reg != nil {
			inst.reg.Close()
		}
	case s.Escape:
		r.sender.Send(tea.KeyMsg{Type: tea.KeyEsc})
		last, _ := r.sender.Last()
		res.Closed, res.Err = last.Closed, last.Err
	case s.Swap != "":
		inst := r.instances[s.Swap]
		if inst.reg == nil || !inst.reg.Active() {
			return res, fmt.Errorf("layer %q is not open", s.Swap)
		}
		inst.swaps++
		inst.reg.SetOnEscape(r.escapeFunc(inst, fmt.Sprintf("%s#%d", inst.spec.Name, inst.swaps)))
	case s.Allow != "":
		r.instances[s.Allow].veto.Store(false)
	case s.Clear:
		r.stack.Clear()
	}

	r.mu.Lock()
	res.Fired = r.fired
	r.mu.Unlock()
	return res, nil
}

func (r *runner) open(inst *instance) error {
	if inst.reg != nil && inst.reg.Active() {
		return fmt.Errorf("layer %q is already open", inst.spec.Name)
	}
	spec := inst.spec
	base := layer.Base{
		Priority:          spec.Priority,
		AriaLabel:         spec.AriaLabel,
		FocusTrap:         layer.FocusTrap(spec.FocusTrap),
		CapturesFocus:     spec.CapturesFocus,
		BlocksLowerLayers: spec.BlocksLowerLayers,
	}
	if base.AriaLabel == "" {
		base.AriaLabel = spec.Name
	}

	var cfg layer.Config
	if layer.Kind(spec.Type) == layer.KindOverlay {
		cfg = &layer.OverlayConfig{Base: base, AllowClickOutside: spec.AllowClickOutside}
	} else {
		m := &layer.ModalConfig{Base: base, IsDirty: spec.IsDirty}
		if spec.Veto != nil {
			m.OnBeforeClose = func(context.Context) (bool, error) {
				r.record(spec.Name + ":before")
				return !inst.veto.Load(), nil
			}
		}
		cfg = m
	}

	inst.swaps = 0
	inst.reg = r.stack.Open(cfg)
	r.names[inst.reg.ID()] = spec.Name
	inst.reg.SetOnEscape(r.escapeFunc(inst, spec.Name))
	return nil
}

func (r *runner) escapeFunc(inst *instance, label string) layer.EscapeFunc {
	reg := inst.reg
	return func(context.Context) error {
		r.record(label)
		if inst.spec.FailEscape {
			return fmt.Errorf("%s: %w", label, errEscape)
		}
		if inst.spec.UnregisterOnEscape {
			reg.Close()
		}
		return nil
	}
}

func (r *runner) record(name string) {
	r.mu.Lock()
	r.fired = append(r.fired, name)
	r.mu.Unlock()
}

func (r *runner) top() (string, int) {
	top, ok := r.stack.Top()
	if !ok {
		return "", 0
	}
	name, known := r.names[top.ID]
	if !known {
		name = top.ID
	}
	return name, r.stack.Count()
}

func check(s Step, res StepResult) error {
	if s.ExpectClosed != nil && *s.ExpectClosed != res.Closed {
		return fmt.Errorf("%w: closed is %t, want %t", ErrExpectation, res.Closed, *s.ExpectClosed)
	}
	if s.ExpectTop != nil && *s.ExpectTop != res.Top {
		return fmt.Errorf("%w: top is %q, want %q", ErrExpectation, res.Top, *s.ExpectTop)
	}
	if s.ExpectCount != nil && *s.ExpectCount != res.Count {
		return fmt.Errorf("%w: count is %d, want %d", ErrExpectation, res.Count, *s.ExpectCount)
	}
	return nil
}
