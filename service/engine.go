package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"loan-workout/domain"
)

// Pass describes one completed recalculation pass.
type Pass struct {
	Full       bool  // every metric was evaluated (a gate just opened)
	Inputs     []Key // inputs that changed in the batch
	Recomputed []Key // metrics evaluated, in order
	Changed    []Key // metrics whose value moved
}

type EngineOption func(e *Engine)

func WithTracer(t Tracer) EngineOption {
	return func(e *Engine) { e.tracer = t }
}

// WithLegacyArrearsFallthrough makes total arrears ignore the extra month of
// interest owed with a down payment, matching figures produced before the
// down payment month was charged.
func WithLegacyArrearsFallthrough(on bool) EngineOption {
	return func(e *Engine) { e.state.legacyArrears = on }
}

// WithPassObserver is called after every pass. Edits made from inside the
// callback are queued behind the current pass.
func WithPassObserver(fn func(Pass)) EngineOption {
	return func(e *Engine) { e.observers = append(e.observers, fn) }
}

// Engine keeps DerivedMetrics consistent with the loan snapshot, the
// resolution request and the operator's inputs. Nothing is computed until a
// snapshot has been loaded and an option hydrated. After that, each batch of
// input changes triggers one pass that recomputes exactly the metrics
// downstream of the changed inputs, in dependency order.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	graph     *graph
	state     state
	tracer    Tracer
	observers []func(Pass)

	snapshotLoaded bool
	optionHydrated bool

	running bool
	queued  []func()
}

func NewEngine(opts ...EngineOption) (*Engine, error) {
	g, err := newGraph(inputKeys(), metricNodes())
	if err != nil {
		return nil, fmt.Errorf("failed to build metric graph: %w", err)
	}
	e := &Engine{graph: g, tracer: NopTracer{}}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Ready reports whether both gates are open.
func (e *Engine) Ready() bool {
	return e.snapshotLoaded && e.optionHydrated
}

// LoadSnapshot replaces the externally owned loan and request records.
func (e *Engine) LoadSnapshot(loan domain.LoanSnapshot, request domain.ResolutionRequest) {
	e.schedule(func() {
		e.mutate(func(s *state) {
			s.loan = loan
			s.request = request
		}, func() { e.snapshotLoaded = true })
	})
}

// HydrateOption replaces the editable inputs wholesale, typically when the
// operator switches to another option.
func (e *Engine) HydrateOption(inputs domain.EditableInputs) {
	e.schedule(func() {
		e.mutate(func(s *state) { s.inputs = inputs }, func() { e.optionHydrated = true })
	})
}

// Edit applies one batch of operator changes.
func (e *Engine) Edit(fn func(in *domain.EditableInputs)) {
	e.schedule(func() {
		e.mutate(func(s *state) { fn(&s.inputs) }, nil)
	})
}

func (e *Engine) Metrics() domain.DerivedMetrics {
	return e.state.metrics
}

func (e *Engine) Inputs() domain.EditableInputs {
	return e.state.inputs
}

func (e *Engine) Snapshot() (domain.LoanSnapshot, domain.ResolutionRequest) {
	return e.state.loan, e.state.request
}

// Order lists the derived metrics in the order a pass evaluates them.
func (e *Engine) Order() []Key {
	return e.graph.keys()
}

// schedule runs work now, or after the in-flight pass when called from
// inside one.
func (e *Engine) schedule(work func()) {
	e.queued = append(e.queued, work)
	if e.running {
		return
	}
	e.running = true
	defer func() { e.running = false }()
	for len(e.queued) > 0 {
		next := e.queued[0]
		e.queued = e.queued[1:]
		next()
	}
}

func (e *Engine) mutate(change func(s *state), openGate func()) {
	wasReady := e.Ready()
	before := readInputs(&e.state)
	change(&e.state)
	if openGate != nil {
		openGate()
	}
	if !e.Ready() {
		return
	}
	changed := changedInputs(before, readInputs(&e.state))
	if wasReady && len(changed) == 0 {
		return
	}
	e.run(changed, !wasReady)
}

func (e *Engine) run(inputs []Key, full bool) {
	dirty := make(map[Key]bool, len(inputs))
	for _, k := range inputs {
		dirty[k] = true
	}
	pass := Pass{Full: full, Inputs: inputs}
	e.graph.propagate(&e.state, dirty, full, func(n node, changed bool) {
		pass.Recomputed = append(pass.Recomputed, n.key)
		if changed {
			pass.Changed = append(pass.Changed, n.key)
		}
		e.trace(n, changed)
	})
	e.notify(pass)
}

func (e *Engine) notify(pass Pass) {
	for _, observe := range e.observers {
		observe(pass)
	}
}

func (e *Engine) trace(n node, changed bool) {
	fields := logrus.Fields{"value": n.read(&e.state), "changed": changed}
	for _, dep := range n.deps {
		fields[string(dep)] = e.valueOf(dep)
	}
	e.tracer.Trace(n.key, fields)
}

func (e *Engine) valueOf(k Key) any {
	if read, ok := inputReaders[k]; ok {
		return read(&e.state)
	}
	if i, ok := e.graph.index[k]; ok {
		return e.graph.order[i].read(&e.state)
	}
	return nil
}
