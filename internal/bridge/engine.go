package bridge

import (
	"encoding/json"
	"sync"
)

// Engine is the set of calls the UI makes into the engine. Calls are
// fire-and-forget; an error means the call could not be delivered.
type Engine interface {
	RequestSelect(entityID string) error
	SetProperty(entityID, componentID, key, raw string) error
	MoveSelected(dx, dy float64) error
	Save() error
	Resize() error
	OverrideAssetPath(path string) error
}

// Port forwards UI calls to an Engine. It enforces that the asset path
// override happens at most once and before the engine accepts any other
// call. Every call is offered to the Recorder.
type Port struct {
	mu         sync.Mutex
	engine     Engine
	recorder   Recorder
	called     bool
	overridden bool
}

// NewPort wraps engine. recorder may be nil.
func NewPort(engine Engine, recorder Recorder) *Port {
	return &Port{engine: engine, recorder: recorder}
}

// RequestSelect asks the engine to select entityID.
func (p *Port) RequestSelect(entityID string) error {
	return p.call(CallRequestSelectEntity, func() error { return p.engine.RequestSelect(entityID) }, entityID)
}

// SetProperty forwards a property commit. raw is the edited text.
func (p *Port) SetProperty(entityID, componentID, key, raw string) error {
	return p.call(CallSetComponentProperty, func() error {
		return p.engine.SetProperty(entityID, componentID, key, raw)
	}, entityID, componentID, key, raw)
}

// MoveSelected forwards an incremental move in viewport fractions.
func (p *Port) MoveSelected(dx, dy float64) error {
	return p.call(CallMoveSelected, func() error { return p.engine.MoveSelected(dx, dy) }, dx, dy)
}

// Save asks the engine to save the scene.
func (p *Port) Save() error {
	return p.call(CallSaveScene, p.engine.Save)
}

// Resize tells the engine the viewport changed.
func (p *Port) Resize() error {
	return p.call(CallResize, p.engine.Resize)
}

// OverrideAssetPath sets the engine's asset root. It must precede every call
// the engine has accepted and succeeds at most once. A failed attempt may be
// retried.
func (p *Port) OverrideAssetPath(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.called || p.overridden {
		return callError(CallOverrideAssetPath, ErrAssetOverrideLate)
	}

	p.record(CallOverrideAssetPath, path)
	if err := p.engine.OverrideAssetPath(path); err != nil {
		return callError(CallOverrideAssetPath, err)
	}
	p.overridden = true
	return nil
}

// call records and forwards one call. Only a delivered call closes the
// window for the asset path override.
func (p *Port) call(name string, fn func() error, args ...any) error {
	p.record(name, args...)
	err := fn()
	if err == nil {
		p.mu.Lock()
		p.called = true
		p.mu.Unlock()
	}
	return callError(name, err)
}

func (p *Port) record(name string, args ...any) {
	if p.recorder == nil {
		return
	}
	if args == nil {
		args = []any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		raw = []byte("[]")
	}
	p.recorder.Record(Outbound, name, raw)
}
