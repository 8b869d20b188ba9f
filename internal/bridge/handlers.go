package bridge

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tidwall/gjson"
)

// ArgKind is the JSON type an entry point expects at one argument position.
type ArgKind int

const (
	// ArgString expects a JSON string.
	ArgString ArgKind = iota
	// ArgNumber expects a JSON number.
	ArgNumber
	// ArgInt expects a JSON number with no fractional part.
	ArgInt
)

// String returns the kind name.
func (k ArgKind) String() string {
	switch k {
	case ArgString:
		return "string"
	case ArgNumber:
		return "number"
	case ArgInt:
		return "int"
	default:
		return "unknown"
	}
}

func (k ArgKind) accepts(r gjson.Result) bool {
	switch k {
	case ArgString:
		return r.Type == gjson.String
	case ArgNumber:
		return r.Type == gjson.Number
	case ArgInt:
		return r.Type == gjson.Number && r.Num == math.Trunc(r.Num)
	default:
		return false
	}
}

// Args are the checked arguments of one call.
type Args []gjson.Result

// String returns argument i as a string.
func (a Args) String(i int) string { return a[i].String() }

// Float returns argument i as a float64.
func (a Args) Float(i int) float64 { return a[i].Float() }

// Int returns argument i as an int.
func (a Args) Int(i int) int { return int(a[i].Int()) }

// HandlerFunc handles one engine call. Args have already been checked
// against the entry point's parameter kinds.
type HandlerFunc func(args Args) error

type entryPoint struct {
	params []ArgKind
	fn     HandlerFunc
}

// HandlerTable maps engine→UI entry point names to handlers. It is filled
// once at boot and sealed before the engine starts; after that it only
// dispatches.
type HandlerTable struct {
	mu      sync.RWMutex
	entries map[string]entryPoint
	sealed  bool
}

// NewHandlerTable creates an empty, unsealed table.
func NewHandlerTable() *HandlerTable {
	return &HandlerTable{entries: make(map[string]entryPoint)}
}

// Install registers fn under name.
func (t *HandlerTable) Install(name string, params []ArgKind, fn HandlerFunc) error {
	if fn == nil {
		return fmt.Errorf("install %s: nil handler", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sealed {
		return fmt.Errorf("install %s: %w", name, ErrSealed)
	}
	if _, ok := t.entries[name]; ok {
		return fmt.Errorf("install %s: %w", name, ErrDuplicateEntryPoint)
	}
	t.entries[name] = entryPoint{params: params, fn: fn}
	return nil
}

// Seal freezes the table.
func (t *HandlerTable) Seal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sealed = true
}

// Sealed reports whether Seal has been called.
func (t *HandlerTable) Sealed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sealed
}

// Names returns the installed entry points, sorted.
func (t *HandlerTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch calls the handler for name. Unknown names and mismatched
// arguments are reported as a *CallError wrapping ErrUnknownEntryPoint or
// ErrBadArguments; the handler is not called.
func (t *HandlerTable) Dispatch(name string, args []gjson.Result) error {
	t.mu.RLock()
	ep, ok := t.entries[name]
	t.mu.RUnlock()

	if !ok {
		return callError(name, ErrUnknownEntryPoint)
	}
	if len(args) != len(ep.params) {
		return callError(name, fmt.Errorf("%w: want %d arguments, got %d", ErrBadArguments, len(ep.params), len(args)))
	}
	for i, kind := range ep.params {
		if !kind.accepts(args[i]) {
			return callError(name, fmt.Errorf("%w: argument %d: want %s, got %s", ErrBadArguments, i, kind, args[i].Type))
		}
	}
	return callError(name, ep.fn(Args(args)))
}

// DispatchJSON parses rawArgs as a JSON array and dispatches it.
func (t *HandlerTable) DispatchJSON(name string, rawArgs []byte) error {
	if len(rawArgs) == 0 {
		return t.Dispatch(name, nil)
	}
	if !gjson.ValidBytes(rawArgs) {
		return callError(name, fmt.Errorf("%w: arguments are not valid JSON", ErrBadArguments))
	}
	parsed := gjson.ParseBytes(rawArgs)
	if !parsed.IsArray() {
		return callError(name, fmt.Errorf("%w: arguments must be an array", ErrBadArguments))
	}
	return t.Dispatch(name, parsed.Array())
}
