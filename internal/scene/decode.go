package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

// ErrMalformedPayload is matched by every PayloadError.
var ErrMalformedPayload = errors.New("malformed payload")

// PayloadError reports a pushed JSON string that failed to parse or validate.
type PayloadError struct {
	// Kind names the payload: "entity" or "hierarchy".
	Kind string

	// Err is the underlying parse or validation error.
	Err error
}

// Error implements the error interface.
func (e *PayloadError) Error() string {
	return fmt.Sprintf("malformed %s payload: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *PayloadError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match PayloadError with ErrMalformedPayload.
func (e *PayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

// schemaSource constrains the structural fields of engine payloads. Unknown
// fields are allowed so the engine can add data without breaking the UI;
// property values are left open and handled by the value codec.
const schemaSource = `
#Component: {
	id:         string & !=""
	name:       string
	properties: {[string]: _}
	...
}

#Entity: {
	id:         string & !=""
	name:       string
	components: [...#Component]
	children?:  [...#Entity]
	...
}

#Node: {
	id:        string & !=""
	name:      string
	children?: [...#Node]
	...
}

#Hierarchy: [...#Node]
`

// validator compiles the payload schema once. cue.Context is not safe for
// concurrent use, so every validation holds mu.
type validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

var (
	sharedValidator     *validator
	sharedValidatorErr  error
	sharedValidatorOnce sync.Once
)

func getValidator() (*validator, error) {
	sharedValidatorOnce.Do(func() {
		ctx := cuecontext.New()
		schema := ctx.CompileString(schemaSource)
		if err := schema.Err(); err != nil {
			sharedValidatorErr = fmt.Errorf("compile payload schema: %w", err)
			return
		}
		sharedValidator = &validator{ctx: ctx, schema: schema}
	})
	return sharedValidator, sharedValidatorErr
}

func (v *validator) validate(definition string, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	expr, err := cuejson.Extract(definition, data)
	if err != nil {
		return err
	}
	doc := v.ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return err
	}

	def := v.schema.LookupPath(cue.ParsePath(definition))
	return def.Unify(doc).Validate(cue.Concrete(true))
}

// Validate checks a payload against the named schema definition
// ("#Entity" or "#Hierarchy") without decoding it.
func Validate(definition string, data []byte) error {
	v, err := getValidator()
	if err != nil {
		return err
	}
	return v.validate(definition, data)
}

// DecodeEntity validates and decodes a select-entity push.
func DecodeEntity(data []byte) (*Entity, error) {
	if err := Validate("#Entity", data); err != nil {
		return nil, &PayloadError{Kind: "entity", Err: err}
	}

	var e Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, &PayloadError{Kind: "entity", Err: err}
	}
	if err := checkComponentIDs(&e); err != nil {
		return nil, &PayloadError{Kind: "entity", Err: err}
	}
	return &e, nil
}

// DecodeHierarchy validates and decodes a set-hierarchy push.
func DecodeHierarchy(data []byte) (Hierarchy, error) {
	if err := Validate("#Hierarchy", data); err != nil {
		return nil, &PayloadError{Kind: "hierarchy", Err: err}
	}

	var h Hierarchy
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, &PayloadError{Kind: "hierarchy", Err: err}
	}
	return h, nil
}

// checkComponentIDs enforces unique component ids within each entity.
func checkComponentIDs(e *Entity) error {
	seen := make(map[string]struct{}, len(e.Components))
	for _, c := range e.Components {
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("entity %s: duplicate component id %q", e.ID, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	for i := range e.Children {
		if err := checkComponentIDs(&e.Children[i]); err != nil {
			return err
		}
	}
	return nil
}
