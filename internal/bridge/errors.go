package bridge

import (
	"errors"
	"fmt"
)

// Bridge errors.
var (
	// ErrUnknownEntryPoint is returned when the engine calls a name that has
	// no installed handler.
	ErrUnknownEntryPoint = errors.New("unknown entry point")

	// ErrBadArguments is returned when a call's arity or argument types do not
	// match the entry point.
	ErrBadArguments = errors.New("bad arguments")

	// ErrSealed is returned when a handler is installed after Seal.
	ErrSealed = errors.New("handler table sealed")

	// ErrDuplicateEntryPoint is returned when a name is installed twice.
	ErrDuplicateEntryPoint = errors.New("entry point already installed")

	// ErrNotEditable is returned when a property commit targets a private key
	// or a value kind with no editor.
	ErrNotEditable = errors.New("property not editable")

	// ErrNoSelection is returned when an edit or drag needs an inspected entity.
	ErrNoSelection = errors.New("no entity selected")

	// ErrUnknownComponent is returned when a commit names a component the
	// selected entity does not have.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrAssetOverrideLate is returned when the asset path override comes after
	// another engine call or a previous override.
	ErrAssetOverrideLate = errors.New("asset path override must be the first engine call")
)

// CallError describes a failed boundary call.
type CallError struct {
	Name string // Entry point name
	Err  error  // Underlying error
}

func (e *CallError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *CallError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func callError(name string, err error) error {
	if err == nil {
		return nil
	}
	return &CallError{Name: name, Err: err}
}
