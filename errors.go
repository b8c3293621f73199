package evmscript

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions.
var (
	// ErrNameNotFound indicates a name or address has no resolution.
	ErrNameNotFound = errors.New("evmscript: name not found")

	// ErrNoResolver indicates a name was given but no resolver is configured.
	ErrNoResolver = errors.New("evmscript: no resolver configured")

	// ErrUnsupportedType indicates a signature uses a type the codec cannot split safely.
	ErrUnsupportedType = errors.New("evmscript: unsupported parameter type")

	// ErrScriptTooShort indicates a script shorter than the container header.
	ErrScriptTooShort = errors.New("evmscript: script shorter than header")

	// ErrUnknownSpecID indicates the script does not start with spec id 1.
	ErrUnknownSpecID = errors.New("evmscript: unknown script spec id")

	// ErrLengthMismatch indicates the declared call-data length disagrees with the payload.
	ErrLengthMismatch = errors.New("evmscript: call-data length mismatch")

	// ErrSelectorMismatch indicates call-data does not start with the expected selector.
	ErrSelectorMismatch = errors.New("evmscript: selector mismatch")

	// ErrUnknownAgent indicates the script targets an agent outside the agent map.
	ErrUnknownAgent = errors.New("evmscript: unknown agent address")

	// ErrNoAgent indicates the agent map has no entry for the proposal type.
	ErrNoAgent = errors.New("evmscript: no agent for proposal type")
)

// Field identifies the form control an encode failure is attributed to.
type Field string

const (
	FieldParameters      Field = "parameters"
	FieldTargetSignature Field = "targetSignature"
	FieldTargetValue     Field = "targetValue"
	FieldTargetAddress   Field = "targetAddress"
	FieldGeneric         Field = "generic"
)

// ErrorKind classifies an encode failure.
type ErrorKind uint8

const (
	InvalidParametersJSON ErrorKind = iota
	InvalidSignature
	ArityMismatch
	UnresolvableAddress
	EncodingTypeMismatch
	InvalidValue
	GenericAssemblyFailure
)

var errorKindNames = [...]string{
	InvalidParametersJSON:  "InvalidParametersJson",
	InvalidSignature:       "InvalidSignature",
	ArityMismatch:          "ArityMismatch",
	UnresolvableAddress:    "UnresolvableAddress",
	EncodingTypeMismatch:   "EncodingTypeMismatch",
	InvalidValue:           "InvalidValue",
	GenericAssemblyFailure: "GenericAssemblyFailure",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// FormError is the only error EncodeEvmScript returns. Field names the
// offending form control and Message is suitable for display next to it.
type FormError struct {
	Field   Field
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *FormError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("evmscript: %s (%s): %s: %v", e.Field, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("evmscript: %s (%s): %s", e.Field, e.Kind, e.Message)
}

func (e *FormError) Unwrap() error {
	return e.Err
}

func newFormError(field Field, kind ErrorKind, msg string, err error) *FormError {
	return &FormError{Field: field, Kind: kind, Message: msg, Err: err}
}

// UnresolvableAddressError indicates a name could not be resolved to an address.
type UnresolvableAddressError struct {
	Name string
	Err  error
}

func (e *UnresolvableAddressError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("evmscript: cannot resolve %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("evmscript: cannot resolve %q", e.Name)
}

func (e *UnresolvableAddressError) Unwrap() error {
	return e.Err
}

// ArgumentError indicates a parameter value could not be coerced to its declared type.
type ArgumentError struct {
	Index int
	Type  string
	Err   error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("evmscript: argument %d (%s): %v", e.Index, e.Type, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// TypeMismatchError indicates a value's shape doesn't match the expected parameter type.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("evmscript: type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// SignatureError indicates a function signature could not be parsed.
type SignatureError struct {
	Signature string
	Reason    string
	Err       error
}

func (e *SignatureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("evmscript: invalid signature %q: %s: %v", e.Signature, e.Reason, e.Err)
	}
	return fmt.Sprintf("evmscript: invalid signature %q: %s", e.Signature, e.Reason)
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}

// ScriptError wraps failures while parsing a script container.
type ScriptError struct {
	Offset int
	Err    error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("evmscript: script offset %d: %v", e.Offset, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
