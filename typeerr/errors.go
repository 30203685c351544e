package typeerr

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes FormatWithCode include the frame that created the error
const enableDebugErrorPrinting bool = true
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	Configuration
	Subtype
	InternalConsistency
	IllegalReentrancy
	Load
)

func (c ErrCode) String() string {
	switch c {
	case Configuration:
		return "configuration"
	case Subtype:
		return "subtype"
	case InternalConsistency:
		return "internal consistency"
	case IllegalReentrancy:
		return "illegal reentrancy"
	case Load:
		return "load"
	default:
		return "unclassified"
	}
}

type TypeError interface {
	Error() string
	Code() ErrCode

	withStack([]byte) TypeError
	getStack() []byte
}

// New records the current stack in err so that FormatWithCode can point at its origin
func New[E TypeError](err E) TypeError {
	return err.withStack(debug.Stack())
}

func FormatWithCode(e TypeError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			lines := strings.Split(stack, "\n")
			if len(lines) > 6 {
				stack = strings.TrimSpace(lines[6])
			}
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// Is reports whether any error in err's chain is a TypeError with the given code
func Is(err error, code ErrCode) bool {
	var typeErr TypeError
	if !errors.As(err, &typeErr) {
		return false
	}
	return typeErr.Code() == code
}

type Unclassified struct {
	From  error
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Unwrap() error    { return e.From }
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}

// NewConfiguration is returned when type arguments do not match the declared type parameters
type NewConfiguration struct {
	TypeName string
	Expected int
	Got      int
	stack    []byte
}

func (e NewConfiguration) Error() string {
	return fmt.Sprintf("cannot bind %d type arguments to '%s': it declares %d type parameters", e.Got, e.TypeName, e.Expected)
}
func (e NewConfiguration) Code() ErrCode    { return Configuration }
func (e NewConfiguration) getStack() []byte { return e.stack }
func (e NewConfiguration) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}

type NewSubtype struct {
	Supertype string
	Candidate string
	stack     []byte
}

func (e NewSubtype) Error() string {
	return fmt.Sprintf("cannot narrow '%s' to '%s': '%s' neither extends nor implements it", e.Supertype, e.Candidate, e.Candidate)
}
func (e NewSubtype) Code() ErrCode    { return Subtype }
func (e NewSubtype) getStack() []byte { return e.stack }
func (e NewSubtype) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}

// NewInternalConsistency signals malformed input from the introspection surface
// or a bug in the resolver, never a caller mistake
type NewInternalConsistency struct {
	Reason string
	stack  []byte
}

func (e NewInternalConsistency) Error() string {
	return fmt.Sprintf("internal consistency failure: %s", e.Reason)
}
func (e NewInternalConsistency) Code() ErrCode    { return InternalConsistency }
func (e NewInternalConsistency) getStack() []byte { return e.stack }
func (e NewInternalConsistency) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}

type NewIllegalReentrancy struct {
	TypeName string
	stack    []byte
}

func (e NewIllegalReentrancy) Error() string {
	return fmt.Sprintf("self-reference to '%s' was already resolved", e.TypeName)
}
func (e NewIllegalReentrancy) Code() ErrCode    { return IllegalReentrancy }
func (e NewIllegalReentrancy) getStack() []byte { return e.stack }
func (e NewIllegalReentrancy) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}

// NewLoad reports malformed universe documents and signature text
type NewLoad struct {
	// Where may be empty
	Where  string
	Reason string
	stack  []byte
}

func (e NewLoad) Error() string {
	if e.Where == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Where, e.Reason)
}
func (e NewLoad) Code() ErrCode    { return Load }
func (e NewLoad) getStack() []byte { return e.stack }
func (e NewLoad) withStack(stack []byte) TypeError {
	e.stack = stack
	return e
}
