package render

import (
	"fmt"

	"fractalviewer/internal/gles"
)

type ErrorKind int

const (
	CompileFailed ErrorKind = iota + 1
	LinkFailed
	RuntimeError
	RequiredLocationMissing
	IncompleteTarget
)

func (k ErrorKind) String() string {
	switch k {
	case CompileFailed:
		return "CompileFailed"
	case LinkFailed:
		return "LinkFailed"
	case RuntimeError:
		return "RuntimeError"
	case RequiredLocationMissing:
		return "RequiredLocationMissing"
	case IncompleteTarget:
		return "IncompleteTarget"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned by every rendering primitive. Code holds the GL error
// code for RuntimeError and the framebuffer status for IncompleteTarget.
type Error struct {
	Kind ErrorKind
	Op   string
	Name string
	Code uint32
	Log  string
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrCompileFailed           = &Error{Kind: CompileFailed}
	ErrLinkFailed              = &Error{Kind: LinkFailed}
	ErrRuntime                 = &Error{Kind: RuntimeError}
	ErrRequiredLocationMissing = &Error{Kind: RequiredLocationMissing}
	ErrIncompleteTarget        = &Error{Kind: IncompleteTarget}
)

func (e *Error) Error() string {
	switch e.Kind {
	case CompileFailed:
		return fmt.Sprintf("render: %s: shader %q failed to compile:\n%s", e.Op, e.Name, e.Log)
	case LinkFailed:
		return fmt.Sprintf("render: %s: program %q failed to link:\n%s", e.Op, e.Name, e.Log)
	case RequiredLocationMissing:
		return fmt.Sprintf("render: %s: required location %q not found", e.Op, e.Name)
	case IncompleteTarget:
		return fmt.Sprintf("render: %s: framebuffer incomplete (status 0x%04x)", e.Op, e.Code)
	case RuntimeError:
		msg := fmt.Sprintf("render: %s: glGetError is non zero: 0x%04x (%s)", e.Op, e.Code, gles.ErrorName(e.Code))
		if cause, ok := gles.Explain(e.Code); ok {
			msg += ": " + cause
		}
		return msg
	}
	return fmt.Sprintf("render: %s: %s", e.Op, e.Kind)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// checkError turns a pending GL error into a RuntimeError.
func checkError(api gles.API, op string) error {
	if code := api.GetError(); code != gles.NoError {
		return &Error{Kind: RuntimeError, Op: op, Code: code}
	}
	return nil
}

// StageError reports a renderer call made out of pipeline order.
type StageError struct {
	Op   string
	Have Stage
	Want []Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("render: %s: renderer is %s, want %v", e.Op, e.Have, e.Want)
}
