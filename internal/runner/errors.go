package runner

import "fmt"

// Kind classifies a runner failure.
type Kind int

const (
	KindDirectoryNotFound Kind = iota + 1
	KindNoSourceFile
	KindReadError
	KindExecutionError
)

func (k Kind) String() string {
	switch k {
	case KindDirectoryNotFound:
		return "DirectoryNotFound"
	case KindNoSourceFile:
		return "NoSourceFile"
	case KindReadError:
		return "ReadError"
	case KindExecutionError:
		return "ExecutionError"
	default:
		return "Unknown"
	}
}

// Error is a failure detected by the runner. Msg is the one-line description
// shown to the user after "Error: ".
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels below, so errors.Is(err, ErrNoSourceFile) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrDirectoryNotFound = &Error{Kind: KindDirectoryNotFound}
	ErrNoSourceFile      = &Error{Kind: KindNoSourceFile}
	ErrRead              = &Error{Kind: KindReadError}
	ErrExecution         = &Error{Kind: KindExecutionError}
)

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// ExitError reports that the executed program asked to terminate with Code.
// It is not a runner failure: callers exit with Code and print nothing.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("program exited with status %d", e.Code)
}
