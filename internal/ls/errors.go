package ls

import (
	"errors"
	"fmt"
)

// Kind classifies fatal run failures.
type Kind int

const (
	KindUsage Kind = iota + 1
	KindResolution
	KindTransportCreate
	KindConnect
	KindDirectorySubmit
	KindDirectory
	KindTimeout
)

var kindNames = map[Kind]string{
	KindUsage:           "usage",
	KindResolution:      "resolution",
	KindTransportCreate: "transport create",
	KindConnect:         "connect",
	KindDirectorySubmit: "directory submit",
	KindDirectory:       "directory",
	KindTimeout:         "timeout",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a fatal run failure. Msg is what the user sees; Err keeps the
// cause for errors.Is/As.
type Error struct {
	Kind   Kind
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String() + " failure"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode maps the failure to the process exit status.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindConnect:
		return 2
	case KindDirectory:
		return 3
	default:
		return 1
	}
}

// ErrTimeout is reported when the directory barrier deadline passes.
var ErrTimeout = errors.New("timed out waiting for the directory")

const timeoutMessage = "A timeout occurred waiting for a response from the server.\n" +
	"Use the -w option to specify the amount of time to wait for the server"

func usageError(msg string) *Error {
	return &Error{Kind: KindUsage, Msg: msg}
}

// IsUsage reports whether err asks for the command usage to be shown.
func IsUsage(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindUsage
}
