package exitcode

// Exit codes for weave commands
const (
	Success   = 0
	Error     = 1
	BadInput  = 2
	Cancelled = 130 // 128 + SIGINT
)

// ExitError is an error that carries a specific exit code
type ExitError struct {
	Code    int
	Message string
}

func (e ExitError) Error() string {
	return e.Message
}

// Convenience constructors
func Input(msg string) ExitError { return ExitError{Code: BadInput, Message: msg} }
func Cancel() ExitError          { return ExitError{Code: Cancelled, Message: "cancelled"} }
