package subscription

import "fmt"

// Outcome is the result of a change attempt. The five business outcomes use fixed codes;
// any other value is a record store status passed through verbatim.
type Outcome int

const (
	AlreadyAtTarget   Outcome = 200
	Success           Outcome = 204
	InvalidTransition Outcome = 400
	NotFound          Outcome = 404
	BackendFailure    Outcome = 500
)

// Code returns the numeric response code for o.
func (o Outcome) Code() int {
	return int(o)
}

func (o Outcome) String() string {
	switch o {
	case AlreadyAtTarget:
		return "already_at_target"
	case Success:
		return "success"
	case InvalidTransition:
		return "invalid_transition"
	case NotFound:
		return "not_found"
	case BackendFailure:
		return "backend_failure"
	default:
		return fmt.Sprintf("status_%d", int(o))
	}
}

// IsPassthrough reports whether o is a raw record store status rather than one of the
// business outcomes.
func (o Outcome) IsPassthrough() bool {
	switch o {
	case AlreadyAtTarget, Success, InvalidTransition, NotFound, BackendFailure:
		return false
	default:
		return true
	}
}
