package booking

import "github.com/confcentral/central"

// Outcome of a registration transaction, decided inside the transaction.
type Outcome byte

const (
	OutcomeFailed Outcome = iota
	OutcomeSuccess
	OutcomeAlreadyRegistered
	OutcomeNoSeats
	OutcomeNotFound
	OutcomeNotRegistered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAlreadyRegistered:
		return "already_registered"
	case OutcomeNoSeats:
		return "no_seats"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeNotRegistered:
		return "not_registered"
	default:
		return "failed"
	}
}

// Err maps the outcome to the domain error reported to callers.
// Nil for OutcomeSuccess.
func (o Outcome) Err() error {
	switch o {
	case OutcomeSuccess:
		return nil
	case OutcomeAlreadyRegistered:
		return central.ErrAlreadyRegistered
	case OutcomeNoSeats:
		return central.ErrNoSeats
	case OutcomeNotFound:
		return central.ErrConferenceNotFound
	case OutcomeNotRegistered:
		return central.ErrNotRegistered
	default:
		return central.ErrUnknown
	}
}

// Human readable reason shown next to the boolean result.
func (o Outcome) Reason() string {
	switch o {
	case OutcomeSuccess:
		return "Registration successful"
	case OutcomeAlreadyRegistered:
		return "You have already registered"
	case OutcomeNoSeats:
		return "There are no seats available"
	case OutcomeNotFound:
		return "No conference found with key"
	case OutcomeNotRegistered:
		return "You are not registered for this conference"
	default:
		return "Unknown exception"
	}
}
