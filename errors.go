package central

import "errors"

var (
	ErrUnauthorized       = errors.New("authorization required")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrConferenceNotFound = errors.New("conference not found")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrNoSeats            = errors.New("no seats available")
	ErrNotRegistered      = errors.New("not registered for conference")
	ErrMalformedKey       = errors.New("malformed conference key")
	ErrInvalidSeats       = errors.New("invalid seat count")
	ErrInvalidTeeShirt    = errors.New("invalid tee shirt size")
	ErrUnknown            = errors.New("unknown failure")

	// Returned by a store when a transaction lost a race against a
	// concurrent one touching the same entities. Safe to retry.
	ErrConflict = errors.New("transaction conflict")
)

type ErrorKind byte

const (
	KindInternal ErrorKind = iota
	KindUnauthorized
	KindNotFound
	KindConflict
	KindInvalidArgument
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrUnauthorized, KindUnauthorized},
	{ErrProfileNotFound, KindNotFound},
	{ErrConferenceNotFound, KindNotFound},
	{ErrAlreadyRegistered, KindConflict},
	{ErrNoSeats, KindConflict},
	{ErrNotRegistered, KindInvalidArgument},
	{ErrMalformedKey, KindInvalidArgument},
	{ErrInvalidSeats, KindInvalidArgument},
	{ErrInvalidTeeShirt, KindInvalidArgument},
	{ErrUnknown, KindForbidden},
}

// KindOf classifies err into the externally visible error taxonomy.
// Errors not derived from a domain sentinel are internal.
func KindOf(err error) ErrorKind {
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.kind
		}
	}
	return KindInternal
}
