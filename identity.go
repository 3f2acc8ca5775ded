package central

import "strings"

type UserId string

type Email string

// Local part of the address, e.g. "lemoncake" for lemoncake@example.com.
func (e Email) LocalPart() string {
	at := strings.IndexByte(string(e), '@')
	if at < 0 {
		return string(e)
	}
	return string(e)[:at]
}

// Identity of an already authenticated caller. The zero value means
// the caller is not signed in.
type Identity struct {
	UserId UserId
	Email  Email
}

func (i Identity) Authenticated() bool {
	return i.UserId != ""
}
