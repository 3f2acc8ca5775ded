package central

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const conferenceKind = "Conference"

// ConferenceKey addresses a conference nested under its organizer profile.
type ConferenceKey struct {
	Organizer UserId
	Id        int64
}

// String returns the websafe form of the key. ParseConferenceKey reverses it.
func (k ConferenceKey) String() string {
	// length prefix keeps organizer ids containing separators unambiguous
	raw := fmt.Sprintf("%s:%d:%s:%d", conferenceKind, len(k.Organizer), k.Organizer, k.Id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func (k ConferenceKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ConferenceKey) UnmarshalText(text []byte) error {
	parsed, err := ParseConferenceKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseConferenceKey accepts only the exact form String produces.
func ParseConferenceKey(websafe string) (ConferenceKey, error) {
	rawBytes, err := base64.RawURLEncoding.Strict().DecodeString(websafe)
	if err != nil {
		return ConferenceKey{}, fmt.Errorf("%w: decode: %s", ErrMalformedKey, err)
	}
	raw := string(rawBytes)

	if !strings.HasPrefix(raw, conferenceKind+":") {
		return ConferenceKey{}, fmt.Errorf("%w: unknown kind", ErrMalformedKey)
	}
	raw = strings.TrimPrefix(raw, conferenceKind+":")

	sep := strings.IndexByte(raw, ':')
	if sep <= 0 {
		return ConferenceKey{}, fmt.Errorf("%w: missing organizer length", ErrMalformedKey)
	}
	organizerLen, err := strconv.Atoi(raw[:sep])
	if err != nil || organizerLen <= 0 || sep+1+organizerLen >= len(raw) {
		return ConferenceKey{}, fmt.Errorf("%w: invalid organizer length", ErrMalformedKey)
	}
	raw = raw[sep+1:]
	organizer := raw[:organizerLen]
	if raw[organizerLen] != ':' {
		return ConferenceKey{}, fmt.Errorf("%w: missing id separator", ErrMalformedKey)
	}

	idStr := raw[organizerLen+1:]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 || strconv.FormatInt(id, 10) != idStr {
		return ConferenceKey{}, fmt.Errorf("%w: invalid id", ErrMalformedKey)
	}

	key := ConferenceKey{Organizer: UserId(organizer), Id: id}
	if key.String() != websafe {
		return ConferenceKey{}, fmt.Errorf("%w: non-canonical form", ErrMalformedKey)
	}
	return key, nil
}

type KeyAllocator interface {
	// Allocate a conference key nested under the organizer profile. Returned
	// ids are never reused.
	AllocateConferenceKey(ctx context.Context, organizer UserId) (ConferenceKey, error)
}
