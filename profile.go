package central

import (
	"encoding/json"
	"fmt"
)

type TeeShirtSize string

const (
	TeeShirtNotSpecified TeeShirtSize = "NOT_SPECIFIED"
	TeeShirtXS           TeeShirtSize = "XS"
	TeeShirtS            TeeShirtSize = "S"
	TeeShirtM            TeeShirtSize = "M"
	TeeShirtL            TeeShirtSize = "L"
	TeeShirtXL           TeeShirtSize = "XL"
	TeeShirtXXL          TeeShirtSize = "XXL"
	TeeShirtXXXL         TeeShirtSize = "XXXL"
)

var teeShirtSizes = map[TeeShirtSize]bool{
	TeeShirtNotSpecified: true,
	TeeShirtXS:           true,
	TeeShirtS:            true,
	TeeShirtM:            true,
	TeeShirtL:            true,
	TeeShirtXL:           true,
	TeeShirtXXL:          true,
	TeeShirtXXXL:         true,
}

func ParseTeeShirtSize(s string) (TeeShirtSize, error) {
	size := TeeShirtSize(s)
	if !teeShirtSizes[size] {
		return "", fmt.Errorf("%w: %q", ErrInvalidTeeShirt, s)
	}
	return size, nil
}

// ConferenceKeys is an ordered set of conference keys. Order is the
// registration order. The zero value is an empty set ready to use.
//
// Mutations never write into a backing array shared with a copy, so
// copying a Profile by value is safe.
type ConferenceKeys struct {
	keys []ConferenceKey
}

// NewConferenceKeys builds a set from keys, dropping repeated entries.
func NewConferenceKeys(keys ...ConferenceKey) ConferenceKeys {
	var set ConferenceKeys
	for _, k := range keys {
		set.Add(k)
	}
	return set
}

func (s ConferenceKeys) Len() int {
	return len(s.keys)
}

func (s ConferenceKeys) Contains(key ConferenceKey) bool {
	for _, k := range s.keys {
		if k == key {
			return true
		}
	}
	return false
}

// Add appends key. Returns false and leaves the set unchanged when the
// key is already present.
func (s *ConferenceKeys) Add(key ConferenceKey) bool {
	if s.Contains(key) {
		return false
	}
	s.keys = append(s.keys[:len(s.keys):len(s.keys)], key)
	return true
}

// Remove deletes key keeping the order of the rest. Returns false when
// the key was not present.
func (s *ConferenceKeys) Remove(key ConferenceKey) bool {
	for i, k := range s.keys {
		if k != key {
			continue
		}
		keys := make([]ConferenceKey, 0, len(s.keys)-1)
		keys = append(keys, s.keys[:i]...)
		keys = append(keys, s.keys[i+1:]...)
		s.keys = keys
		return true
	}
	return false
}

// Slice returns a copy of the keys in registration order.
func (s ConferenceKeys) Slice() []ConferenceKey {
	keys := make([]ConferenceKey, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Strings returns websafe keys in registration order.
func (s ConferenceKeys) Strings() []string {
	strs := make([]string, len(s.keys))
	for i, k := range s.keys {
		strs[i] = k.String()
	}
	return strs
}

func (s ConferenceKeys) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *ConferenceKeys) UnmarshalJSON(data []byte) error {
	var keys []ConferenceKey
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*s = NewConferenceKeys(keys...)
	return nil
}

type Profile struct {
	UserId                 UserId         `json:"userId"`
	DisplayName            string         `json:"displayName"`
	MainEmail              Email          `json:"mainEmail"`
	TeeShirtSize           TeeShirtSize   `json:"teeShirtSize"`
	ConferenceKeysToAttend ConferenceKeys `json:"conferenceKeysToAttend"`
}

// NewProfile creates the default profile of a caller who never saved one.
func NewProfile(identity Identity) Profile {
	return Profile{
		UserId:       identity.UserId,
		DisplayName:  identity.Email.LocalPart(),
		MainEmail:    identity.Email,
		TeeShirtSize: TeeShirtNotSpecified,
	}
}

// Profile fields a caller may change. Nil fields are left untouched.
type ProfileForm struct {
	DisplayName  *string
	TeeShirtSize *TeeShirtSize
}

func (p *Profile) Update(form ProfileForm) {
	if form.DisplayName != nil {
		p.DisplayName = *form.DisplayName
	}
	if form.TeeShirtSize != nil {
		p.TeeShirtSize = *form.TeeShirtSize
	}
}
