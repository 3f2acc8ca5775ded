package persistent

import (
	"fmt"

	"github.com/confcentral/central"
	"github.com/uptrace/bun"
)

type Profile struct {
	bun.BaseModel `bun:"table:profile"`

	UserId                 string   `bun:",pk" json:"userId"`
	DisplayName            string   `bun:",notnull" json:"displayName"`
	MainEmail              string   `bun:",notnull" json:"mainEmail"`
	TeeShirtSize           string   `bun:",notnull" json:"teeShirtSize"`
	ConferenceKeysToAttend []string `bun:",array" json:"conferenceKeysToAttend"`
}

func profileFromDomain(p central.Profile) *Profile {
	return &Profile{
		UserId:                 string(p.UserId),
		DisplayName:            p.DisplayName,
		MainEmail:              string(p.MainEmail),
		TeeShirtSize:           string(p.TeeShirtSize),
		ConferenceKeysToAttend: p.ConferenceKeysToAttend.Strings(),
	}
}

func (p Profile) ToDomain() (central.Profile, error) {
	keys := make([]central.ConferenceKey, 0, len(p.ConferenceKeysToAttend))
	for _, websafe := range p.ConferenceKeysToAttend {
		key, err := central.ParseConferenceKey(websafe)
		if err != nil {
			return central.Profile{}, fmt.Errorf("profile %s: %w", p.UserId, err)
		}
		keys = append(keys, key)
	}
	return central.Profile{
		UserId:                 central.UserId(p.UserId),
		DisplayName:            p.DisplayName,
		MainEmail:              central.Email(p.MainEmail),
		TeeShirtSize:           central.TeeShirtSize(p.TeeShirtSize),
		ConferenceKeysToAttend: central.NewConferenceKeys(keys...),
	}, nil
}
