package persistent

import (
	"time"

	"github.com/confcentral/central"
	"github.com/uptrace/bun"
)

// Conference rows are keyed by organizer and id, which mirrors the nesting
// of a conference under its organizer's profile.
type Conference struct {
	bun.BaseModel `bun:"table:conference"`

	OrganizerUserId string    `bun:",pk" json:"organizerUserId"`
	Id              int64     `bun:",pk" json:"id"`
	Name            string    `bun:",notnull" json:"name"`
	Description     string    `bun:",notnull" json:"description"`
	Topics          []string  `bun:",array" json:"topics"`
	City            string    `bun:",notnull" json:"city"`
	StartDate       time.Time `bun:",nullzero" json:"startDate"`
	EndDate         time.Time `bun:",nullzero" json:"endDate"`
	Month           int       `bun:",notnull" json:"month"`
	MaxAttendees    int       `bun:",notnull" json:"maxAttendees"`
	SeatsAvailable  int       `bun:",notnull" json:"seatsAvailable"`
}

func conferenceFromDomain(c central.Conference) *Conference {
	return &Conference{
		OrganizerUserId: string(c.Key.Organizer),
		Id:              c.Key.Id,
		Name:            c.Name,
		Description:     c.Description,
		Topics:          c.Clone().Topics,
		City:            c.City,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		Month:           c.Month,
		MaxAttendees:    c.MaxAttendees,
		SeatsAvailable:  c.SeatsAvailable,
	}
}

func (c Conference) Key() central.ConferenceKey {
	return central.ConferenceKey{Organizer: central.UserId(c.OrganizerUserId), Id: c.Id}
}

func (c Conference) ToDomain() central.Conference {
	return central.Conference{
		Key:            c.Key(),
		Name:           c.Name,
		Description:    c.Description,
		Topics:         c.Topics,
		City:           c.City,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		Month:          c.Month,
		MaxAttendees:   c.MaxAttendees,
		SeatsAvailable: c.SeatsAvailable,
	}
}
