package central

import (
	"encoding/json"
	"fmt"
	"time"
)

// Validated conference attributes supplied by an organizer.
type ConferenceForm struct {
	Name         string
	Description  string
	Topics       []string
	City         string
	StartDate    time.Time
	EndDate      time.Time
	MaxAttendees int
}

type Conference struct {
	Key            ConferenceKey `json:"websafeKey"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Topics         []string      `json:"topics"`
	City           string        `json:"city"`
	StartDate      time.Time     `json:"startDate"`
	EndDate        time.Time     `json:"endDate"`
	Month          int           `json:"month"`
	MaxAttendees   int           `json:"maxAttendees"`
	SeatsAvailable int           `json:"seatsAvailable"`
}

func (f ConferenceForm) Validate() error {
	if f.MaxAttendees < 0 {
		return fmt.Errorf("%w: max attendees %d", ErrInvalidSeats, f.MaxAttendees)
	}
	return nil
}

func NewConference(key ConferenceKey, form ConferenceForm) (Conference, error) {
	if err := form.Validate(); err != nil {
		return Conference{}, err
	}
	var month int
	if !form.StartDate.IsZero() {
		month = int(form.StartDate.Month())
	}
	return Conference{
		Key:            key,
		Name:           form.Name,
		Description:    form.Description,
		Topics:         uniqueTopics(form.Topics),
		City:           form.City,
		StartDate:      form.StartDate,
		EndDate:        form.EndDate,
		Month:          month,
		MaxAttendees:   form.MaxAttendees,
		SeatsAvailable: form.MaxAttendees,
	}, nil
}

func (c Conference) OrganizerUserId() UserId {
	return c.Key.Organizer
}

// MarshalJSON adds organizerUserId next to the stored attributes.
func (c Conference) MarshalJSON() ([]byte, error) {
	type attributes Conference
	return json.Marshal(struct {
		attributes
		OrganizerUserId UserId `json:"organizerUserId"`
	}{attributes(c), c.OrganizerUserId()})
}

func (c *Conference) BookSeats(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: book %d", ErrInvalidSeats, n)
	}
	if c.SeatsAvailable < n {
		return ErrNoSeats
	}
	c.SeatsAvailable -= n
	return nil
}

func (c *Conference) GiveBackSeats(n int) error {
	if n <= 0 || c.SeatsAvailable+n > c.MaxAttendees {
		return fmt.Errorf("%w: give back %d (available %d/%d)",
			ErrInvalidSeats, n, c.SeatsAvailable, c.MaxAttendees)
	}
	c.SeatsAvailable += n
	return nil
}

// CheckSeats verifies 0 <= SeatsAvailable <= MaxAttendees.
func (c Conference) CheckSeats() error {
	if c.SeatsAvailable < 0 || c.SeatsAvailable > c.MaxAttendees {
		return fmt.Errorf("%w: available %d/%d", ErrInvalidSeats, c.SeatsAvailable, c.MaxAttendees)
	}
	return nil
}

// Clone returns a copy not sharing the topics slice.
func (c Conference) Clone() Conference {
	if c.Topics != nil {
		c.Topics = append([]string(nil), c.Topics...)
	}
	return c
}

func uniqueTopics(topics []string) []string {
	if topics == nil {
		return nil
	}
	seen := make(map[string]bool, len(topics))
	unique := make([]string, 0, len(topics))
	for _, t := range topics {
		if seen[t] {
			continue
		}
		seen[t] = true
		unique = append(unique, t)
	}
	return unique
}
