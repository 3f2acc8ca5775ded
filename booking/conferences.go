package booking

import (
	"context"
	"fmt"

	"github.com/confcentral/central"
)

type Conferences struct {
	Store    central.Store
	Keys     central.KeyAllocator
	Profiles *Profiles
	Retry    RetryPolicy
}

// Create validates the form before allocating a key under the organizer's
// profile, then stores the conference together with the organizer profile
// in one transaction.
func (c *Conferences) Create(ctx context.Context, identity central.Identity,
	form central.ConferenceForm) (central.Conference, error) {
	if !identity.Authenticated() {
		return central.Conference{}, central.ErrUnauthorized
	}
	if err := form.Validate(); err != nil {
		return central.Conference{}, err
	}

	key, err := c.Keys.AllocateConferenceKey(ctx, identity.UserId)
	if err != nil {
		return central.Conference{}, fmt.Errorf("allocate conference key: %w", err)
	}
	conference, err := central.NewConference(key, form)
	if err != nil {
		return central.Conference{}, err
	}

	err = runInTx(ctx, c.Store, c.Retry, func(ctx context.Context, tx central.Tx) error {
		profile, err := c.Profiles.GetOrCreate(ctx, tx, identity)
		if err != nil {
			return err
		}
		if err := tx.PutProfile(ctx, profile); err != nil {
			return fmt.Errorf("put profile: %w", err)
		}
		if err := tx.PutConference(ctx, conference); err != nil {
			return fmt.Errorf("put conference: %w", err)
		}
		return nil
	})
	if err != nil {
		return central.Conference{}, fmt.Errorf("create conference: %w", err)
	}
	return conference, nil
}

func (c *Conferences) ByKey(ctx context.Context, websafeKey string) (central.Conference, error) {
	key, err := central.ParseConferenceKey(websafeKey)
	if err != nil {
		return central.Conference{}, err
	}
	conference, err := c.Store.ConferenceByKey(ctx, key)
	if err != nil {
		return central.Conference{}, fmt.Errorf("select conference: %w", err)
	}
	return conference, nil
}

func (c *Conferences) CreatedBy(ctx context.Context, identity central.Identity) ([]central.Conference, error) {
	if !identity.Authenticated() {
		return nil, central.ErrUnauthorized
	}
	conferences, err := c.Store.ConferencesByOrganizer(ctx, identity.UserId)
	if err != nil {
		return nil, fmt.Errorf("select conferences by organizer: %w", err)
	}
	return conferences, nil
}

// ToAttend lists conferences the caller registered for, in registration
// order. Fails with central.ErrProfileNotFound for callers who never
// stored a profile.
func (c *Conferences) ToAttend(ctx context.Context, identity central.Identity) ([]central.Conference, error) {
	profile, err := c.Profiles.ByIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}
	conferences, err := c.Store.ConferencesByKeys(ctx, profile.ConferenceKeysToAttend.Slice())
	if err != nil {
		return nil, fmt.Errorf("select conferences by keys: %w", err)
	}
	return conferences, nil
}
