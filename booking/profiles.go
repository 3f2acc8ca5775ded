package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/confcentral/central"
)

type Profiles struct {
	Store central.Store
	Retry RetryPolicy
}

// GetOrCreate loads the caller's profile through tx, falling back to a
// default one built from the identity. The default is not persisted.
func (p *Profiles) GetOrCreate(ctx context.Context, tx central.Tx, identity central.Identity) (central.Profile, error) {
	profile, err := tx.ProfileByUserId(ctx, identity.UserId)
	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, central.ErrProfileNotFound):
		return central.NewProfile(identity), nil
	default:
		return central.Profile{}, fmt.Errorf("select profile: %w", err)
	}
}

// Update merges form over the existing (or default) profile and stores it.
func (p *Profiles) Update(ctx context.Context, identity central.Identity, form central.ProfileForm) (central.Profile, error) {
	if !identity.Authenticated() {
		return central.Profile{}, central.ErrUnauthorized
	}

	var profile central.Profile
	err := runInTx(ctx, p.Store, p.Retry, func(ctx context.Context, tx central.Tx) error {
		var err error
		profile, err = p.GetOrCreate(ctx, tx, identity)
		if err != nil {
			return err
		}
		profile.Update(form)
		if err := tx.PutProfile(ctx, profile); err != nil {
			return fmt.Errorf("put profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return central.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}

func (p *Profiles) ByIdentity(ctx context.Context, identity central.Identity) (central.Profile, error) {
	if !identity.Authenticated() {
		return central.Profile{}, central.ErrUnauthorized
	}
	profile, err := p.Store.ProfileByUserId(ctx, identity.UserId)
	if err != nil {
		return central.Profile{}, fmt.Errorf("select profile: %w", err)
	}
	return profile, nil
}
