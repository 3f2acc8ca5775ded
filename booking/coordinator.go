package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/confcentral/central"
	"github.com/sirupsen/logrus"
)

// Coordinator books and releases conference seats. Each call runs one
// transaction over the caller's profile and the target conference.
type Coordinator struct {
	Store    central.Store
	Profiles *Profiles
	Retry    RetryPolicy
}

type txBody = func(ctx context.Context, tx central.Tx, key central.ConferenceKey,
	identity central.Identity) (Outcome, error)

// Register books one seat. The returned error is nil only for OutcomeSuccess.
func (c *Coordinator) Register(ctx context.Context, identity central.Identity, websafeKey string) (Outcome, error) {
	return c.run(ctx, "register", identity, websafeKey, c.register)
}

// Unregister gives the caller's seat back.
func (c *Coordinator) Unregister(ctx context.Context, identity central.Identity, websafeKey string) (Outcome, error) {
	return c.run(ctx, "unregister", identity, websafeKey, c.unregister)
}

func (c *Coordinator) register(ctx context.Context, tx central.Tx, key central.ConferenceKey,
	identity central.Identity) (Outcome, error) {
	conference, err := tx.ConferenceByKey(ctx, key)
	if errors.Is(err, central.ErrConferenceNotFound) {
		return OutcomeNotFound, nil
	} else if err != nil {
		return OutcomeFailed, fmt.Errorf("select conference: %w", err)
	}
	profile, err := c.Profiles.GetOrCreate(ctx, tx, identity)
	if err != nil {
		return OutcomeFailed, err
	}

	switch {
	case profile.ConferenceKeysToAttend.Contains(key):
		return OutcomeAlreadyRegistered, nil
	case conference.SeatsAvailable <= 0:
		return OutcomeNoSeats, nil
	}

	profile.ConferenceKeysToAttend.Add(key)
	if err := conference.BookSeats(1); err != nil {
		return OutcomeFailed, fmt.Errorf("book seat: %w", err)
	}
	return OutcomeSuccess, putBoth(ctx, tx, profile, conference)
}

func (c *Coordinator) unregister(ctx context.Context, tx central.Tx, key central.ConferenceKey,
	identity central.Identity) (Outcome, error) {
	conference, err := tx.ConferenceByKey(ctx, key)
	if errors.Is(err, central.ErrConferenceNotFound) {
		return OutcomeNotFound, nil
	} else if err != nil {
		return OutcomeFailed, fmt.Errorf("select conference: %w", err)
	}
	profile, err := c.Profiles.GetOrCreate(ctx, tx, identity)
	if err != nil {
		return OutcomeFailed, err
	}

	if !profile.ConferenceKeysToAttend.Remove(key) {
		return OutcomeNotRegistered, nil
	}
	if err := conference.GiveBackSeats(1); err != nil {
		return OutcomeFailed, fmt.Errorf("give back seat: %w", err)
	}
	return OutcomeSuccess, putBoth(ctx, tx, profile, conference)
}

func putBoth(ctx context.Context, tx central.Tx, profile central.Profile, conference central.Conference) error {
	if err := tx.PutProfile(ctx, profile); err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	if err := tx.PutConference(ctx, conference); err != nil {
		return fmt.Errorf("put conference: %w", err)
	}
	return nil
}

func (c *Coordinator) run(ctx context.Context, op string, identity central.Identity,
	websafeKey string, body txBody) (Outcome, error) {
	if !identity.Authenticated() {
		return OutcomeFailed, central.ErrUnauthorized
	}
	key, err := central.ParseConferenceKey(websafeKey)
	if err != nil {
		return OutcomeFailed, err
	}

	log := logrus.
		WithField("op", op).
		WithField("user_id", identity.UserId).
		WithField("conference_key", websafeKey)

	var outcome Outcome
	err = runInTx(ctx, c.Store, c.Retry, func(ctx context.Context, tx central.Tx) error {
		var err error
		outcome, err = body(ctx, tx, key, identity)
		return err
	})
	if err != nil {
		// no write of a failed attempt is ever committed
		log.WithError(err).Errorln("Booking transaction failed.")
		outcome = OutcomeFailed
	}

	log.WithField("outcome", outcome).Debugln("Booking transaction done.")
	return outcome, outcome.Err()
}
