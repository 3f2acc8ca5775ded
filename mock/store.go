package mock

import (
	"context"

	"github.com/confcentral/central"
)

type Store struct {
	ProfileByUserIdFn func(ctx context.Context, userId central.UserId) (central.Profile, error)

	ConferenceByKeyFn func(ctx context.Context, key central.ConferenceKey) (central.Conference, error)

	PutProfileFn func(ctx context.Context, profile central.Profile) error

	PutConferenceFn func(ctx context.Context, conference central.Conference) error

	RunInTxFn func(ctx context.Context, fn func(ctx context.Context, tx central.Tx) error) error

	ConferencesByKeysFn func(ctx context.Context, keys []central.ConferenceKey) ([]central.Conference, error)

	ConferencesByOrganizerFn func(ctx context.Context, organizer central.UserId) ([]central.Conference, error)
}

var _ central.Store = Store{}

func (s Store) ProfileByUserId(ctx context.Context, userId central.UserId) (central.Profile, error) {
	return s.ProfileByUserIdFn(ctx, userId)
}

func (s Store) ConferenceByKey(ctx context.Context, key central.ConferenceKey) (central.Conference, error) {
	return s.ConferenceByKeyFn(ctx, key)
}

func (s Store) PutProfile(ctx context.Context, profile central.Profile) error {
	return s.PutProfileFn(ctx, profile)
}

func (s Store) PutConference(ctx context.Context, conference central.Conference) error {
	return s.PutConferenceFn(ctx, conference)
}

func (s Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx central.Tx) error) error {
	return s.RunInTxFn(ctx, fn)
}

func (s Store) ConferencesByKeys(ctx context.Context, keys []central.ConferenceKey) ([]central.Conference, error) {
	return s.ConferencesByKeysFn(ctx, keys)
}

func (s Store) ConferencesByOrganizer(ctx context.Context, organizer central.UserId) ([]central.Conference, error) {
	return s.ConferencesByOrganizerFn(ctx, organizer)
}
