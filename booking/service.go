package booking

import (
	"context"

	"github.com/confcentral/central"
)

// Service exposes the conference operations callers are allowed to use.
type Service struct {
	Profiles    *Profiles
	Conferences *Conferences
	Coordinator *Coordinator
}

func NewService(store central.Store, keys central.KeyAllocator, retry RetryPolicy) *Service {
	profiles := &Profiles{Store: store, Retry: retry}
	return &Service{
		Profiles: profiles,
		Conferences: &Conferences{
			Store:    store,
			Keys:     keys,
			Profiles: profiles,
			Retry:    retry,
		},
		Coordinator: &Coordinator{
			Store:    store,
			Profiles: profiles,
			Retry:    retry,
		},
	}
}

// Result of a registration call along with a reason fit for display.
type Registration struct {
	Result bool   `json:"result"`
	Reason string `json:"reason"`
}

func (s *Service) SaveProfile(ctx context.Context, identity central.Identity,
	form central.ProfileForm) (central.Profile, error) {
	return s.Profiles.Update(ctx, identity, form)
}

func (s *Service) GetProfile(ctx context.Context, identity central.Identity) (central.Profile, error) {
	return s.Profiles.ByIdentity(ctx, identity)
}

func (s *Service) CreateConference(ctx context.Context, identity central.Identity,
	form central.ConferenceForm) (central.Conference, error) {
	return s.Conferences.Create(ctx, identity, form)
}

func (s *Service) GetConference(ctx context.Context, websafeKey string) (central.Conference, error) {
	return s.Conferences.ByKey(ctx, websafeKey)
}

func (s *Service) RegisterForConference(ctx context.Context, identity central.Identity,
	websafeKey string) (Registration, error) {
	outcome, err := s.Coordinator.Register(ctx, identity, websafeKey)
	if err != nil {
		return Registration{Result: false, Reason: outcome.Reason()}, err
	}
	return Registration{Result: true, Reason: outcome.Reason()}, nil
}

func (s *Service) UnregisterFromConference(ctx context.Context, identity central.Identity,
	websafeKey string) (Registration, error) {
	outcome, err := s.Coordinator.Unregister(ctx, identity, websafeKey)
	if err != nil {
		return Registration{Result: false, Reason: outcome.Reason()}, err
	}
	return Registration{Result: true, Reason: "Unregistration successful"}, nil
}

func (s *Service) GetConferencesToAttend(ctx context.Context, identity central.Identity) ([]central.Conference, error) {
	return s.Conferences.ToAttend(ctx, identity)
}

func (s *Service) GetConferencesCreated(ctx context.Context, identity central.Identity) ([]central.Conference, error) {
	return s.Conferences.CreatedBy(ctx, identity)
}
