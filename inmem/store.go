package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/confcentral/central"
)

type profileRecord struct {
	profile central.Profile
	version uint64
}

type conferenceRecord struct {
	conference central.Conference
	version    uint64
}

// Store keeps entities in memory. Transactions are optimistic: each one
// remembers the version of every entity it read and fails to commit with
// central.ErrConflict when any of them changed in the meantime.
type Store struct {
	lastId      int64
	profiles    map[central.UserId]profileRecord
	conferences map[central.ConferenceKey]conferenceRecord
	mutex       sync.RWMutex
}

var _ central.Store = (*Store)(nil)
var _ central.KeyAllocator = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		profiles:    map[central.UserId]profileRecord{},
		conferences: map[central.ConferenceKey]conferenceRecord{},
	}
}

func (s *Store) AllocateConferenceKey(ctx context.Context, organizer central.UserId) (central.ConferenceKey, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.lastId++
	return central.ConferenceKey{Organizer: organizer, Id: s.lastId}, nil
}

func (s *Store) ProfileByUserId(ctx context.Context, userId central.UserId) (central.Profile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	r, ok := s.profiles[userId]
	if !ok {
		return central.Profile{}, central.ErrProfileNotFound
	}
	return r.profile, nil
}

func (s *Store) ConferenceByKey(ctx context.Context, key central.ConferenceKey) (central.Conference, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	r, ok := s.conferences[key]
	if !ok {
		return central.Conference{}, central.ErrConferenceNotFound
	}
	return r.conference.Clone(), nil
}

func (s *Store) PutProfile(ctx context.Context, profile central.Profile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.putProfile(profile)
	return nil
}

func (s *Store) PutConference(ctx context.Context, conference central.Conference) error {
	if err := conference.CheckSeats(); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.putConference(conference)
	return nil
}

func (s *Store) putProfile(profile central.Profile) {
	s.profiles[profile.UserId] = profileRecord{
		profile: profile,
		version: s.profiles[profile.UserId].version + 1,
	}
}

func (s *Store) putConference(conference central.Conference) {
	s.conferences[conference.Key] = conferenceRecord{
		conference: conference.Clone(),
		version:    s.conferences[conference.Key].version + 1,
	}
}

func (s *Store) ConferencesByKeys(ctx context.Context, keys []central.ConferenceKey) ([]central.Conference, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	conferences := make([]central.Conference, 0, len(keys))
	for _, k := range keys {
		if r, ok := s.conferences[k]; ok {
			conferences = append(conferences, r.conference.Clone())
		}
	}
	return conferences, nil
}

func (s *Store) ConferencesByOrganizer(ctx context.Context, organizer central.UserId) ([]central.Conference, error) {
	s.mutex.RLock()
	conferences := make([]central.Conference, 0)
	for k, r := range s.conferences {
		if k.Organizer == organizer {
			conferences = append(conferences, r.conference.Clone())
		}
	}
	s.mutex.RUnlock()

	sort.Slice(conferences, func(i, j int) bool {
		if conferences[i].Name != conferences[j].Name {
			return conferences[i].Name < conferences[j].Name
		}
		return conferences[i].Key.Id < conferences[j].Key.Id
	})
	return conferences, nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx central.Tx) error) error {
	t := &tx{
		store:            s,
		profileReads:     map[central.UserId]uint64{},
		conferenceReads:  map[central.ConferenceKey]uint64{},
		profileWrites:    map[central.UserId]central.Profile{},
		conferenceWrites: map[central.ConferenceKey]central.Conference{},
	}
	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return t.commit()
}

// tx buffers writes until commit. Version 0 marks an entity read as absent.
type tx struct {
	store            *Store
	profileReads     map[central.UserId]uint64
	conferenceReads  map[central.ConferenceKey]uint64
	profileWrites    map[central.UserId]central.Profile
	conferenceWrites map[central.ConferenceKey]central.Conference
}

func (t *tx) ProfileByUserId(ctx context.Context, userId central.UserId) (central.Profile, error) {
	if p, ok := t.profileWrites[userId]; ok {
		return p, nil
	}
	t.store.mutex.RLock()
	r, ok := t.store.profiles[userId]
	t.store.mutex.RUnlock()

	if _, seen := t.profileReads[userId]; !seen {
		t.profileReads[userId] = r.version
	}
	if !ok {
		return central.Profile{}, central.ErrProfileNotFound
	}
	return r.profile, nil
}

func (t *tx) ConferenceByKey(ctx context.Context, key central.ConferenceKey) (central.Conference, error) {
	if c, ok := t.conferenceWrites[key]; ok {
		return c.Clone(), nil
	}
	t.store.mutex.RLock()
	r, ok := t.store.conferences[key]
	t.store.mutex.RUnlock()

	if _, seen := t.conferenceReads[key]; !seen {
		t.conferenceReads[key] = r.version
	}
	if !ok {
		return central.Conference{}, central.ErrConferenceNotFound
	}
	return r.conference.Clone(), nil
}

func (t *tx) PutProfile(ctx context.Context, profile central.Profile) error {
	t.profileWrites[profile.UserId] = profile
	return nil
}

func (t *tx) PutConference(ctx context.Context, conference central.Conference) error {
	if err := conference.CheckSeats(); err != nil {
		return err
	}
	t.conferenceWrites[conference.Key] = conference.Clone()
	return nil
}

func (t *tx) commit() error {
	s := t.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for userId, version := range t.profileReads {
		if s.profiles[userId].version != version {
			return fmt.Errorf("profile %s changed: %w", userId, central.ErrConflict)
		}
	}
	for key, version := range t.conferenceReads {
		if s.conferences[key].version != version {
			return fmt.Errorf("conference %s changed: %w", key, central.ErrConflict)
		}
	}

	for _, p := range t.profileWrites {
		s.putProfile(p)
	}
	for _, c := range t.conferenceWrites {
		s.putConference(c)
	}
	return nil
}
