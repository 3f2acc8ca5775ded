package persistent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/confcentral/central"
	"github.com/tidwall/buntdb"
)

const (
	profilePrefix    = "profile:"
	conferencePrefix = "conference:"
	conferenceSeqKey = "seq:conference"
)

// KvStore keeps profiles and conferences as json documents in buntdb.
// Buntdb allows a single writable transaction at a time, so transactions
// never conflict.
type KvStore struct {
	Buntdb *buntdb.DB
}

var _ central.Store = (*KvStore)(nil)
var _ central.KeyAllocator = (*KvStore)(nil)

func (s *KvStore) CreateIndexes() error {
	err := s.Buntdb.CreateIndex("conferences", conferencePrefix+"*", buntdb.IndexJSON("name"))
	if err != nil && !errors.Is(err, buntdb.ErrIndexExists) {
		return fmt.Errorf("create conferences index: %w", err)
	}
	return nil
}

func (s *KvStore) ProfileByUserId(ctx context.Context, userId central.UserId) (central.Profile, error) {
	var profile central.Profile
	err := s.Buntdb.View(func(tx *buntdb.Tx) error {
		var err error
		profile, err = kvTx{tx}.ProfileByUserId(ctx, userId)
		return err
	})
	return profile, err
}

func (s *KvStore) ConferenceByKey(ctx context.Context, key central.ConferenceKey) (central.Conference, error) {
	var conference central.Conference
	err := s.Buntdb.View(func(tx *buntdb.Tx) error {
		var err error
		conference, err = kvTx{tx}.ConferenceByKey(ctx, key)
		return err
	})
	return conference, err
}

func (s *KvStore) PutProfile(ctx context.Context, profile central.Profile) error {
	return s.Buntdb.Update(func(tx *buntdb.Tx) error {
		return kvTx{tx}.PutProfile(ctx, profile)
	})
}

func (s *KvStore) PutConference(ctx context.Context, conference central.Conference) error {
	return s.Buntdb.Update(func(tx *buntdb.Tx) error {
		return kvTx{tx}.PutConference(ctx, conference)
	})
}

func (s *KvStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx central.Tx) error) error {
	return s.Buntdb.Update(func(tx *buntdb.Tx) error {
		return fn(ctx, kvTx{tx})
	})
}

func (s *KvStore) ConferencesByKeys(ctx context.Context, keys []central.ConferenceKey) ([]central.Conference, error) {
	conferences := make([]central.Conference, 0, len(keys))
	err := s.Buntdb.View(func(tx *buntdb.Tx) error {
		for _, k := range keys {
			c, err := kvTx{tx}.ConferenceByKey(ctx, k)
			if errors.Is(err, central.ErrConferenceNotFound) {
				continue
			} else if err != nil {
				return err
			}
			conferences = append(conferences, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bunt view: %w", err)
	}
	return conferences, nil
}

func (s *KvStore) ConferencesByOrganizer(ctx context.Context, organizer central.UserId) ([]central.Conference, error) {
	conferences := make([]central.Conference, 0)
	var listErr error
	err := s.Buntdb.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("conferences", func(key, value string) bool {
			var conference Conference
			if err := json.Unmarshal([]byte(value), &conference); err != nil {
				listErr = fmt.Errorf("deserialize conference %s: %w", key, err)
				return false
			}
			if conference.OrganizerUserId == string(organizer) {
				conferences = append(conferences, conference.ToDomain())
			}
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("ascend conferences: %w", err)
	}
	if listErr != nil {
		return nil, listErr
	}

	// the index orders by name only
	sort.SliceStable(conferences, func(i, j int) bool {
		if conferences[i].Name != conferences[j].Name {
			return conferences[i].Name < conferences[j].Name
		}
		return conferences[i].Key.Id < conferences[j].Key.Id
	})
	return conferences, nil
}

func (s *KvStore) AllocateConferenceKey(ctx context.Context,
	organizer central.UserId) (central.ConferenceKey, error) {
	var id int64
	err := s.Buntdb.Update(func(tx *buntdb.Tx) error {
		last, err := tx.Get(conferenceSeqKey)
		if err != nil && !errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("get sequence: %w", err)
		}
		if last != "" {
			id, err = strconv.ParseInt(last, 10, 64)
			if err != nil {
				return fmt.Errorf("parse sequence: %w", err)
			}
		}
		id++
		_, _, err = tx.Set(conferenceSeqKey, strconv.FormatInt(id, 10), nil)
		return err
	})
	if err != nil {
		return central.ConferenceKey{}, fmt.Errorf("bunt update: %w", err)
	}
	return central.ConferenceKey{Organizer: organizer, Id: id}, nil
}

type kvTx struct {
	tx *buntdb.Tx
}

func (t kvTx) ProfileByUserId(ctx context.Context, userId central.UserId) (central.Profile, error) {
	serialized, err := t.tx.Get(profilePrefix + string(userId))
	if errors.Is(err, buntdb.ErrNotFound) {
		return central.Profile{}, central.ErrProfileNotFound
	} else if err != nil {
		return central.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	var profile Profile
	if err := json.Unmarshal([]byte(serialized), &profile); err != nil {
		return central.Profile{}, fmt.Errorf("deserialize profile: %w", err)
	}
	return profile.ToDomain()
}

func (t kvTx) ConferenceByKey(ctx context.Context, key central.ConferenceKey) (central.Conference, error) {
	serialized, err := t.tx.Get(conferencePrefix + key.String())
	if errors.Is(err, buntdb.ErrNotFound) {
		return central.Conference{}, central.ErrConferenceNotFound
	} else if err != nil {
		return central.Conference{}, fmt.Errorf("get conference: %w", err)
	}
	var conference Conference
	if err := json.Unmarshal([]byte(serialized), &conference); err != nil {
		return central.Conference{}, fmt.Errorf("deserialize conference: %w", err)
	}
	return conference.ToDomain(), nil
}

func (t kvTx) PutProfile(ctx context.Context, profile central.Profile) error {
	serialized, err := json.Marshal(profileFromDomain(profile))
	if err != nil {
		return fmt.Errorf("serialize profile: %w", err)
	}
	if _, _, err := t.tx.Set(profilePrefix+string(profile.UserId), string(serialized), nil); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}

func (t kvTx) PutConference(ctx context.Context, conference central.Conference) error {
	if err := conference.CheckSeats(); err != nil {
		return err
	}
	serialized, err := json.Marshal(conferenceFromDomain(conference))
	if err != nil {
		return fmt.Errorf("serialize conference: %w", err)
	}
	if _, _, err := t.tx.Set(conferencePrefix+conference.Key.String(), string(serialized), nil); err != nil {
		return fmt.Errorf("set conference: %w", err)
	}
	return nil
}
