package inmem

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/confcentral/central"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"
)

func testConference(t *testing.T, store *Store, organizer central.UserId, name string, seats int) central.Conference {
	key, err := store.AllocateConferenceKey(context.Background(), organizer)
	if err != nil {
		t.Fatal(err)
	}
	c, err := central.NewConference(key, central.ConferenceForm{Name: name, MaxAttendees: seats})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.PutConference(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestStorePointReadsAndWrites(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := NewStore()

	_, err := store.ProfileByUserId(ctx, "u-1")
	assert.ErrorIs(err, central.ErrProfileNotFound)
	_, err = store.ConferenceByKey(ctx, central.ConferenceKey{Organizer: "u-1", Id: 1})
	assert.ErrorIs(err, central.ErrConferenceNotFound)

	profile := central.NewProfile(central.Identity{UserId: "u-1", Email: "a@b.c"})
	if !assert.NoError(store.PutProfile(ctx, profile)) {
		return
	}
	selected, err := store.ProfileByUserId(ctx, "u-1")
	if assert.NoError(err) {
		assert.Equal(profile, selected)
	}

	conference := testConference(t, store, "u-1", "Go", 5)
	conference.Topics = []string{"mutated"}
	stored, err := store.ConferenceByKey(ctx, conference.Key)
	if assert.NoError(err) {
		assert.Nil(stored.Topics)
	}

	conference.SeatsAvailable = 6
	assert.ErrorIs(store.PutConference(ctx, conference), central.ErrInvalidSeats)
}

func TestStoreQueries(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := NewStore()

	b := testConference(t, store, "org", "Beta", 1)
	a := testConference(t, store, "org", "Alpha", 1)
	testConference(t, store, "other", "Aaa", 1)
	a2 := testConference(t, store, "org", "Alpha", 1)

	byOrganizer, err := store.ConferencesByOrganizer(ctx, "org")
	if assert.NoError(err) && assert.Len(byOrganizer, 3) {
		assert.Equal(a.Key, byOrganizer[0].Key)
		assert.Equal(a2.Key, byOrganizer[1].Key)
		assert.Equal(b.Key, byOrganizer[2].Key)
	}

	none, err := store.ConferencesByOrganizer(ctx, "nobody")
	if assert.NoError(err) {
		assert.Empty(none)
	}

	missing := central.ConferenceKey{Organizer: "org", Id: 100}
	byKeys, err := store.ConferencesByKeys(ctx, []central.ConferenceKey{a2.Key, missing, b.Key})
	if assert.NoError(err) && assert.Len(byKeys, 2) {
		assert.Equal(a2.Key, byKeys[0].Key)
		assert.Equal(b.Key, byKeys[1].Key)
	}
}

func TestStoreRunInTxCommitsTogether(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := NewStore()
	conference := testConference(t, store, "org", "Go", 3)

	err := store.RunInTx(ctx, func(ctx context.Context, tx central.Tx) error {
		profile := central.NewProfile(central.Identity{UserId: "u-1", Email: "a@b.c"})
		profile.ConferenceKeysToAttend.Add(conference.Key)
		if err := tx.PutProfile(ctx, profile); err != nil {
			return err
		}

		// buffered writes are visible inside the transaction only
		inTx, err := tx.ProfileByUserId(ctx, "u-1")
		if err != nil {
			return err
		}
		if !inTx.ConferenceKeysToAttend.Contains(conference.Key) {
			return errors.New("buffered profile not visible")
		}
		if _, err := store.ProfileByUserId(ctx, "u-1"); !errors.Is(err, central.ErrProfileNotFound) {
			return errors.New("uncommitted profile visible outside")
		}

		c, err := tx.ConferenceByKey(ctx, conference.Key)
		if err != nil {
			return err
		}
		if err := c.BookSeats(1); err != nil {
			return err
		}
		return tx.PutConference(ctx, c)
	})
	if !assert.NoError(err) {
		return
	}

	profile, err := store.ProfileByUserId(ctx, "u-1")
	if assert.NoError(err) {
		assert.True(profile.ConferenceKeysToAttend.Contains(conference.Key))
	}
	stored, err := store.ConferenceByKey(ctx, conference.Key)
	if assert.NoError(err) {
		assert.Equal(2, stored.SeatsAvailable)
	}
}

func TestStoreRunInTxRollsBack(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := NewStore()
	conference := testConference(t, store, "org", "Go", 3)

	errBody := errors.New("body failed")
	err := store.RunInTx(ctx, func(ctx context.Context, tx central.Tx) error {
		c, err := tx.ConferenceByKey(ctx, conference.Key)
		if err != nil {
			return err
		}
		c.SeatsAvailable = 0
		if err := tx.PutConference(ctx, c); err != nil {
			return err
		}
		return errBody
	})
	assert.ErrorIs(err, errBody)

	stored, err := store.ConferenceByKey(ctx, conference.Key)
	if assert.NoError(err) {
		assert.Equal(3, stored.SeatsAvailable)
	}

	canceled, cancel := context.WithCancel(ctx)
	err = store.RunInTx(canceled, func(ctx context.Context, tx central.Tx) error {
		cancel()
		c, err := tx.ConferenceByKey(ctx, conference.Key)
		if err != nil {
			return err
		}
		c.SeatsAvailable = 1
		return tx.PutConference(ctx, c)
	})
	assert.ErrorIs(err, context.Canceled)

	stored, err = store.ConferenceByKey(ctx, conference.Key)
	if assert.NoError(err) {
		assert.Equal(3, stored.SeatsAvailable)
	}
}

func TestStoreRunInTxDetectsConflicts(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := NewStore()
	conference := testConference(t, store, "org", "Go", 3)

	// a conference read raced by a committed write
	err := store.RunInTx(ctx, func(ctx context.Context, tx central.Tx) error {
		c, err := tx.ConferenceByKey(ctx, conference.Key)
		if err != nil {
			return err
		}
		concurrent := c
		concurrent.SeatsAvailable = 2
		if err := store.PutConference(ctx, concurrent); err != nil {
			return err
		}
		c.SeatsAvailable = 0
		return tx.PutConference(ctx, c)
	})
	assert.ErrorIs(err, central.ErrConflict)

	stored, err := store.ConferenceByKey(ctx, conference.Key)
	if assert.NoError(err) {
		assert.Equal(2, stored.SeatsAvailable)
	}

	// a profile read as absent, created concurrently
	err = store.RunInTx(ctx, func(ctx context.Context, tx central.Tx) error {
		_, err := tx.ProfileByUserId(ctx, "u-1")
		if !errors.Is(err, central.ErrProfileNotFound) {
			return errors.New("profile should be absent")
		}
		concurrent := central.NewProfile(central.Identity{UserId: "u-1", Email: "concurrent@b.c"})
		if err := store.PutProfile(ctx, concurrent); err != nil {
			return err
		}
		return tx.PutProfile(ctx, central.NewProfile(central.Identity{UserId: "u-1", Email: "tx@b.c"}))
	})
	assert.ErrorIs(err, central.ErrConflict)

	profile, err := store.ProfileByUserId(ctx, "u-1")
	if assert.NoError(err) {
		assert.Equal(central.Email("concurrent@b.c"), profile.MainEmail)
	}
}

func TestStoreAllocateConferenceKeyUnique(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := NewStore()

	const n = 64
	var mutex sync.Mutex
	seen := map[int64]bool{}
	var group errgroup.Group
	for i := 0; i < n; i++ {
		group.Go(func() error {
			key, err := store.AllocateConferenceKey(ctx, "org")
			if err != nil {
				return err
			}
			mutex.Lock()
			defer mutex.Unlock()
			if seen[key.Id] {
				return errors.New("duplicate id")
			}
			seen[key.Id] = true
			return nil
		})
	}
	if assert.NoError(group.Wait()) {
		assert.Len(seen, n)
	}
}
