package booking

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/confcentral/central"
	"github.com/confcentral/central/inmem"
	"github.com/confcentral/central/persistent"
	"github.com/confcentral/central/pgdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/buntdb"
	"golang.org/x/sync/errgroup"
	"pgregory.net/rapid"
)

type bookingBackend struct {
	store central.Store
	keys  central.KeyAllocator
}

func openTestKv(t *testing.T) bookingBackend {
	bdb, err := buntdb.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { bdb.Close() })
	kv := &persistent.KvStore{Buntdb: bdb}
	if err := kv.CreateIndexes(); err != nil {
		t.Fatal(err)
	}
	return bookingBackend{store: kv, keys: kv}
}

func openTestPg(t *testing.T) bookingBackend {
	if testing.Short() {
		t.SkipNow()
	}
	if pgdb.TestEnvDsn() == "" {
		t.Skip("PGDB_DSN not set, run through testenv")
	}
	ctx := context.Background()
	db, err := pgdb.OpenTest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := persistent.CreateSchema(ctx, db); err != nil {
		t.Fatal(err)
	}
	return bookingBackend{store: &persistent.Store{DB: db}, keys: &persistent.SequenceAllocator{DB: db}}
}

func TestConcurrentRegistrations(t *testing.T) {
	store := inmem.NewStore()
	testConcurrentRegistrations(t, bookingBackend{store: store, keys: store})
}

func TestKvConcurrentRegistrations(t *testing.T) {
	testConcurrentRegistrations(t, openTestKv(t))
}

func TestPgConcurrentRegistrations(t *testing.T) {
	testConcurrentRegistrations(t, openTestPg(t))
}

// Exactly min(attendees, seats) concurrent registrations succeed, the rest
// are refused for lack of seats.
func testConcurrentRegistrations(t *testing.T, backend bookingBackend) {
	cases := []struct {
		attendees int
		seats     int
	}{
		{attendees: 2, seats: 1},
		{attendees: 10, seats: 3},
		{attendees: 5, seats: 5},
		{attendees: 3, seats: 10},
		{attendees: 12, seats: 0},
	}

	for _, useCase := range cases {
		useCase := useCase
		t.Run(fmt.Sprintf("%d_for_%d", useCase.attendees, useCase.seats), func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			service := NewService(backend.store, backend.keys, testRetry)
			conference := createTestConference(t, service, grace, useCase.seats)
			websafeKey := conference.Key.String()
			run := uuid.NewString()

			var successes, noSeats int64
			var group errgroup.Group
			for i := 0; i < useCase.attendees; i++ {
				identity := central.Identity{
					UserId: central.UserId(fmt.Sprintf("u-%s-%d", run, i)),
					Email:  central.Email(fmt.Sprintf("user%d@example.com", i)),
				}
				group.Go(func() error {
					outcome, err := service.Coordinator.Register(ctx, identity, websafeKey)
					switch outcome {
					case OutcomeSuccess:
						atomic.AddInt64(&successes, 1)
					case OutcomeNoSeats:
						atomic.AddInt64(&noSeats, 1)
					default:
						return fmt.Errorf("unexpected outcome %s: %w", outcome, err)
					}
					return nil
				})
			}
			if !assert.NoError(group.Wait()) {
				return
			}

			expected := useCase.attendees
			if useCase.seats < expected {
				expected = useCase.seats
			}
			assert.Equal(int64(expected), successes)
			assert.Equal(int64(useCase.attendees-expected), noSeats)

			stored, err := backend.store.ConferenceByKey(ctx, conference.Key)
			if assert.NoError(err) {
				assert.Equal(useCase.seats-expected, stored.SeatsAvailable)
			}
		})
	}
}

// Random sequences of registrations checked against a simple model.
func TestBookingMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		store := inmem.NewStore()
		service := NewService(store, store, testRetry)

		identities := []central.Identity{
			{UserId: "u-0", Email: "zero@example.com"},
			{UserId: "u-1", Email: "one@example.com"},
			{UserId: "u-2", Email: "two@example.com"},
		}
		organizer := central.Identity{UserId: "u-org", Email: "org@example.com"}

		var conferences []central.Conference
		seats := map[central.ConferenceKey]int{}
		for i := 0; i < 2; i++ {
			c, err := service.CreateConference(ctx, organizer, central.ConferenceForm{
				Name:         fmt.Sprintf("c%d", i),
				MaxAttendees: rapid.IntRange(0, 3).Draw(t, "seats"),
			})
			if err != nil {
				t.Fatal(err)
			}
			conferences = append(conferences, c)
			seats[c.Key] = c.MaxAttendees
		}
		registered := map[central.UserId]map[central.ConferenceKey]bool{}
		for _, identity := range identities {
			registered[identity.UserId] = map[central.ConferenceKey]bool{}
		}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for step := 0; step < steps; step++ {
			identity := rapid.SampledFrom(identities).Draw(t, "identity")
			conference := rapid.SampledFrom(conferences).Draw(t, "conference")
			key := conference.Key

			var want, got Outcome
			var err error
			if rapid.Bool().Draw(t, "register") {
				switch {
				case registered[identity.UserId][key]:
					want = OutcomeAlreadyRegistered
				case seats[key] == 0:
					want = OutcomeNoSeats
				default:
					want = OutcomeSuccess
					registered[identity.UserId][key] = true
					seats[key]--
				}
				got, err = service.Coordinator.Register(ctx, identity, key.String())
			} else {
				if registered[identity.UserId][key] {
					want = OutcomeSuccess
					delete(registered[identity.UserId], key)
					seats[key]++
				} else {
					want = OutcomeNotRegistered
				}
				got, err = service.Coordinator.Unregister(ctx, identity, key.String())
			}
			if got != want {
				t.Fatalf("step %d: got %s (%v), want %s", step, got, err, want)
			}
			if (err == nil) != (got == OutcomeSuccess) {
				t.Fatalf("step %d: outcome %s with error %v", step, got, err)
			}

			checkInvariants(t, store, conferences, identities, seats, registered)
		}
	})
}

func checkInvariants(t *rapid.T, store *inmem.Store, conferences []central.Conference,
	identities []central.Identity, seats map[central.ConferenceKey]int,
	registered map[central.UserId]map[central.ConferenceKey]bool) {
	ctx := context.Background()

	for _, c := range conferences {
		stored, err := store.ConferenceByKey(ctx, c.Key)
		if err != nil {
			t.Fatal(err)
		}
		if stored.SeatsAvailable < 0 || stored.SeatsAvailable > stored.MaxAttendees {
			t.Fatalf("seats out of range: %d/%d", stored.SeatsAvailable, stored.MaxAttendees)
		}
		if stored.SeatsAvailable != seats[c.Key] {
			t.Fatalf("seats %d, want %d", stored.SeatsAvailable, seats[c.Key])
		}
	}

	for _, identity := range identities {
		profile, err := store.ProfileByUserId(ctx, identity.UserId)
		if err != nil {
			if len(registered[identity.UserId]) > 0 {
				t.Fatalf("profile of %s missing: %v", identity.UserId, err)
			}
			continue
		}
		keys := profile.ConferenceKeysToAttend.Slice()
		seen := map[central.ConferenceKey]bool{}
		for _, k := range keys {
			if seen[k] {
				t.Fatalf("duplicate key %s in profile %s", k, identity.UserId)
			}
			seen[k] = true
			if !registered[identity.UserId][k] {
				t.Fatalf("profile %s lists %s", identity.UserId, k)
			}
		}
		if len(keys) != len(registered[identity.UserId]) {
			t.Fatalf("profile %s lists %d keys, want %d", identity.UserId, len(keys), len(registered[identity.UserId]))
		}
	}
}
