package central

import "context"

// Tx is a handle for reading and writing entities. Writes made through the
// handle passed to Store.RunInTx become visible together on commit.
type Tx interface {
	ProfileByUserId(ctx context.Context, userId UserId) (Profile, error)

	ConferenceByKey(ctx context.Context, key ConferenceKey) (Conference, error)

	PutProfile(ctx context.Context, profile Profile) error

	PutConference(ctx context.Context, conference Conference) error
}

type Store interface {
	// Point reads and writes outside of any transaction.
	Tx

	// Run fn in a transaction. An error returned from fn rolls back every
	// write made through tx. Returns an error wrapping ErrConflict when the
	// transaction raced a concurrent one over the same entities.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// Conferences in the order of keys. Unknown keys are skipped.
	ConferencesByKeys(ctx context.Context, keys []ConferenceKey) ([]Conference, error)

	// Conferences nested under the organizer profile, ordered by name.
	ConferencesByOrganizer(ctx context.Context, organizer UserId) ([]Conference, error)
}
