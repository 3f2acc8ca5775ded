package persistent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/confcentral/central"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Store keeps profiles and conferences in postgres. Transactions run at
// serializable isolation and lock every row they read.
type Store struct {
	DB *bun.DB
}

var _ central.Store = (*Store)(nil)

func (s *Store) ProfileByUserId(ctx context.Context, userId central.UserId) (central.Profile, error) {
	return querier{db: s.DB}.ProfileByUserId(ctx, userId)
}

func (s *Store) ConferenceByKey(ctx context.Context, key central.ConferenceKey) (central.Conference, error) {
	return querier{db: s.DB}.ConferenceByKey(ctx, key)
}

func (s *Store) PutProfile(ctx context.Context, profile central.Profile) error {
	return querier{db: s.DB}.PutProfile(ctx, profile)
}

func (s *Store) PutConference(ctx context.Context, conference central.Conference) error {
	return querier{db: s.DB}.PutConference(ctx, conference)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx central.Tx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	err := s.DB.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, querier{db: tx, lock: true})
	})
	if isSerializationFailure(err) {
		return fmt.Errorf("%w: %s", central.ErrConflict, err)
	}
	return err
}

func (s *Store) ConferencesByKeys(ctx context.Context, keys []central.ConferenceKey) ([]central.Conference, error) {
	conferences := make([]central.Conference, 0, len(keys))
	if len(keys) == 0 {
		return conferences, nil
	}
	ids := make([]int64, len(keys))
	for i, k := range keys {
		ids[i] = k.Id
	}

	models := make([]Conference, 0, len(keys))
	err := s.DB.NewSelect().
		Model(&models).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select conferences: %w", err)
	}

	byKey := make(map[central.ConferenceKey]Conference, len(models))
	for _, m := range models {
		byKey[m.Key()] = m
	}
	for _, k := range keys {
		if m, ok := byKey[k]; ok {
			conferences = append(conferences, m.ToDomain())
		}
	}
	return conferences, nil
}

func (s *Store) ConferencesByOrganizer(ctx context.Context, organizer central.UserId) ([]central.Conference, error) {
	models := make([]Conference, 0)
	err := s.DB.NewSelect().
		Model(&models).
		Where("organizer_user_id = ?", string(organizer)).
		Order("name ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select conferences: %w", err)
	}

	conferences := make([]central.Conference, len(models))
	for i, m := range models {
		conferences[i] = m.ToDomain()
	}
	return conferences, nil
}

// querier runs entity queries on a db or on an open transaction.
type querier struct {
	db   bun.IDB
	lock bool
}

func (q querier) ProfileByUserId(ctx context.Context, userId central.UserId) (central.Profile, error) {
	profile := new(Profile)
	query := q.db.NewSelect().
		Model(profile).
		Where("user_id = ?", string(userId))
	if q.lock {
		query = query.For("UPDATE")
	}
	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return central.Profile{}, central.ErrProfileNotFound
		}
		return central.Profile{}, fmt.Errorf("select profile: %w", err)
	}
	return profile.ToDomain()
}

func (q querier) ConferenceByKey(ctx context.Context, key central.ConferenceKey) (central.Conference, error) {
	conference := new(Conference)
	query := q.db.NewSelect().
		Model(conference).
		Where("organizer_user_id = ?", string(key.Organizer)).
		Where("id = ?", key.Id)
	if q.lock {
		query = query.For("UPDATE")
	}
	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return central.Conference{}, central.ErrConferenceNotFound
		}
		return central.Conference{}, fmt.Errorf("select conference: %w", err)
	}
	return conference.ToDomain(), nil
}

func (q querier) PutProfile(ctx context.Context, profile central.Profile) error {
	_, err := q.db.NewInsert().
		Model(profileFromDomain(profile)).
		On("CONFLICT (user_id) DO UPDATE SET " +
			"display_name=EXCLUDED.display_name, main_email=EXCLUDED.main_email, " +
			"tee_shirt_size=EXCLUDED.tee_shirt_size, " +
			"conference_keys_to_attend=EXCLUDED.conference_keys_to_attend").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (q querier) PutConference(ctx context.Context, conference central.Conference) error {
	if err := conference.CheckSeats(); err != nil {
		return err
	}
	_, err := q.db.NewInsert().
		Model(conferenceFromDomain(conference)).
		On("CONFLICT (organizer_user_id, id) DO UPDATE SET " +
			"name=EXCLUDED.name, description=EXCLUDED.description, topics=EXCLUDED.topics, " +
			"city=EXCLUDED.city, start_date=EXCLUDED.start_date, end_date=EXCLUDED.end_date, " +
			"month=EXCLUDED.month, max_attendees=EXCLUDED.max_attendees, " +
			"seats_available=EXCLUDED.seats_available").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert conference: %w", err)
	}
	return nil
}

// serialization_failure and deadlock_detected
func isSerializationFailure(err error) bool {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return false
	}
	code := pgErr.Field('C')
	return code == "40001" || code == "40P01"
}
