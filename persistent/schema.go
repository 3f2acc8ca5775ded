package persistent

import (
	"context"
	"fmt"
	"reflect"

	"github.com/confcentral/central"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

const conferenceIdSequence = "conference_id_seq"

// CreateSchema creates tables and sequences missing in db.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, "CREATE SEQUENCE IF NOT EXISTS "+conferenceIdSequence)
	if err != nil {
		return fmt.Errorf("create sequence: %w", err)
	}

	models := []interface{}{
		(*Profile)(nil),
		(*Conference)(nil),
	}
	for _, model := range models {
		modelType := reflect.TypeOf(model)
		logrus.WithField("model", modelType).Debugln("Creating table.")
		_, err := db.NewCreateTable().IfNotExists().Model(model).Exec(ctx)
		if err != nil {
			return fmt.Errorf("create table %s: %w", modelType, err)
		}
	}
	return nil
}

// SequenceAllocator hands out conference ids from a postgres sequence.
type SequenceAllocator struct {
	DB *bun.DB
}

var _ central.KeyAllocator = (*SequenceAllocator)(nil)

func (a *SequenceAllocator) AllocateConferenceKey(ctx context.Context,
	organizer central.UserId) (central.ConferenceKey, error) {
	var id int64
	err := a.DB.QueryRowContext(ctx, "SELECT nextval('"+conferenceIdSequence+"')").Scan(&id)
	if err != nil {
		return central.ConferenceKey{}, fmt.Errorf("next conference id: %w", err)
	}
	return central.ConferenceKey{Organizer: organizer, Id: id}, nil
}
