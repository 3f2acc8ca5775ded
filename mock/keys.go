package mock

import (
	"context"

	"github.com/confcentral/central"
)

type KeyAllocator struct {
	AllocateConferenceKeyFn func(ctx context.Context, organizer central.UserId) (central.ConferenceKey, error)
}

var _ central.KeyAllocator = KeyAllocator{}

func (a KeyAllocator) AllocateConferenceKey(ctx context.Context, organizer central.UserId) (central.ConferenceKey, error) {
	return a.AllocateConferenceKeyFn(ctx, organizer)
}
