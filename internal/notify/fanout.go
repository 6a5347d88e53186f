package notify

import (
	"context"
	"fmt"
)

// Creator is the subset of the store used by the fan-out.
type Creator interface {
	Create(ctx context.Context, userID int64, in Input) (*Notification, error)
}

// AdminDirectory resolves the broadcast audience.
type AdminDirectory interface {
	AdminIDs(ctx context.Context) ([]int64, error)
}

// Recorder counts delivered notifications by type. Optional.
type Recorder interface {
	IncNotification(typ string)
}

// Fanout delivers one event to an audience: either every admin (Broadcast) or
// exactly one user (Target). Audience resolution lives here so the moderation
// engine stays decoupled from how admins are looked up.
type Fanout struct {
	store   Creator
	admins  AdminDirectory
	metrics Recorder
}

// NewFanout creates a Fanout over the given store and admin directory.
func NewFanout(store Creator, admins AdminDirectory) *Fanout {
	return &Fanout{store: store, admins: admins}
}

// SetMetrics attaches a notification counter to the fan-out.
func (f *Fanout) SetMetrics(r Recorder) {
	f.metrics = r
}

func (f *Fanout) count(typ string) {
	if f.metrics != nil {
		f.metrics.IncNotification(typ)
	}
}

// Broadcast creates one notification per admin user. An empty admin set is
// not an error; nothing is created.
func (f *Fanout) Broadcast(ctx context.Context, in Input) error {
	ids, err := f.admins.AdminIDs(ctx)
	if err != nil {
		return fmt.Errorf("resolving admin audience: %w", err)
	}
	for _, id := range ids {
		if _, err := f.store.Create(ctx, id, in); err != nil {
			return fmt.Errorf("notifying admin %d: %w", id, err)
		}
		f.count(in.Type)
	}
	return nil
}

// Target creates exactly one notification for userID. A zero user id means
// the event has no linked recipient and is silently skipped.
func (f *Fanout) Target(ctx context.Context, userID int64, in Input) error {
	if userID == 0 {
		return nil
	}
	if _, err := f.store.Create(ctx, userID, in); err != nil {
		return fmt.Errorf("notifying user %d: %w", userID, err)
	}
	f.count(in.Type)
	return nil
}
