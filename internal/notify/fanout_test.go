package notify

import (
	"context"
	"errors"
	"testing"
)

type fakeCreator struct {
	created []struct {
		userID int64
		in     Input
	}
	err error
}

func (f *fakeCreator) Create(_ context.Context, userID int64, in Input) (*Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, struct {
		userID int64
		in     Input
	}{userID, in})
	return &Notification{ID: int64(len(f.created)), UserID: userID, Type: in.Type}, nil
}

type fakeAdmins struct {
	ids []int64
	err error
}

func (f *fakeAdmins) AdminIDs(context.Context) ([]int64, error) {
	return f.ids, f.err
}

func TestBroadcast_OnePerAdmin(t *testing.T) {
	store := &fakeCreator{}
	fanout := NewFanout(store, &fakeAdmins{ids: []int64{1, 2, 3}})

	in := Input{Type: TypeTeamPending, Title: "Nova Equipa Pendente", Message: "x", RelatedID: 9}
	if err := fanout.Broadcast(context.Background(), in); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	if len(store.created) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(store.created))
	}
	for i, want := range []int64{1, 2, 3} {
		if store.created[i].userID != want {
			t.Errorf("notification %d addressed to %d, want %d", i, store.created[i].userID, want)
		}
		if store.created[i].in.Type != TypeTeamPending {
			t.Errorf("notification %d has type %q", i, store.created[i].in.Type)
		}
	}
}

func TestBroadcast_NoAdmins(t *testing.T) {
	store := &fakeCreator{}
	fanout := NewFanout(store, &fakeAdmins{})

	if err := fanout.Broadcast(context.Background(), Input{Type: TypeTeamPending}); err != nil {
		t.Fatalf("empty admin set should not be an error: %v", err)
	}
	if len(store.created) != 0 {
		t.Errorf("expected no notifications, got %d", len(store.created))
	}
}

func TestBroadcast_DirectoryError(t *testing.T) {
	store := &fakeCreator{}
	fanout := NewFanout(store, &fakeAdmins{err: errors.New("db down")})

	if err := fanout.Broadcast(context.Background(), Input{Type: TypeTeamPending}); err == nil {
		t.Fatal("expected error when the admin directory fails")
	}
}

func TestTarget_OneUser(t *testing.T) {
	store := &fakeCreator{}
	fanout := NewFanout(store, &fakeAdmins{})

	in := Input{Type: TypeTeamApproved, Title: "Equipa Aprovada", RelatedID: 4}
	if err := fanout.Target(context.Background(), 42, in); err != nil {
		t.Fatalf("Target failed: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", len(store.created))
	}
	if store.created[0].userID != 42 {
		t.Errorf("expected recipient 42, got %d", store.created[0].userID)
	}
}

func TestTarget_ZeroUserSkipped(t *testing.T) {
	store := &fakeCreator{}
	fanout := NewFanout(store, &fakeAdmins{})

	if err := fanout.Target(context.Background(), 0, Input{Type: TypeStreamerVerified}); err != nil {
		t.Fatalf("absent recipient should be a silent skip: %v", err)
	}
	if len(store.created) != 0 {
		t.Errorf("expected no notifications, got %d", len(store.created))
	}
}

func TestTarget_CreateError(t *testing.T) {
	store := &fakeCreator{err: errors.New("insert failed")}
	fanout := NewFanout(store, &fakeAdmins{})

	if err := fanout.Target(context.Background(), 7, Input{Type: TypeTeamRejected}); err == nil {
		t.Fatal("expected error when creation fails")
	}
}
