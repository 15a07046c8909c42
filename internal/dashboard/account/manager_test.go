package account

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/royaltydesk/internal/collection"
	apperrors "github.com/louisbranch/royaltydesk/internal/platform/errors"
)

func userIDs(users []User) []collection.ID {
	out := make([]collection.ID, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestChangesValidate(t *testing.T) {
	t.Parallel()

	invalid := []Change{SetStatus{Status: "deleted"}, Credit{}, Debit{AmountCents: -5}}
	for _, change := range invalid {
		if err := change.Validate(); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("%T.Validate() = %v, want validation", change, err)
		}
		if apperrors.LocalizationKey(change.Validate()) == "" {
			t.Fatalf("%T.Validate() must carry a localization key", change)
		}
	}
}

func TestCreditAndDebitMirrorIntoSelection(t *testing.T) {
	t.Parallel()

	manager := loadedManager(t, newFakeGateway(sampleUsers()...))
	manager.Select(2)
	if _, err := manager.Credit(context.Background(), 2, 1500); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if _, err := manager.Debit(context.Background(), 2, 300); err != nil {
		t.Fatalf("Debit() error = %v", err)
	}
	current, ok := manager.Current()
	if !ok || current.BalanceCents != 1700 {
		t.Fatalf("Current() = %+v, %v; want balance 1700", current, ok)
	}
}

func TestInvalidChangeNeverReachesServer(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway(sampleUsers()...)
	manager := loadedManager(t, gateway)
	version := manager.Store().Version()
	if _, err := manager.Debit(context.Background(), 1, 0); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("Debit(0) error = %v, want validation", err)
	}
	if _, err := manager.Apply(context.Background(), 1, nil); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("Apply(nil) error = %v, want validation", err)
	}
	if gateway.calls != 0 || manager.Store().Version() != version {
		t.Fatalf("invalid change touched the server or store")
	}
}

func TestFailedStatusChangeRollsBack(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway(sampleUsers()...)
	gateway.err = apperrors.E(apperrors.KindConflict, "already suspended")
	manager := loadedManager(t, gateway)
	before, _ := manager.Store().Get(1)
	if _, err := manager.UpdateStatus(context.Background(), 1, StatusSuspended); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("UpdateStatus() error = %v, want conflict", err)
	}
	if after, _ := manager.Store().Get(1); after != before {
		t.Fatalf("Get(1) = %+v, want %+v", after, before)
	}
}

func TestConcurrentChangeOnSameUserIsBusy(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway(sampleUsers()...)
	gateway.entered = make(chan struct{})
	gateway.block = make(chan struct{})
	manager := loadedManager(t, gateway)

	done := make(chan error, 1)
	go func() {
		_, err := manager.UpdateStatus(context.Background(), 1, StatusBanned)
		done <- err
	}()
	<-gateway.entered

	if _, err := manager.Credit(context.Background(), 1, 100); !errors.Is(err, apperrors.ErrBusy) {
		t.Fatalf("Credit() during status change error = %v, want busy", err)
	}
	if err := manager.Delete(context.Background(), 1); !errors.Is(err, apperrors.ErrBusy) {
		t.Fatalf("Delete() during status change error = %v, want busy", err)
	}
	close(gateway.block)
	if err := <-done; err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if got, _ := manager.Store().Get(1); got.Status != StatusBanned {
		t.Fatalf("Status = %q, want banned", got.Status)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway(sampleUsers()...)
	manager := loadedManager(t, gateway)
	manager.Select(3)

	gateway.deleteErr = errors.New("connection reset")
	if err := manager.Delete(context.Background(), 3); !errors.Is(err, apperrors.ErrNetwork) {
		t.Fatalf("Delete() error = %v, want network", err)
	}
	if _, ok := manager.Current(); !ok {
		t.Fatalf("failed delete must keep the user")
	}

	gateway.deleteErr = nil
	if err := manager.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := manager.Current(); ok {
		t.Fatalf("Current() after Delete must be none")
	}
	if err := manager.Delete(context.Background(), 3); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("Delete(again) error = %v, want not found", err)
	}
}

func TestManagerView(t *testing.T) {
	t.Parallel()

	manager := loadedManager(t, newFakeGateway(sampleUsers()...))
	tests := []struct {
		filter, orderBy string
		want            []collection.ID
	}{
		{filter: `status = "active"`, orderBy: "balance desc", want: []collection.ID{1, 3}},
		{filter: "", orderBy: "name", want: []collection.ID{1, 2, 3}},
		{filter: `role = "artist" OR role = "admin"`, orderBy: "email desc", want: []collection.ID{3, 2}},
	}
	for _, tc := range tests {
		got, err := manager.View(tc.filter, tc.orderBy)
		if err != nil {
			t.Fatalf("View(%q, %q) error = %v", tc.filter, tc.orderBy, err)
		}
		if diff := cmp.Diff(tc.want, userIDs(got)); diff != "" {
			t.Fatalf("View(%q, %q) mismatch (-want +got):\n%s", tc.filter, tc.orderBy, diff)
		}
	}
}
