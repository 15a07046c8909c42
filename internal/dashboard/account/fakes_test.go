package account

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/louisbranch/royaltydesk/internal/collection"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeGateway echoes changes back as the server version unless an error is
// injected. block, when set, holds UpdateStatus until closed.
type fakeGateway struct {
	mu        sync.Mutex
	users     map[collection.ID]User
	order     []collection.ID
	err       error
	deleteErr error
	entered   chan struct{}
	block     chan struct{}
	calls     int
}

var _ Gateway = (*fakeGateway)(nil)

func newFakeGateway(users ...User) *fakeGateway {
	f := &fakeGateway{users: make(map[collection.ID]User)}
	for _, u := range users {
		f.users[u.ID] = u
		f.order = append(f.order, u.ID)
	}
	return f
}

func (f *fakeGateway) ListUsers(context.Context, url.Values) ([]User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]User, 0, len(f.order))
	for _, id := range f.order {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeGateway) UpdateStatus(_ context.Context, id collection.ID, status string) (User, error) {
	f.mu.Lock()
	entered, block := f.entered, f.block
	f.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if block != nil {
		<-block
	}
	return f.update(id, func(u User) User {
		u.Status = status
		return u
	})
}

func (f *fakeGateway) AdjustBalance(_ context.Context, id collection.ID, delta int64) (User, error) {
	return f.update(id, func(u User) User {
		u.BalanceCents += delta
		return u
	})
}

func (f *fakeGateway) DeleteUser(_ context.Context, id collection.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.users, id)
	return nil
}

func (f *fakeGateway) update(id collection.ID, change func(User) User) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return User{}, f.err
	}
	u := change(f.users[id])
	f.users[id] = u
	return u, nil
}

func loadedManager(t *testing.T, gateway *fakeGateway) *Manager {
	t.Helper()
	manager := NewManager(gateway)
	if err := manager.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	return manager
}

func sampleUsers() []User {
	return []User{
		{ID: 1, Email: "ana@example.com", Name: "Ana", Role: RoleInvestor, Status: StatusActive, BalanceCents: 10000},
		{ID: 2, Email: "bo@example.com", Name: "bo", Role: RoleArtist, Status: StatusSuspended, BalanceCents: 500},
		{ID: 3, Email: "cy@example.com", Name: "Cy", Role: RoleAdmin, Status: StatusActive, BalanceCents: 0},
	}
}
