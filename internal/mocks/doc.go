// Package mocks provides shared test doubles for the store and auth
// interfaces.
//
// Each mock keeps a small in-memory default behaviour and exposes function
// fields that override it per method:
//
//	users := mocks.NewMockUserStore()
//	users.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
//	    return nil, store.ErrUserNotFound
//	}
//
// WithTx returns the mock itself, so code running inside
// store.RunInTransaction sees the same data.
package mocks
