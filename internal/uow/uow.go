package uow

import (
	"context"

	"github.com/kisan-sangraha/sangraha-go/internal/repository"
)

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

// UoW represents a unit of work over the injected store.
type UoW struct {
	store repository.Store
}

func New(store repository.Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn inside a transaction. Reads and writes made through tx commit
// atomically; any error rolls them all back and no hook runs. After a
// successful commit, it executes the registered after-commit hooks (cache
// invalidation, event publishing) in registration order.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Store, after func(AfterCommit)) error,
) error {
	var hooks []AfterCommit

	err := u.store.RunTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return fn(ctx, tx, func(h AfterCommit) {
			hooks = append(hooks, h)
		})
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
