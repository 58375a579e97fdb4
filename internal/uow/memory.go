package uow

import (
	"context"

	"bookstore/internal/repository/memory"
)

// Memory runs units of work against an in-memory store.
type Memory struct {
	store *memory.Store
	hooks Hooks
}

func NewMemory(store *memory.Store, hooks Hooks) *Memory {
	return &Memory{store: store, hooks: hooks}
}

func (m *Memory) Run(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return run(ctx, m.hooks, m.begin, fn)
}

func (m *Memory) begin(ctx context.Context) (handle, error) {
	s, err := m.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return memHandle{s}, nil
}

type memHandle struct {
	*memory.Session
}

func (h memHandle) commit(context.Context) error   { return h.Commit() }
func (h memHandle) rollback(context.Context) error { return h.Rollback() }
func (h memHandle) release()                       { h.Close() }
