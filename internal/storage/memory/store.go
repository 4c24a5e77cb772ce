// Package memory provides an in-process implementation of every repository plus a TxManager.
// It backs the "memory" database driver for local development and the scenario tests.
//
// A transaction holds the store lock from start to finish, so transactions are serialized. When
// the transaction function fails, the state captured at its start is restored.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	outboxDomain "github.com/allisson/teamvault/internal/outbox/domain"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
)

type txKey struct{}

type grantKey struct {
	itemID   uuid.UUID
	targetID uuid.UUID
}

type memberKey struct {
	groupID uuid.UUID
	userID  uuid.UUID
}

// state is everything a transaction may need to roll back.
type state struct {
	items       map[uuid.UUID]vaultDomain.VaultItem
	userGrants  map[grantKey]accessDomain.Grant
	groupGrants map[grantKey]accessDomain.Grant
	groups      map[uuid.UUID]accessDomain.Group
	members     map[memberKey]accessDomain.Membership
	history     []historyDomain.HistoryEntry
	outbox      []outboxDomain.OutboxEvent
}

func newState() state {
	return state{
		items:       make(map[uuid.UUID]vaultDomain.VaultItem),
		userGrants:  make(map[grantKey]accessDomain.Grant),
		groupGrants: make(map[grantKey]accessDomain.Grant),
		groups:      make(map[uuid.UUID]accessDomain.Group),
		members:     make(map[memberKey]accessDomain.Membership),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.userGrants {
		c.userGrants[k] = v
	}
	for k, v := range s.groupGrants {
		c.groupGrants[k] = v
	}
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	c.history = append(c.history, s.history...)
	c.outbox = append(c.outbox, s.outbox...)
	return c
}

// Store is the shared state behind the memory repositories.
type Store struct {
	mu    sync.Mutex
	state state
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// WithTx runs fn while holding the store lock. Calls made with a context that already carries
// this store's transaction join it.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = saved
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.state = saved
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// lock acquires the store lock unless ctx already runs inside one of its transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// PingContext reports whether the store is usable. It only fails for a done context.
func (s *Store) PingContext(ctx context.Context) error {
	return ctx.Err()
}

// Items returns the vault item repository.
func (s *Store) Items() *ItemRepository {
	return &ItemRepository{store: s}
}

// Grants returns the user and group grant repository.
func (s *Store) Grants() *GrantRepository {
	return &GrantRepository{store: s}
}

// Groups returns the group and membership repository.
func (s *Store) Groups() *GroupRepository {
	return &GroupRepository{store: s}
}

// History returns the history entry repository.
func (s *Store) History() *HistoryRepository {
	return &HistoryRepository{store: s}
}

// Outbox returns the outbox event repository.
func (s *Store) Outbox() *OutboxRepository {
	return &OutboxRepository{store: s}
}

// paginate returns the offset/limit window of n elements.
func paginate(n, offset, limit int) (start, end int) {
	start = min(max(offset, 0), n)
	end = n
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return start, end
}
