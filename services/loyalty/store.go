package loyalty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"scaleplus-loyalty/pkg/errutil"
	"scaleplus-loyalty/pkg/kvstore"
	"scaleplus-loyalty/services/catalog"
	"scaleplus-loyalty/services/ledger"
	"scaleplus-loyalty/services/member"

	"golang.org/x/sync/errgroup"
)

// Keys names the four documents the program persists.
type Keys struct {
	Users        string
	Transactions string
	Rewards      string
	Mechanics    string
}

func NewKeys(namespace string) Keys {
	return Keys{
		Users:        kvstore.NamespaceKey(namespace, "appUsers"),
		Transactions: kvstore.NamespaceKey(namespace, "loyaltyTransactions"),
		Rewards:      kvstore.NamespaceKey(namespace, "loyaltyRewards"),
		Mechanics:    kvstore.NamespaceKey(namespace, "loyaltyMechanics"),
	}
}

// State is a consistent view of every collection. Values reached through a
// State returned by View must be treated as read-only.
type State struct {
	Users     *member.Roster
	Ledger    *ledger.Log
	Rewards   *catalog.Rewards
	Mechanics *catalog.Mechanics
}

func emptyState() State {
	return State{
		Users:     member.NewRoster(),
		Ledger:    ledger.NewLog(),
		Rewards:   catalog.NewRewards(),
		Mechanics: catalog.NewMechanics(),
	}
}

func (s State) Empty() bool {
	return s.Users.Len() == 0 && s.Ledger.Len() == 0 && s.Rewards.Len() == 0 && s.Mechanics.Len() == 0
}

// Store owns the in-memory state and writes every committed change through
// the gateway. Mutations are serialized; a mutation that fails, or whose
// save fails, leaves both memory and the gateway untouched.
type Store struct {
	mu      sync.RWMutex
	gateway kvstore.Gateway
	keys    Keys
	state   State
}

func NewStore(gateway kvstore.Gateway, keys Keys) *Store {
	return &Store{
		gateway: gateway,
		keys:    keys,
		state:   emptyState(),
	}
}

// Load replaces the in-memory state with what the gateway holds. Missing
// keys load as empty collections.
func (s *Store) Load(ctx context.Context) error {
	next := emptyState()

	g, gctx := errgroup.WithContext(ctx)
	load := func(key string, into json.Unmarshaler) {
		g.Go(func() error {
			raw, err := s.gateway.Load(gctx, key)
			if errors.Is(err, kvstore.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("load %s: %w", key, err)
			}
			if err := into.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			return nil
		})
	}
	load(s.keys.Users, next.Users)
	load(s.keys.Transactions, next.Ledger)
	load(s.keys.Rewards, next.Rewards)
	load(s.keys.Mechanics, next.Mechanics)

	if err := g.Wait(); err != nil {
		return errutil.Unavailable("failed to load loyalty state", err)
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	return nil
}

// View runs fn against the current state under the read lock.
func (s *Store) View(fn func(State) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// Update runs fn against copy-on-write collections and commits them only if
// fn succeeds and the gateway accepts the batch.
func (s *Store) Update(ctx context.Context, fn func(*Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{base: s.state}
	if err := fn(tx); err != nil {
		return err
	}

	entries, err := tx.encode(s.keys)
	if err != nil {
		return errutil.Internal("failed to encode loyalty state", err)
	}
	if len(entries) == 0 {
		return nil
	}

	if err := s.gateway.SaveBatch(ctx, entries); err != nil {
		return errutil.Unavailable("failed to persist loyalty state", err)
	}

	s.state = tx.merged()
	return nil
}

// Tx hands out private copies of the collections it is asked for. Only the
// copied collections are written back.
type Tx struct {
	base      State
	users     *member.Roster
	log       *ledger.Log
	rewards   *catalog.Rewards
	mechanics *catalog.Mechanics
}

func (t *Tx) Users() *member.Roster {
	if t.users == nil {
		t.users = t.base.Users.Clone()
	}
	return t.users
}

func (t *Tx) Ledger() *ledger.Log {
	if t.log == nil {
		t.log = t.base.Ledger.Clone()
	}
	return t.log
}

func (t *Tx) Rewards() *catalog.Rewards {
	if t.rewards == nil {
		t.rewards = t.base.Rewards.Clone()
	}
	return t.rewards
}

func (t *Tx) Mechanics() *catalog.Mechanics {
	if t.mechanics == nil {
		t.mechanics = t.base.Mechanics.Clone()
	}
	return t.mechanics
}

func (t *Tx) encode(keys Keys) (map[string][]byte, error) {
	entries := make(map[string][]byte, 4)
	put := func(key string, v json.Marshaler) error {
		raw, err := v.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		entries[key] = raw
		return nil
	}

	if t.users != nil {
		if err := put(keys.Users, t.users); err != nil {
			return nil, err
		}
	}
	if t.log != nil {
		if err := put(keys.Transactions, t.log); err != nil {
			return nil, err
		}
	}
	if t.rewards != nil {
		if err := put(keys.Rewards, t.rewards); err != nil {
			return nil, err
		}
	}
	if t.mechanics != nil {
		if err := put(keys.Mechanics, t.mechanics); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (t *Tx) merged() State {
	next := t.base
	if t.users != nil {
		next.Users = t.users
	}
	if t.log != nil {
		next.Ledger = t.log
	}
	if t.rewards != nil {
		next.Rewards = t.rewards
	}
	if t.mechanics != nil {
		next.Mechanics = t.mechanics
	}
	return next
}
