package vault

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/google/uuid"
)

// Snapshot is the durable part of the vault state.
type Snapshot struct {
	Accounts []models.Account
	Current  *models.AccountKey
}

// Persister loads and saves the account list. The store treats it as
// durable key-value storage and does not care about the medium.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
}

// state is the mutable part of Store; mutations work on a copy.
type state struct {
	accounts []models.Account
	current  int // index into accounts, -1 when logged out
}

func (s state) clone() state {
	accounts := make([]models.Account, len(s.accounts))
	for i, a := range s.accounts {
		accounts[i] = a.Clone()
	}
	return state{accounts: accounts, current: s.current}
}

func (s state) snapshot() Snapshot {
	snap := Snapshot{Accounts: s.clone().accounts}
	if s.current >= 0 {
		key := s.accounts[s.current].Key()
		snap.Current = &key
	}
	return snap
}

func (s state) find(key models.AccountKey) int {
	for i, a := range s.accounts {
		if key.Matches(a) {
			return i
		}
	}
	return -1
}

// Store is the account record store: the ordered list of local accounts
// and the current one. It holds no cryptographic policy.
//
// Every operation, including List, clears the session cache first. This
// is the only place the current account can change, so a remembered PIN
// can never outlive the identity it was entered for.
type Store struct {
	mu         sync.RWMutex
	st         state
	generation uint64

	cache     *SessionCache
	persister Persister

	now   func() time.Time
	newID func() string
}

// NewStore returns an empty, memory-only store bound to cache.
func NewStore(cache *SessionCache) *Store {
	return &Store{
		st:    state{current: -1},
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Open builds a store backed by p and loads the saved snapshot. Restarting
// the process therefore always starts with an empty session cache.
func Open(ctx context.Context, cache *SessionCache, p Persister) (*Store, error) {
	s := NewStore(cache)
	s.persister = p

	snap, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	s.st.accounts = make([]models.Account, 0, len(snap.Accounts))
	for _, a := range snap.Accounts {
		s.st.accounts = append(s.st.accounts, a.Clone())
	}
	if snap.Current != nil {
		s.st.current = s.st.find(*snap.Current)
	}
	cache.Clear()
	return s, nil
}

// mutate is the single choke point for changes to the account list and
// the current account. The session cache is cleared unconditionally before
// fn runs. fn edits a copy; the copy is persisted and only then published,
// so a failed save leaves memory and disk in agreement.
func (s *Store) mutate(ctx context.Context, fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Clear()

	next := s.st.clone()
	if err := fn(&next); err != nil {
		return err
	}

	if s.persister != nil {
		if err := s.persister.Save(ctx, next.snapshot()); err != nil {
			return fmt.Errorf("save accounts: %w", err)
		}
	}

	s.st = next
	s.generation++
	return nil
}

func validate(a models.Account) error {
	if strings.TrimSpace(a.Username) == "" {
		return fmt.Errorf("%w: empty username", ErrInvalidAccount)
	}
	switch a.KeyTier {
	case models.TierOwner:
		return ErrOwnerNotStorable
	case models.TierPosting, models.TierActive, models.TierMemo:
	default:
		return fmt.Errorf("%w: key tier %q", ErrInvalidAccount, a.KeyTier)
	}
	switch a.LoginMethod {
	case models.LoginExternalSigner:
	case models.LoginStoredKey:
		if len(a.Ciphertext) == 0 {
			return fmt.Errorf("%w: stored key without ciphertext", ErrInvalidAccount)
		}
	default:
		return fmt.Errorf("%w: login method %q", ErrInvalidAccount, a.LoginMethod)
	}
	return nil
}

// Add inserts account, or re-registers it when (username, tier) is already
// known: the existing entry keeps its position, ID and creation time and
// takes the new key material and login method. The first account added to
// an empty store becomes current.
func (s *Store) Add(ctx context.Context, account models.Account) error {
	account = account.Clone()
	if account.IsExternalSigner() {
		account.Ciphertext = nil
		account.IsPinProtected = false
	}

	return s.mutate(ctx, func(st *state) error {
		if err := validate(account); err != nil {
			return err
		}
		if i := st.find(account.Key()); i >= 0 {
			existing := &st.accounts[i]
			existing.LoginMethod = account.LoginMethod
			existing.Ciphertext = account.Ciphertext
			existing.IsPinProtected = account.IsPinProtected
			return nil
		}

		if account.ID == "" {
			account.ID = s.newID()
		}
		if account.CreatedAt.IsZero() {
			account.CreatedAt = s.now()
		}

		st.accounts = append(st.accounts, account)
		if len(st.accounts) == 1 {
			st.current = 0
		}
		return nil
	})
}

// Remove deletes every tier of username when tier is TierAny, otherwise
// exactly that entry. When the current account goes away the next
// remaining account in insertion order becomes current (wrapping to the
// first one), or none if the list is empty.
func (s *Store) Remove(ctx context.Context, username string, tier models.KeyTier) error {
	key := models.AccountKey{Username: username, KeyTier: tier}

	return s.mutate(ctx, func(st *state) error {
		kept := make([]models.Account, 0, len(st.accounts))
		// position in kept of the first survivor after the old current
		successor := -1
		newCurrent := -1
		removed := 0

		for i, a := range st.accounts {
			if key.Matches(a) {
				removed++
				continue
			}
			if i == st.current {
				newCurrent = len(kept)
			}
			if st.current >= 0 && i > st.current && successor < 0 {
				successor = len(kept)
			}
			kept = append(kept, a)
		}

		if removed == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}

		if st.current >= 0 && newCurrent < 0 {
			switch {
			case len(kept) == 0:
				newCurrent = -1
			case successor >= 0:
				newCurrent = successor
			default:
				newCurrent = 0
			}
		}

		st.accounts = kept
		st.current = newCurrent
		return nil
	})
}

// Switch makes the first account matching (username, tier) current.
func (s *Store) Switch(ctx context.Context, username string, tier models.KeyTier) error {
	key := models.AccountKey{Username: username, KeyTier: tier}

	return s.mutate(ctx, func(st *state) error {
		i := st.find(key)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		st.current = i
		return nil
	})
}

// Logout leaves every account in place but makes none current.
func (s *Store) Logout(ctx context.Context) error {
	return s.mutate(ctx, func(st *state) error {
		st.current = -1
		return nil
	})
}

// List returns a copy of the accounts in insertion order. Like the
// mutating operations it clears the session cache first.
func (s *Store) List() []models.Account {
	s.cache.Clear()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.clone().accounts
}

// Current returns a copy of the current account.
func (s *Store) Current() (models.Account, bool) {
	a, _, ok := s.currentWithGeneration()
	return a, ok
}

// Generation is bumped by every successful mutation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Store) currentWithGeneration() (models.Account, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.current < 0 {
		return models.Account{}, s.generation, false
	}
	return s.st.accounts[s.st.current].Clone(), s.generation, true
}

// ifGeneration runs fn while holding the store read lock, provided no
// mutation happened since gen. Mutations take the write lock and clear the
// cache, so fn cannot interleave with an identity change.
func (s *Store) ifGeneration(gen uint64, fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.generation != gen {
		return fmt.Errorf("%w: %w", ErrCancelled, ErrIdentityChanged)
	}
	return fn()
}
