package store

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
)

// memoryAccountStore keeps accounts in a map with one lock per account, so
// updates to disjoint ids proceed in parallel while updates to the same id
// serialize on the entry lock.
type memoryAccountStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*accountEntry
	logger  *slog.Logger
}

type accountEntry struct {
	mu      sync.Mutex
	account domain.Account
}

func NewMemoryAccountStore(logger *slog.Logger) domain.AccountStore {
	return &memoryAccountStore{
		entries: make(map[uuid.UUID]*accountEntry),
		logger:  logger,
	}
}

func (s *memoryAccountStore) Save(account *domain.Account) error {
	s.mu.Lock()
	entry, ok := s.entries[account.ID]
	if !ok {
		s.entries[account.ID] = &accountEntry{account: *account}
		s.mu.Unlock()
		s.logger.Info("Account saved", "account_id", account.ID)
		return nil
	}
	s.mu.Unlock()

	entry.mu.Lock()
	entry.account = *account
	entry.mu.Unlock()
	s.logger.Info("Account saved", "account_id", account.ID)
	return nil
}

func (s *memoryAccountStore) FindByID(id uuid.UUID) (*domain.Account, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		s.logger.Warn("Account not found", "account_id", id)
		return nil, errors.ErrAccountNotFound
	}

	entry.mu.Lock()
	account := entry.account
	entry.mu.Unlock()
	return &account, nil
}

// WithTransaction runs fn directly against the store. The memory store has
// no multi-key rollback; grouped updates are atomic because callers hold
// the per-account locks for the duration of fn, so no update inside fn can
// fail after its inputs were validated.
func (s *memoryAccountStore) WithTransaction(fn func(domain.AccountStore) error) error {
	return fn(s)
}

func (s *memoryAccountStore) Update(id uuid.UUID, transform func(domain.Account) (domain.Account, error)) (*domain.Account, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		s.logger.Warn("Account not found for update", "account_id", id)
		return nil, errors.ErrAccountNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next, err := transform(entry.account)
	if err != nil {
		return nil, err
	}
	entry.account = next

	account := next
	s.logger.Info("Account updated", "account_id", id, "balance", account.Balance)
	return &account, nil
}
