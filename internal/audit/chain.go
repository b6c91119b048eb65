// Package audit keeps a tamper-evident history of committed mutations.
// Entries form a hash chain: each entry's hash covers its fields plus the
// hash of its predecessor, so any rewrite of history breaks verification.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"banking-ledger/internal/domain"
)

// SentinelHash is the previous-hash value of the first entry.
const SentinelHash = "INIT"

// Chain is an append-only hash-linked log. Appends are globally serialized:
// every entry must reference the exact hash of the current tail, so there is
// a single critical section rather than per-account sharding.
type Chain struct {
	mu       sync.Mutex
	entries  []domain.AuditLogEntry
	prevHash string
}

func NewChain() *Chain {
	return &Chain{prevHash: SentinelHash}
}

// Record appends one entry for a committed operation and returns it.
func (c *Chain) Record(operation domain.OperationKind, accountIDs []uuid.UUID, amount domain.Money) domain.AuditLogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := domain.AuditLogEntry{
		ID:           uuid.New(),
		Timestamp:    time.Now().UTC(),
		Operation:    operation,
		AccountIDs:   append([]uuid.UUID(nil), accountIDs...),
		Amount:       amount,
		PreviousHash: c.prevHash,
		Hash:         EntryHash(operation, accountIDs, amount, c.prevHash),
	}

	c.entries = append(c.entries, entry)
	c.prevHash = entry.Hash
	return entry
}

// Entries returns an insertion-ordered snapshot of the chain.
func (c *Chain) Entries() []domain.AuditLogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.AuditLogEntry(nil), c.entries...)
}

func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Verify recomputes every hash in the chain and checks the links.
func (c *Chain) Verify() error {
	return VerifyEntries(c.Entries())
}

// VerifyEntries checks that a sequence of entries forms a valid chain back
// to the sentinel.
func VerifyEntries(entries []domain.AuditLogEntry) error {
	prev := SentinelHash
	for i, entry := range entries {
		if entry.PreviousHash != prev {
			return fmt.Errorf("audit entry %d: previous hash %q does not match %q", i, entry.PreviousHash, prev)
		}
		if hash := EntryHash(entry.Operation, entry.AccountIDs, entry.Amount, entry.PreviousHash); hash != entry.Hash {
			return fmt.Errorf("audit entry %d: stored hash %q does not match recomputed %q", i, entry.Hash, hash)
		}
		prev = entry.Hash
	}
	return nil
}

// EntryHash computes the sha256 hex digest over the canonical encoding
// operation|id,id,...|amount|previousHash.
func EntryHash(operation domain.OperationKind, accountIDs []uuid.UUID, amount domain.Money, previousHash string) string {
	ids := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		ids[i] = id.String()
	}
	payload := string(operation) + "|" + strings.Join(ids, ",") + "|" + amount.String() + "|" + previousHash
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
