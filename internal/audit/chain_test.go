package audit_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banking-ledger/internal/audit"
	"banking-ledger/internal/domain"
)

func mustMoney(t *testing.T, value string) domain.Money {
	t.Helper()
	m, err := domain.NewMoneyFromString(value)
	require.NoError(t, err)
	return m
}

func TestChainLinksEntries(t *testing.T) {
	chain := audit.NewChain()
	accountID := uuid.New()

	first := chain.Record(domain.OpCreateAccount, []uuid.UUID{accountID}, mustMoney(t, "100.00"))
	second := chain.Record(domain.OpDeposit, []uuid.UUID{accountID}, mustMoney(t, "50.00"))

	assert.Equal(t, audit.SentinelHash, first.PreviousHash)
	assert.Equal(t, first.Hash, second.PreviousHash)
	assert.Equal(t, 2, chain.Len())
	require.NoError(t, chain.Verify())
}

func TestChainHashIsDeterministic(t *testing.T) {
	accountID := uuid.New()
	amount := mustMoney(t, "42.00")

	a := audit.EntryHash(domain.OpDeposit, []uuid.UUID{accountID}, amount, audit.SentinelHash)
	b := audit.EntryHash(domain.OpDeposit, []uuid.UUID{accountID}, amount, audit.SentinelHash)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "sha256 hex digest")

	c := audit.EntryHash(domain.OpWithdraw, []uuid.UUID{accountID}, amount, audit.SentinelHash)
	assert.NotEqual(t, a, c)
}

func TestVerifyDetectsTampering(t *testing.T) {
	chain := audit.NewChain()
	from := uuid.New()
	to := uuid.New()

	chain.Record(domain.OpCreateAccount, []uuid.UUID{from}, mustMoney(t, "300.00"))
	chain.Record(domain.OpCreateAccount, []uuid.UUID{to}, mustMoney(t, "100.00"))
	chain.Record(domain.OpTransfer, []uuid.UUID{from, to}, mustMoney(t, "50.00"))

	entries := chain.Entries()
	require.NoError(t, audit.VerifyEntries(entries))

	t.Run("rewritten operation breaks the hash", func(t *testing.T) {
		tampered := append([]domain.AuditLogEntry(nil), entries...)
		tampered[1].Operation = domain.OpWithdraw
		assert.Error(t, audit.VerifyEntries(tampered))
	})

	t.Run("rewritten amount breaks the hash", func(t *testing.T) {
		tampered := append([]domain.AuditLogEntry(nil), entries...)
		tampered[2].Amount = mustMoney(t, "5000.00")
		assert.Error(t, audit.VerifyEntries(tampered))
	})

	t.Run("broken link is detected", func(t *testing.T) {
		tampered := append([]domain.AuditLogEntry(nil), entries...)
		tampered = append(tampered[:1], tampered[2:]...)
		assert.Error(t, audit.VerifyEntries(tampered))
	})
}

func TestEntriesReturnsSnapshot(t *testing.T) {
	chain := audit.NewChain()
	chain.Record(domain.OpDeposit, []uuid.UUID{uuid.New()}, mustMoney(t, "1.00"))

	snapshot := chain.Entries()
	snapshot[0].Operation = domain.OpWithdraw

	require.NoError(t, chain.Verify(), "mutating a snapshot must not affect the chain")
}

func TestConcurrentRecordsAreTotallyOrdered(t *testing.T) {
	chain := audit.NewChain()
	amount := mustMoney(t, "1.00")

	const writers = 32
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			chain.Record(domain.OpDeposit, []uuid.UUID{uuid.New()}, amount)
		}()
	}
	wg.Wait()

	entries := chain.Entries()
	require.Len(t, entries, writers)
	require.NoError(t, audit.VerifyEntries(entries))

	seen := make(map[string]bool)
	for _, entry := range entries {
		assert.False(t, seen[entry.PreviousHash], "no two entries may reference the same previous hash")
		seen[entry.PreviousHash] = true
	}
}
