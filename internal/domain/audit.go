package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperationKind names a mutating command in the audit log.
type OperationKind string

const (
	OpCreateAccount OperationKind = "CREATE_ACCOUNT"
	OpDeposit       OperationKind = "DEPOSIT"
	OpWithdraw      OperationKind = "WITHDRAW"
	OpTransfer      OperationKind = "TRANSFER"
)

// AuditLogEntry is one link of the hash chain. Hash covers the operation,
// the affected account ids, the amount and PreviousHash; entries are never
// mutated after being appended.
type AuditLogEntry struct {
	ID           uuid.UUID     `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Operation    OperationKind `json:"operation"`
	AccountIDs   []uuid.UUID   `json:"account_ids"`
	Amount       Money         `json:"amount"`
	PreviousHash string        `json:"previous_hash"`
	Hash         string        `json:"hash"`
}
