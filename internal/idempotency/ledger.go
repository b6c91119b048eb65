// Package idempotency memoizes the outcome of mutating commands keyed by
// their operation id, so a retried command never applies its effect twice.
package idempotency

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"banking-ledger/internal/domain"
)

// Ledger maps an operation id to the result of its first execution.
// Among callers racing on the same id exactly one runs the producer; the
// others block until it finishes and observe the same result. Distinct ids
// never contend. Only successful executions are memoized: after a failure
// the id is released and a later attempt may run the producer again.
type Ledger struct {
	mu     sync.Mutex
	ops    map[uuid.UUID]*operation
	logger *slog.Logger
}

type operation struct {
	done    chan struct{}
	account *domain.Account
	err     error
}

func NewLedger(logger *slog.Logger) *Ledger {
	return &Ledger{
		ops:    make(map[uuid.UUID]*operation),
		logger: logger,
	}
}

// ExecuteOnce returns the memoized result for operationID, or invokes the
// producer exactly once and memoizes its result on success.
func (l *Ledger) ExecuteOnce(operationID uuid.UUID, producer func() (*domain.Account, error)) (*domain.Account, error) {
	l.mu.Lock()
	if op, ok := l.ops[operationID]; ok {
		l.mu.Unlock()
		select {
		case <-op.done:
			l.logger.Info("Operation replayed from ledger", "operation_id", operationID)
		default:
			l.logger.Info("Waiting for in-flight operation", "operation_id", operationID)
			<-op.done
		}
		return op.account, op.err
	}

	op := &operation{done: make(chan struct{})}
	l.ops[operationID] = op
	l.mu.Unlock()

	op.account, op.err = producer()
	if op.err != nil {
		// A failed attempt does not consume the id.
		l.mu.Lock()
		delete(l.ops, operationID)
		l.mu.Unlock()
	}
	close(op.done)

	return op.account, op.err
}

// Len reports how many operation ids hold a result or are in flight.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ops)
}
