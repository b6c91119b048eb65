package service

import (
	"log/slog"

	"github.com/google/uuid"

	"banking-ledger/internal/audit"
	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
	"banking-ledger/internal/idempotency"
)

// BankingService implements the mutating commands and the balance query.
// Every command goes through the idempotency ledger first, mutates the
// account store under the per-account lock registry, and records an audit
// entry only after the mutation has committed.
type BankingService struct {
	accounts    domain.AccountStore
	idempotency *idempotency.Ledger
	audit       *audit.Chain
	locks       *accountLocks
	logger      *slog.Logger
}

func NewBankingService(
	accounts domain.AccountStore,
	ledger *idempotency.Ledger,
	chain *audit.Chain,
	logger *slog.Logger,
) *BankingService {
	return &BankingService{
		accounts:    accounts,
		idempotency: ledger,
		audit:       chain,
		locks:       newAccountLocks(),
		logger:      logger,
	}
}

// CreateAccount creates an account with the given initial balance. Replays
// under the same operation id return the account created by the first call.
func (s *BankingService) CreateAccount(operationID uuid.UUID, initialDeposit domain.Money, ownerName, accountNumber string) (*domain.Account, error) {
	return s.withOperationLogging(domain.OpCreateAccount, operationID, nil, func() (*domain.Account, error) {
		return s.idempotency.ExecuteOnce(operationID, func() (*domain.Account, error) {
			account := domain.NewAccount(initialDeposit, ownerName, accountNumber)
			if err := s.accounts.Save(account); err != nil {
				return nil, err
			}
			s.audit.Record(domain.OpCreateAccount, []uuid.UUID{account.ID}, initialDeposit)
			return account, nil
		})
	})
}

// Deposit credits the account and returns its new state.
func (s *BankingService) Deposit(operationID, accountID uuid.UUID, amount domain.Money) (*domain.Account, error) {
	return s.withOperationLogging(domain.OpDeposit, operationID, []uuid.UUID{accountID}, func() (*domain.Account, error) {
		return s.idempotency.ExecuteOnce(operationID, func() (*domain.Account, error) {
			unlock := s.locks.lock(accountID)
			defer unlock()

			if _, err := s.accounts.FindByID(accountID); err != nil {
				return nil, err
			}
			updated, err := s.accounts.Update(accountID, func(account domain.Account) (domain.Account, error) {
				return account.Deposit(amount), nil
			})
			if err != nil {
				return nil, err
			}
			s.audit.Record(domain.OpDeposit, []uuid.UUID{accountID}, amount)
			return updated, nil
		})
	})
}

// Withdraw debits the account and returns its new state. Fails without
// mutating anything when the balance does not cover the amount.
func (s *BankingService) Withdraw(operationID, accountID uuid.UUID, amount domain.Money) (*domain.Account, error) {
	return s.withOperationLogging(domain.OpWithdraw, operationID, []uuid.UUID{accountID}, func() (*domain.Account, error) {
		return s.idempotency.ExecuteOnce(operationID, func() (*domain.Account, error) {
			unlock := s.locks.lock(accountID)
			defer unlock()

			if _, err := s.accounts.FindByID(accountID); err != nil {
				return nil, err
			}
			updated, err := s.accounts.Update(accountID, func(account domain.Account) (domain.Account, error) {
				return account.Withdraw(amount)
			})
			if err != nil {
				return nil, err
			}
			s.audit.Record(domain.OpWithdraw, []uuid.UUID{accountID}, amount)
			return updated, nil
		})
	})
}

// Transfer moves the amount between two distinct accounts. Both account
// locks are held in canonical order for the whole withdraw-then-deposit
// pair; the single TRANSFER audit entry is recorded only after both
// mutations committed.
func (s *BankingService) Transfer(operationID, fromID, toID uuid.UUID, amount domain.Money) error {
	_, err := s.withOperationLogging(domain.OpTransfer, operationID, []uuid.UUID{fromID, toID}, func() (*domain.Account, error) {
		return s.idempotency.ExecuteOnce(operationID, func() (*domain.Account, error) {
			if fromID == toID {
				return nil, errors.ErrSameAccountTransfer
			}

			first, second := orderIDs(fromID, toID)
			unlockFirst := s.locks.lock(first)
			defer unlockFirst()
			unlockSecond := s.locks.lock(second)
			defer unlockSecond()

			// Stage: validate both sides before touching either account.
			from, err := s.accounts.FindByID(fromID)
			if err != nil {
				return nil, err
			}
			if _, err := s.accounts.FindByID(toID); err != nil {
				return nil, err
			}
			if _, err := from.Withdraw(amount); err != nil {
				return nil, err
			}

			// Commit: both updates run in one unit of work. Under both
			// locks nothing else mutates these accounts, and on stores
			// with real transactions a failure rolls both back, so the
			// debit can never outlive a failed credit.
			var debited *domain.Account
			err = s.accounts.WithTransaction(func(accounts domain.AccountStore) error {
				updated, err := accounts.Update(fromID, func(account domain.Account) (domain.Account, error) {
					return account.Withdraw(amount)
				})
				if err != nil {
					return err
				}
				debited = updated

				_, err = accounts.Update(toID, func(account domain.Account) (domain.Account, error) {
					return account.Deposit(amount), nil
				})
				return err
			})
			if err != nil {
				return nil, err
			}

			s.audit.Record(domain.OpTransfer, []uuid.UUID{fromID, toID}, amount)
			return debited, nil
		})
	})
	return err
}

// GetBalance is a pure read of the current balance.
func (s *BankingService) GetBalance(accountID uuid.UUID) (domain.Money, error) {
	account, err := s.accounts.FindByID(accountID)
	if err != nil {
		return domain.Money{}, err
	}
	return account.Balance, nil
}

// AuditEntries exposes a snapshot of the audit chain.
func (s *BankingService) AuditEntries() []domain.AuditLogEntry {
	return s.audit.Entries()
}

// VerifyAudit walks the audit chain and checks every hash link.
func (s *BankingService) VerifyAudit() error {
	return s.audit.Verify()
}

func (s *BankingService) withOperationLogging(
	operation domain.OperationKind,
	operationID uuid.UUID,
	accountIDs []uuid.UUID,
	fn func() (*domain.Account, error),
) (*domain.Account, error) {
	attrs := []any{"operation", string(operation), "operation_id", operationID}
	if len(accountIDs) > 0 {
		attrs = append(attrs, "account_ids", accountIDs)
	}

	s.logger.Info("Operation requested", attrs...)
	account, err := fn()
	if err != nil {
		s.logger.Error("Operation failed", append(attrs, "error", err)...)
		return nil, err
	}
	s.logger.Info("Operation successful", attrs...)
	return account, nil
}
