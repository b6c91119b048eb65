package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
)

// postgresAccountStore implements the account store contract on Postgres.
// Update runs SELECT ... FOR UPDATE inside a transaction so the row lock is
// the per-id serialization point. The executor is either the database
// handle or, inside WithTransaction, the enclosing transaction; in the
// latter case Update joins that transaction instead of opening its own.
type postgresAccountStore struct {
	executor SQLExecutor
	logger   *slog.Logger
}

func NewPostgresAccountStore(db *sql.DB, logger *slog.Logger) domain.AccountStore {
	return &postgresAccountStore{
		executor: db,
		logger:   logger,
	}
}

func (s *postgresAccountStore) Save(account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, balance, owner_name, account_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at
	`

	_, err := s.executor.Exec(
		query,
		account.ID,
		account.Balance.String(),
		nullableString(account.OwnerName),
		nullableString(account.AccountNumber),
		account.CreatedAt,
		time.Now(),
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				s.logger.Warn("Duplicate account number", "account_id", account.ID)
				return errors.ErrDuplicateAccount
			}
		}
		s.logger.Error("Failed to save account", "account_id", account.ID, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to save account").WithDetails(err.Error())
	}

	s.logger.Info("Account saved", "account_id", account.ID)
	return nil
}

func (s *postgresAccountStore) FindByID(id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, balance, owner_name, account_number, created_at
		FROM accounts WHERE id = $1
	`

	return s.scanAccount(s.executor, query, id)
}

func (s *postgresAccountStore) Update(id uuid.UUID, transform func(domain.Account) (domain.Account, error)) (*domain.Account, error) {
	db, ok := s.executor.(*sql.DB)
	if !ok {
		// Already inside WithTransaction: the row lock is held until the
		// enclosing transaction commits.
		return s.applyUpdate(s.executor, id, transform)
	}

	tx, err := db.Begin()
	if err != nil {
		s.logger.Error("Failed to begin transaction", "account_id", id, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to begin transaction").WithDetails(err.Error())
	}
	defer tx.Rollback()

	account, err := s.applyUpdate(tx, id, transform)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit account update", "account_id", id, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to commit account update").WithDetails(err.Error())
	}

	return account, nil
}

// WithTransaction runs fn against a store bound to one database transaction,
// so every Update inside fn commits or rolls back as a unit.
func (s *postgresAccountStore) WithTransaction(fn func(domain.AccountStore) error) error {
	db, ok := s.executor.(*sql.DB)
	if !ok {
		return errors.ErrCannotBeginTransaction
	}

	tx, err := db.Begin()
	if err != nil {
		s.logger.Error("Failed to begin transaction", "error", err)
		return errors.NewAppError(errors.InternalError, "failed to begin transaction").WithDetails(err.Error())
	}

	txStore := &postgresAccountStore{
		executor: tx,
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit transaction", "error", err)
		return errors.NewAppError(errors.InternalError, "failed to commit transaction").WithDetails(err.Error())
	}
	return nil
}

func (s *postgresAccountStore) applyUpdate(executor SQLExecutor, id uuid.UUID, transform func(domain.Account) (domain.Account, error)) (*domain.Account, error) {
	query := `
		SELECT id, balance, owner_name, account_number, created_at
		FROM accounts WHERE id = $1 FOR UPDATE
	`

	current, err := s.scanAccount(executor, query, id)
	if err != nil {
		return nil, err
	}

	next, err := transform(*current)
	if err != nil {
		return nil, err
	}

	result, err := executor.Exec(
		`UPDATE accounts SET balance = $1, updated_at = $2 WHERE id = $3`,
		next.Balance.String(),
		time.Now(),
		id,
	)
	if err != nil {
		s.logger.Error("Failed to update account", "account_id", id, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to update account").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to get rows affected").WithDetails(err.Error())
	}
	if rowsAffected == 0 {
		s.logger.Warn("No account found to update", "account_id", id)
		return nil, errors.ErrAccountNotFound
	}

	s.logger.Info("Account updated", "account_id", id, "balance", next.Balance)
	return &next, nil
}

func (s *postgresAccountStore) scanAccount(executor SQLExecutor, query string, id uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	var balanceStr string
	var ownerName sql.NullString
	var accountNumber sql.NullString

	err := executor.QueryRow(query, id).Scan(
		&account.ID,
		&balanceStr,
		&ownerName,
		&accountNumber,
		&account.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			s.logger.Warn("Account not found", "account_id", id)
			return nil, errors.ErrAccountNotFound
		}
		s.logger.Error("Failed to get account", "account_id", id, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get account").WithDetails(err.Error())
	}

	amount, err := decimal.NewFromString(balanceStr)
	if err != nil {
		s.logger.Error("Failed to parse balance", "account_id", id, "balance_str", balanceStr, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to parse balance").WithDetails(err.Error())
	}

	balance, err := domain.NewMoney(amount)
	if err != nil {
		s.logger.Error("Stored balance is not a valid amount", "account_id", id, "balance_str", balanceStr, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "stored balance is not a valid amount").WithDetails(err.Error())
	}

	account.Balance = balance
	account.OwnerName = ownerName.String
	account.AccountNumber = accountNumber.String
	return &account, nil
}

func nullableString(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
