package domain

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID            uuid.UUID `json:"account_id"`
	Balance       Money     `json:"balance"`
	OwnerName     string    `json:"owner_name,omitempty"`
	AccountNumber string    `json:"account_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewAccount builds an account with a freshly generated id.
func NewAccount(balance Money, ownerName, accountNumber string) *Account {
	return &Account{
		ID:            uuid.New(),
		Balance:       balance,
		OwnerName:     ownerName,
		AccountNumber: accountNumber,
		CreatedAt:     time.Now().UTC(),
	}
}

// Deposit returns a copy of the account with the amount credited.
func (a Account) Deposit(amount Money) Account {
	a.Balance = a.Balance.Add(amount)
	return a
}

// Withdraw returns a copy of the account with the amount debited, failing
// when the balance does not cover it.
func (a Account) Withdraw(amount Money) (Account, error) {
	balance, err := a.Balance.Sub(amount)
	if err != nil {
		return Account{}, err
	}
	a.Balance = balance
	return a, nil
}

// AccountStore is the single point of mutation for account state.
// Update applies the transform to the current value and installs the result
// as one atomic step per id; updates to different ids never block each other.
// WithTransaction groups updates into one unit of work: on stores with real
// transactions they commit or roll back together.
type AccountStore interface {
	Save(account *Account) error
	FindByID(id uuid.UUID) (*Account, error)
	Update(id uuid.UUID, transform func(Account) (Account, error)) (*Account, error)
	WithTransaction(fn func(AccountStore) error) error
}
