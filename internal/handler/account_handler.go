package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
	"banking-ledger/internal/service"
)

type AccountHandler struct {
	banking *service.BankingService
}

func NewAccountHandler(banking *service.BankingService) *AccountHandler {
	return &AccountHandler{
		banking: banking,
	}
}

type CreateAccountRequest struct {
	OperationID    string `json:"operation_id"`
	InitialDeposit string `json:"initial_deposit"`
	OwnerName      string `json:"owner_name,omitempty"`
	AccountNumber  string `json:"account_number,omitempty"`
}

type AmountRequest struct {
	OperationID string `json:"operation_id"`
	Amount      string `json:"amount"`
}

type AccountResponse struct {
	AccountID     string    `json:"account_id"`
	Balance       string    `json:"balance"`
	OwnerName     string    `json:"owner_name,omitempty"`
	AccountNumber string    `json:"account_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     account.ID.String(),
		Balance:       account.Balance.StringFixed(),
		OwnerName:     account.OwnerName,
		AccountNumber: account.AccountNumber,
		CreatedAt:     account.CreatedAt,
	}
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	operationID, appErr := parseOperationID(req.OperationID)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	initialDeposit, err := domain.NewMoneyFromString(req.InitialDeposit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	account, err := h.banking.CreateAccount(operationID, initialDeposit, req.OwnerName, req.AccountNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := parseAccountID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	balance, err := h.banking.GetBalance(accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{
		AccountID: accountID.String(),
		Balance:   balance.StringFixed(),
	})
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, h.banking.Deposit)
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.applyAmount(w, r, h.banking.Withdraw)
}

func (h *AccountHandler) applyAmount(
	w http.ResponseWriter,
	r *http.Request,
	command func(operationID, accountID uuid.UUID, amount domain.Money) (*domain.Account, error),
) {
	accountID, appErr := parseAccountID(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	operationID, appErr := parseOperationID(req.OperationID)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	amount, err := domain.NewMoneyFromString(req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	account, err := command(operationID, accountID, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func parseAccountID(r *http.Request) (uuid.UUID, *errors.AppError) {
	vars := mux.Vars(r)
	accountID, err := uuid.Parse(vars["account_id"])
	if err != nil {
		return uuid.Nil, errors.NewAppError(errors.InvalidInput, "invalid account_id format").WithDetails(err.Error())
	}
	return accountID, nil
}
