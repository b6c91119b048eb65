package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
	"banking-ledger/internal/service"
)

type TransferHandler struct {
	banking *service.BankingService
}

func NewTransferHandler(banking *service.BankingService) *TransferHandler {
	return &TransferHandler{
		banking: banking,
	}
}

type TransferRequest struct {
	OperationID   string `json:"operation_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
}

type TransferResponse struct {
	OperationID   string `json:"operation_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
}

func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	operationID, appErr := parseOperationID(req.OperationID)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	fromID, err := uuid.Parse(req.FromAccountID)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid from_account_id format").WithDetails(err.Error()))
		return
	}

	toID, err := uuid.Parse(req.ToAccountID)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid to_account_id format").WithDetails(err.Error()))
		return
	}

	amount, err := domain.NewMoneyFromString(req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.banking.Transfer(operationID, fromID, toID, amount); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, TransferResponse{
		OperationID:   operationID.String(),
		FromAccountID: fromID.String(),
		ToAccountID:   toID.String(),
		Amount:        amount.StringFixed(),
		Status:        "completed",
	})
}
