package handler

import (
	"net/http"
	"time"

	"banking-ledger/internal/audit"
	"banking-ledger/internal/domain"
	"banking-ledger/internal/service"
)

type AuditHandler struct {
	banking *service.BankingService
}

func NewAuditHandler(banking *service.BankingService) *AuditHandler {
	return &AuditHandler{
		banking: banking,
	}
}

type AuditEntryResponse struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Operation    string    `json:"operation"`
	AccountIDs   []string  `json:"account_ids"`
	Amount       string    `json:"amount"`
	PreviousHash string    `json:"previous_hash"`
	Hash         string    `json:"hash"`
}

type AuditVerifyResponse struct {
	Valid   bool   `json:"valid"`
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

func (h *AuditHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries := h.banking.AuditEntries()

	response := make([]AuditEntryResponse, len(entries))
	for i, entry := range entries {
		response[i] = toAuditEntryResponse(entry)
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *AuditHandler) Verify(w http.ResponseWriter, r *http.Request) {
	// Verify the same snapshot that is reported, so the count always
	// matches what was checked even while writers append.
	entries := h.banking.AuditEntries()

	if err := audit.VerifyEntries(entries); err != nil {
		writeJSON(w, http.StatusConflict, AuditVerifyResponse{
			Valid:   false,
			Entries: len(entries),
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, AuditVerifyResponse{
		Valid:   true,
		Entries: len(entries),
	})
}

func toAuditEntryResponse(entry domain.AuditLogEntry) AuditEntryResponse {
	accountIDs := make([]string, len(entry.AccountIDs))
	for i, id := range entry.AccountIDs {
		accountIDs[i] = id.String()
	}

	return AuditEntryResponse{
		ID:           entry.ID.String(),
		Timestamp:    entry.Timestamp,
		Operation:    string(entry.Operation),
		AccountIDs:   accountIDs,
		Amount:       entry.Amount.StringFixed(),
		PreviousHash: entry.PreviousHash,
		Hash:         entry.Hash,
	}
}
