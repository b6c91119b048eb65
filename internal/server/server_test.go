package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banking-ledger/internal/config"
	"banking-ledger/internal/server"
)

// newTestServer wires a server on the in-memory store; requests are served
// through the router without opening a socket.
func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := server.NewServer(&config.Config{ServerPort: "0"}, logger)
	require.NoError(t, err)
	return s
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, s *server.Server, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

func createAccount(t *testing.T, s *server.Server, initialDeposit string) string {
	t.Helper()
	rr, env := doRequest(t, s, http.MethodPost, "/accounts", map[string]string{
		"operation_id":    uuid.NewString(),
		"initial_deposit": initialDeposit,
	})
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())

	var account struct {
		AccountID string `json:"account_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &account))
	return account.AccountID
}

func getBalance(t *testing.T, s *server.Server, accountID string) string {
	t.Helper()
	rr, env := doRequest(t, s, http.MethodGet, "/accounts/"+accountID+"/balance", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var balance struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &balance))
	return balance.Balance
}

func TestCreateAccountEndpoint(t *testing.T) {
	s := newTestServer(t)

	t.Run("creates an account", func(t *testing.T) {
		accountID := createAccount(t, s, "200.00")
		assert.Equal(t, "200.00", getBalance(t, s, accountID))
	})

	t.Run("requires an operation id", func(t *testing.T) {
		rr, env := doRequest(t, s, http.MethodPost, "/accounts", map[string]string{
			"initial_deposit": "100.00",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "invalid_input", env.Error.Code)
	})

	t.Run("rejects negative deposits", func(t *testing.T) {
		rr, env := doRequest(t, s, http.MethodPost, "/accounts", map[string]string{
			"operation_id":    uuid.NewString(),
			"initial_deposit": "-5.00",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "invalid_amount", env.Error.Code)
	})

	t.Run("replay returns the same account", func(t *testing.T) {
		operationID := uuid.NewString()
		body := map[string]string{
			"operation_id":    operationID,
			"initial_deposit": "100.00",
		}

		rr, env := doRequest(t, s, http.MethodPost, "/accounts", body)
		require.Equal(t, http.StatusCreated, rr.Code)
		var first struct {
			AccountID string `json:"account_id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &first))

		rr, env = doRequest(t, s, http.MethodPost, "/accounts", body)
		require.Equal(t, http.StatusCreated, rr.Code)
		var second struct {
			AccountID string `json:"account_id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &second))

		assert.Equal(t, first.AccountID, second.AccountID)
		assert.Equal(t, "100.00", getBalance(t, s, first.AccountID))
	})
}

func TestDepositAndWithdrawEndpoints(t *testing.T) {
	s := newTestServer(t)
	accountID := createAccount(t, s, "100.00")

	rr, _ := doRequest(t, s, http.MethodPost, "/accounts/"+accountID+"/deposit", map[string]string{
		"operation_id": uuid.NewString(),
		"amount":       "50.00",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "150.00", getBalance(t, s, accountID))

	rr, _ = doRequest(t, s, http.MethodPost, "/accounts/"+accountID+"/withdraw", map[string]string{
		"operation_id": uuid.NewString(),
		"amount":       "25.00",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "125.00", getBalance(t, s, accountID))

	t.Run("insufficient funds", func(t *testing.T) {
		rr, env := doRequest(t, s, http.MethodPost, "/accounts/"+accountID+"/withdraw", map[string]string{
			"operation_id": uuid.NewString(),
			"amount":       "1000.00",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "insufficient_funds", env.Error.Code)
	})

	t.Run("unknown account", func(t *testing.T) {
		rr, env := doRequest(t, s, http.MethodPost, "/accounts/"+uuid.NewString()+"/deposit", map[string]string{
			"operation_id": uuid.NewString(),
			"amount":       "10.00",
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "account_not_found", env.Error.Code)
	})
}

func TestTransferEndpoint(t *testing.T) {
	s := newTestServer(t)
	fromID := createAccount(t, s, "300.00")
	toID := createAccount(t, s, "100.00")

	rr, env := doRequest(t, s, http.MethodPost, "/transfers", map[string]string{
		"operation_id":    uuid.NewString(),
		"from_account_id": fromID,
		"to_account_id":   toID,
		"amount":          "50.00",
	})
	require.Equal(t, http.StatusCreated, rr.Code, "body: %s", rr.Body.String())

	var transfer struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &transfer))
	assert.Equal(t, "completed", transfer.Status)

	assert.Equal(t, "250.00", getBalance(t, s, fromID))
	assert.Equal(t, "150.00", getBalance(t, s, toID))

	t.Run("same account", func(t *testing.T) {
		rr, env := doRequest(t, s, http.MethodPost, "/transfers", map[string]string{
			"operation_id":    uuid.NewString(),
			"from_account_id": fromID,
			"to_account_id":   fromID,
			"amount":          "10.00",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "same_account_transfer", env.Error.Code)
	})
}

func TestAuditEndpoints(t *testing.T) {
	s := newTestServer(t)
	fromID := createAccount(t, s, "300.00")
	toID := createAccount(t, s, "100.00")

	rr, _ := doRequest(t, s, http.MethodPost, "/transfers", map[string]string{
		"operation_id":    uuid.NewString(),
		"from_account_id": fromID,
		"to_account_id":   toID,
		"amount":          "50.00",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr, env := doRequest(t, s, http.MethodGet, "/audit/entries", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var entries []struct {
		Operation    string   `json:"operation"`
		AccountIDs   []string `json:"account_ids"`
		PreviousHash string   `json:"previous_hash"`
		Hash         string   `json:"hash"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "CREATE_ACCOUNT", entries[0].Operation)
	assert.Equal(t, "CREATE_ACCOUNT", entries[1].Operation)
	assert.Equal(t, "TRANSFER", entries[2].Operation)
	assert.Equal(t, []string{fromID, toID}, entries[2].AccountIDs)
	assert.Equal(t, "INIT", entries[0].PreviousHash)
	assert.Equal(t, entries[1].Hash, entries[2].PreviousHash)

	rr, env = doRequest(t, s, http.MethodGet, "/audit/verify", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var verify struct {
		Valid   bool `json:"valid"`
		Entries int  `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &verify))
	assert.True(t, verify.Valid)
	assert.Equal(t, 3, verify.Entries)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), fmt.Sprintf("%q", "healthy"))
}
