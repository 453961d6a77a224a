//go:build integration

package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-petr/p2p-bank/cmd/httpserver"
	"github.com/go-petr/p2p-bank/internal/accountrepo"
	"github.com/go-petr/p2p-bank/internal/domain"
	"github.com/go-petr/p2p-bank/internal/integrationtest"
	"github.com/go-petr/p2p-bank/internal/middleware"
	"github.com/go-petr/p2p-bank/pkg/randompkg"
	"github.com/go-petr/p2p-bank/pkg/tokenpkg"
)

type response struct {
	Data          json.RawMessage `json:"data"`
	Error         string          `json:"error"`
	Code          string          `json:"code"`
	AccountNumber string          `json:"account_number"`
}

func do(t *testing.T, server *httpserver.Server, method, url string, body any, token string) (int, response) {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)

	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.AuthTypeBearer+" "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	var res response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))

	return recorder.Code, res
}

func tokenFor(t *testing.T, server *httpserver.Server, a domain.Account) string {
	t.Helper()

	token, _, err := tokenpkg.Issue(server.TokenMaker, tokenpkg.Identity{
		UserID:        a.ID,
		NationalID:    a.NationalID,
		AccountNumber: a.AccountNumber,
		Role:          a.Role,
	})
	require.NoError(t, err)

	return token
}

func balanceOf(t *testing.T, server *httpserver.Server, accountNumber string) int64 {
	t.Helper()

	a, err := accountrepo.NewRepoPGS(server.DB).GetByNumber(context.Background(), accountNumber)
	require.NoError(t, err)

	return a.Balance
}

func TestRegisterAndLogin(t *testing.T) {
	server := integrationtest.SetupServer(t, integrationtest.ConfigPath)

	nationalID := randompkg.NationalID()
	password := randompkg.String(12)

	registerBody := map[string]any{
		"fullname":         randompkg.FullName(),
		"email":            randompkg.Email(),
		"dni":              nationalID,
		"password":         password,
		"confirm_password": password,
	}

	status, res := do(t, server, http.MethodPost, "/register", registerBody, "")
	require.Equal(t, http.StatusOK, status, res.Error)

	var registered struct {
		ID            int64  `json:"id"`
		AccountNumber string `json:"numero_cuenta"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &registered))
	require.NotZero(t, registered.ID)
	require.Len(t, registered.AccountNumber, 9)
	require.True(t, strings.HasPrefix(registered.AccountNumber, "009"))

	status, res = do(t, server, http.MethodPost, "/register", registerBody, "")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, domain.ErrDuplicateEmail.Code, res.Code)

	registerBody["confirm_password"] = password + "x"
	status, res = do(t, server, http.MethodPost, "/register", registerBody, "")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, domain.ErrPasswordMismatch.Code, res.Code)

	status, res = do(t, server, http.MethodPost, "/login", map[string]any{"dni": nationalID, "password": password + "x"}, "")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, domain.ErrInvalidCredentials.Code, res.Code)

	status, res = do(t, server, http.MethodPost, "/login", map[string]any{"dni": nationalID, "password": password}, "")
	require.Equal(t, http.StatusOK, status, res.Error)

	var login domain.LoginResult
	require.NoError(t, json.Unmarshal(res.Data, &login))
	require.NotEmpty(t, login.Token)
	require.Equal(t, domain.RoleUser, login.Role)
	require.Equal(t, registered.AccountNumber, login.AccountNumber)
	require.WithinDuration(t, time.Now().Add(tokenpkg.Lifetime), login.ExpiresAt, time.Minute)

	status, res = do(t, server, http.MethodGet, "/accounts/me", nil, login.Token)
	require.Equal(t, http.StatusOK, status, res.Error)

	var me domain.Account
	require.NoError(t, json.Unmarshal(res.Data, &me))
	require.Equal(t, registered.ID, me.ID)
	require.Equal(t, int64(0), me.Balance)
	require.True(t, me.IsActive)
	require.Empty(t, me.HashedPassword)
}

func TestTransferAndHistory(t *testing.T) {
	server := integrationtest.SetupServer(t, integrationtest.ConfigPath)

	sender := integrationtest.SeedAccount(t, server.DB, 1000)
	receiver := integrationtest.SeedAccount(t, server.DB, 0)
	inactive := integrationtest.SeedInactiveAccount(t, server.DB, 0)

	status, res := do(t, server, http.MethodPost, "/login",
		map[string]any{"dni": sender.NationalID, "password": integrationtest.SeedPassword}, "")
	require.Equal(t, http.StatusOK, status, res.Error)

	var login domain.LoginResult
	require.NoError(t, json.Unmarshal(res.Data, &login))

	token := login.Token

	transfer := func(from, to string, amount int64, token string) (int, response) {
		body := map[string]any{
			"numero_cuenta_enviar": from,
			"numero_cuenta_recibe": to,
			"cantidad_dinero":      amount,
		}

		return do(t, server, http.MethodPost, "/transferencias", body, token)
	}

	history := func(accountNumber, token string) (int, response) {
		return do(t, server, http.MethodPost, "/historial", map[string]any{"numero_cuenta": accountNumber}, token)
	}

	status, res = history(sender.AccountNumber, token)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, domain.ErrNoHistoryFound.Code, res.Code)

	status, _ = transfer(sender.AccountNumber, receiver.AccountNumber, 300, "")
	require.Equal(t, http.StatusUnauthorized, status)

	status, res = transfer(sender.AccountNumber, receiver.AccountNumber, 300, token)
	require.Equal(t, http.StatusOK, status, res.Error)

	var result domain.TransferResult
	require.NoError(t, json.Unmarshal(res.Data, &result))
	require.Equal(t, domain.TransferResult{
		FromAccountNumber: sender.AccountNumber,
		ToAccountNumber:   receiver.AccountNumber,
	}, result)
	require.Equal(t, int64(700), balanceOf(t, server, sender.AccountNumber))
	require.Equal(t, int64(300), balanceOf(t, server, receiver.AccountNumber))

	failures := []struct {
		name     string
		from, to string
		amount   int64
		wantCode string
	}{
		{"ZeroAmount", sender.AccountNumber, receiver.AccountNumber, 0, domain.ErrNonPositiveAmount.Code},
		{"InsufficientFunds", sender.AccountNumber, receiver.AccountNumber, 701, domain.ErrInsufficientFunds.Code},
		{"SelfTransfer", sender.AccountNumber, sender.AccountNumber, 10, domain.ErrSelfTransferForbidden.Code},
		{"ForeignSender", receiver.AccountNumber, sender.AccountNumber, 10, domain.ErrForbiddenAccountMismatch.Code},
		{"UnknownReceiver", sender.AccountNumber, "000000001", 10, domain.ErrUnknownReceiverAccount.Code},
		{"InactiveReceiver", sender.AccountNumber, inactive.AccountNumber, 10, domain.ErrReceiverInactive.Code},
	}

	for _, f := range failures {
		status, res = transfer(f.from, f.to, f.amount, token)
		require.Equal(t, http.StatusBadRequest, status, f.name)
		require.Equal(t, f.wantCode, res.Code, f.name)
	}

	require.Equal(t, int64(700), balanceOf(t, server, sender.AccountNumber))
	require.Equal(t, int64(300), balanceOf(t, server, receiver.AccountNumber))

	status, res = history(sender.AccountNumber, token)
	require.Equal(t, http.StatusOK, status, res.Error)

	var records []domain.HistoryRecord
	require.NoError(t, json.Unmarshal(res.Data, &records))
	require.Len(t, records, 1)
	require.Equal(t, sender.AccountNumber, records[0].FromAccountNumber)
	require.Equal(t, receiver.AccountNumber, records[0].ToAccountNumber)
	require.Equal(t, int64(300), records[0].Amount)

	status, res = history(receiver.AccountNumber, token)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, domain.ErrForbiddenAccountMismatch.Code, res.Code)
	require.Equal(t, receiver.AccountNumber, res.AccountNumber)
}

func TestSetAccountStatus(t *testing.T) {
	server := integrationtest.SetupServer(t, integrationtest.ConfigPath)

	adminArg := integrationtest.RandomAccountParams(t)
	adminArg.Role = domain.RoleAdmin
	admin := integrationtest.SeedAccountWith(t, server.DB, adminArg)

	user := integrationtest.SeedAccount(t, server.DB, 500)
	other := integrationtest.SeedAccount(t, server.DB, 0)

	url := fmt.Sprintf("/accounts/%s/status", user.AccountNumber)

	status, res := do(t, server, http.MethodPatch, url, map[string]any{"active": false}, tokenFor(t, server, user))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, domain.ErrForbiddenRole.Code, res.Code)

	status, res = do(t, server, http.MethodPatch, url, map[string]any{"active": false}, tokenFor(t, server, admin))
	require.Equal(t, http.StatusOK, status, res.Error)

	var view domain.AccountView
	require.NoError(t, json.Unmarshal(res.Data, &view))
	require.False(t, view.IsActive)
	require.Equal(t, user.AccountNumber, view.AccountNumber)

	body := map[string]any{
		"numero_cuenta_enviar": user.AccountNumber,
		"numero_cuenta_recibe": other.AccountNumber,
		"cantidad_dinero":      100,
	}

	status, res = do(t, server, http.MethodPost, "/transferencias", body, tokenFor(t, server, user))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, domain.ErrSenderInactive.Code, res.Code)

	status, res = do(t, server, http.MethodPatch, "/accounts/000000001/status", map[string]any{"active": true}, tokenFor(t, server, admin))
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, domain.ErrUnknownAccount.Code, res.Code)
}
