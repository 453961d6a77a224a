package accountdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/p2p-bank/internal/domain"
	"github.com/go-petr/p2p-bank/internal/middleware"
	"github.com/go-petr/p2p-bank/pkg/errorspkg"
	"github.com/go-petr/p2p-bank/pkg/randompkg"
	"github.com/go-petr/p2p-bank/pkg/tokenpkg"
	"github.com/go-petr/p2p-bank/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.ReleaseMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("account_number", web.ValidAccountNumber); err != nil {
			fmt.Fprintf(os.Stderr, "RegisterValidation returned error: %v\n", err)
			os.Exit(1)
		}
	}

	os.Exit(m.Run())
}

func randomAccount(role string) domain.Account {
	return domain.Account{
		ID:             randompkg.Int64Between(1, 1000),
		FullName:       randompkg.FullName(),
		Email:          randompkg.Email(),
		NationalID:     randompkg.NationalID(),
		HashedPassword: randompkg.String(60),
		AccountNumber:  randompkg.AccountNumber(),
		Role:           role,
		IsActive:       true,
		Balance:        randompkg.Int64Between(0, 10000),
		CreatedAt:      time.Now().Truncate(time.Second).UTC(),
	}
}

func identityOf(a domain.Account) tokenpkg.Identity {
	return tokenpkg.Identity{
		UserID:        a.ID,
		NationalID:    a.NationalID,
		AccountNumber: a.AccountNumber,
		Role:          a.Role,
	}
}

func newServer(service Service, tokenMaker tokenpkg.Maker) *gin.Engine {
	h := NewHandler(service)

	server := gin.New()
	authRoutes := server.Group("/").Use(middleware.AuthMiddleware(tokenMaker))
	authRoutes.GET("/accounts/me", h.Me)
	authRoutes.PATCH("/accounts/:account_number/status", h.SetStatus)

	return server
}

type meResponse struct {
	Data  domain.Account `json:"data"`
	Error string         `json:"error"`
	Code  string         `json:"code"`
}

type statusResponse struct {
	Data          domain.AccountView `json:"data"`
	Error         string             `json:"error"`
	Code          string             `json:"code"`
	AccountNumber string             `json:"account_number"`
}

func TestMeAPI(t *testing.T) {
	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	account := randomAccount(domain.RoleUser)

	testCases := []struct {
		name          string
		setupAuth     func(t *testing.T, r *http.Request)
		buildStubs    func(service *MockService)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			setupAuth: func(t *testing.T, r *http.Request) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, identityOf(account), time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.NotContains(t, recorder.Body.String(), account.HashedPassword)

				var res meResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))

				want := account
				want.HashedPassword = ""

				if diff := cmp.Diff(want, res.Data); diff != "" {
					t.Errorf("account mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:      "NoAuthorization",
			setupAuth: func(t *testing.T, r *http.Request) {},
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "UnknownAccount",
			setupAuth: func(t *testing.T, r *http.Request) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, identityOf(account), time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(domain.Account{}, domain.ErrUnknownAccount.WithAccount(account.AccountNumber))
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				var res meResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
				require.Equal(t, domain.ErrUnknownAccount.Code, res.Code)
			},
		},
		{
			name: "InternalError",
			setupAuth: func(t *testing.T, r *http.Request) {
				err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, identityOf(account), time.Minute)
				require.NoError(t, err)
			},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			req, err := http.NewRequest(http.MethodGet, "/accounts/me", nil)
			require.NoError(t, err)
			tc.setupAuth(t, req)

			recorder := httptest.NewRecorder()
			newServer(service, tokenMaker).ServeHTTP(recorder, req)

			tc.checkResponse(t, recorder)
		})
	}
}

func TestSetStatusAPI(t *testing.T) {
	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	admin := randomAccount(domain.RoleAdmin)
	user := randomAccount(domain.RoleUser)
	target := randomAccount(domain.RoleUser)

	deactivated := target
	deactivated.IsActive = false

	testCases := []struct {
		name          string
		caller        domain.Account
		accountNumber string
		requestBody   gin.H
		buildStubs    func(service *MockService)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name:          "OK",
			caller:        admin,
			accountNumber: target.AccountNumber,
			requestBody:   gin.H{"active": false},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					SetStatus(gomock.Any(), gomock.Eq(domain.RoleAdmin), gomock.Eq(target.AccountNumber), gomock.Eq(false)).
					Times(1).
					Return(deactivated.View(), nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
				require.NotContains(t, recorder.Body.String(), "balance")

				var res statusResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))

				if diff := cmp.Diff(deactivated.View(), res.Data); diff != "" {
					t.Errorf("account mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:          "ForbiddenRole",
			caller:        user,
			accountNumber: target.AccountNumber,
			requestBody:   gin.H{"active": false},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					SetStatus(gomock.Any(), gomock.Eq(domain.RoleUser), gomock.Eq(target.AccountNumber), gomock.Eq(false)).
					Times(1).
					Return(domain.AccountView{}, domain.ErrForbiddenRole)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				var res statusResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
				require.Equal(t, domain.ErrForbiddenRole.Code, res.Code)
			},
		},
		{
			name:          "InvalidAccountNumber",
			caller:        admin,
			accountNumber: "12ab",
			requestBody:   gin.H{"active": true},
			buildStubs: func(service *MockService) {
				service.EXPECT().SetStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:          "MissingActive",
			caller:        admin,
			accountNumber: target.AccountNumber,
			requestBody:   gin.H{},
			buildStubs: func(service *MockService) {
				service.EXPECT().SetStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				var res statusResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
				require.Equal(t, "Active is required", res.Error)
			},
		},
		{
			name:          "UnknownAccount",
			caller:        admin,
			accountNumber: target.AccountNumber,
			requestBody:   gin.H{"active": true},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					SetStatus(gomock.Any(), gomock.Any(), gomock.Eq(target.AccountNumber), gomock.Eq(true)).
					Times(1).
					Return(domain.AccountView{}, domain.ErrUnknownAccount.WithAccount(target.AccountNumber))
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				var res statusResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
				require.Equal(t, target.AccountNumber, res.AccountNumber)
			},
		},
		{
			name:          "InternalError",
			caller:        admin,
			accountNumber: target.AccountNumber,
			requestBody:   gin.H{"active": true},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					SetStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.AccountView{}, errorspkg.ErrInternal)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			url := fmt.Sprintf("/accounts/%s/status", tc.accountNumber)

			req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(body))
			require.NoError(t, err)

			err = middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, identityOf(tc.caller), time.Minute)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			newServer(service, tokenMaker).ServeHTTP(recorder, req)

			tc.checkResponse(t, recorder)
		})
	}
}
