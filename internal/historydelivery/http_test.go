package historydelivery

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

type historyResponse struct {
	Data          []domain.HistoryRecord `json:"data"`
	Error         string                 `json:"error"`
	Code          string                 `json:"code"`
	AccountNumber string                 `json:"account_number"`
}

func TestHistoryAPI(t *testing.T) {
	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	caller := tokenpkg.Identity{
		UserID:        randompkg.Int64Between(1, 1000),
		NationalID:    randompkg.NationalID(),
		AccountNumber: randompkg.AccountNumber(),
		Role:          domain.RoleUser,
	}
	foreign := randompkg.AccountNumber()

	createdAt := time.Now().Truncate(time.Second).UTC()
	records := []domain.HistoryRecord{
		{
			FromAccountNumber: caller.AccountNumber,
			ToAccountNumber:   randompkg.AccountNumber(),
			Amount:            300,
			CreatedAt:         createdAt,
		},
		{
			FromAccountNumber: caller.AccountNumber,
			ToAccountNumber:   randompkg.AccountNumber(),
			Amount:            50,
			CreatedAt:         createdAt.Add(time.Second),
		},
	}

	authorize := func(t *testing.T, r *http.Request) {
		err := middleware.AddAuthorization(r, tokenMaker, middleware.AuthTypeBearer, caller, time.Minute)
		require.NoError(t, err)
	}

	testCases := []struct {
		name          string
		requestBody   gin.H
		setupAuth     func(t *testing.T, r *http.Request)
		buildStubs    func(service *MockService)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name:        "OK",
			requestBody: gin.H{"numero_cuenta": caller.AccountNumber},
			setupAuth:   authorize,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					History(gomock.Any(), gomock.Eq(caller.AccountNumber), gomock.Eq(caller.AccountNumber)).
					Times(1).
					Return(records, nil)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var res historyResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))

				if diff := cmp.Diff(records, res.Data); diff != "" {
					t.Errorf("history mismatch (-want +got):\n%s", diff)
				}

				require.Contains(t, recorder.Body.String(), `"cantidad_dinero":300`)
				require.Contains(t, recorder.Body.String(), `"fecha"`)
			},
		},
		{
			name:        "NoAuthorization",
			requestBody: gin.H{"numero_cuenta": caller.AccountNumber},
			setupAuth:   func(t *testing.T, r *http.Request) {},
			buildStubs: func(service *MockService) {
				service.EXPECT().History(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name:        "MissingAccountNumber",
			requestBody: gin.H{},
			setupAuth:   authorize,
			buildStubs: func(service *MockService) {
				service.EXPECT().History(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				var res historyResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
				require.Equal(t, "AccountNumber is required", res.Error)
			},
		},
		{
			name:        "ForbiddenAccountMismatch",
			requestBody: gin.H{"numero_cuenta": foreign},
			setupAuth:   authorize,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					History(gomock.Any(), gomock.Eq(caller.AccountNumber), gomock.Eq(foreign)).
					Times(1).
					Return(nil, domain.ErrForbiddenAccountMismatch.WithAccount(foreign))
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				var res historyResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
				require.Equal(t, domain.ErrForbiddenAccountMismatch.Code, res.Code)
				require.Equal(t, foreign, res.AccountNumber)
				require.Empty(t, res.Data)
			},
		},
		{
			name:        "NoHistoryFound",
			requestBody: gin.H{"numero_cuenta": caller.AccountNumber},
			setupAuth:   authorize,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					History(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil, domain.ErrNoHistoryFound.WithAccount(caller.AccountNumber))
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)

				var res historyResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
				require.Equal(t, domain.ErrNoHistoryFound.Code, res.Code)
			},
		},
		{
			name:        "AccountInactive",
			requestBody: gin.H{"numero_cuenta": caller.AccountNumber},
			setupAuth:   authorize,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					History(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil, domain.ErrAccountInactive.WithAccount(caller.AccountNumber))
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name:        "InternalError",
			requestBody: gin.H{"numero_cuenta": caller.AccountNumber},
			setupAuth:   authorize,
			buildStubs: func(service *MockService) {
				service.EXPECT().
					History(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil, errorspkg.ErrInternal)
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

			server := gin.New()
			url := "/historial"
			server.POST(url, middleware.AuthMiddleware(tokenMaker), NewHandler(service).List)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
			require.NoError(t, err)
			tc.setupAuth(t, req)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			tc.checkResponse(t, recorder)
		})
	}
}
