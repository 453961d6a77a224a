// Package userdelivery manages delivery layer of users.
package userdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/p2p-bank/internal/domain"
	"github.com/go-petr/p2p-bank/pkg/errorspkg"
	"github.com/go-petr/p2p-bank/pkg/web"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Register(ctx context.Context, arg domain.RegisterParams) (domain.AccountView, error)
	Login(ctx context.Context, nationalID, password string) (domain.LoginResult, error)
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns user handler.
func NewHandler(us Service) *Handler {
	return &Handler{
		service: us,
	}
}

type registerRequest struct {
	FullName        string `json:"fullname" binding:"required,max=255"`
	Email           string `json:"email" binding:"required,email,max=255"`
	NationalID      string `json:"dni" binding:"required,numeric,min=6,max=20"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type registerData struct {
	ID            int64  `json:"id"`
	AccountNumber string `json:"numero_cuenta"`
	Status        string `json:"status"`
}

// Register handles http request to register a user and open the account.
func (h *Handler) Register(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req registerRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	arg := domain.RegisterParams{
		FullName:        req.FullName,
		Email:           req.Email,
		NationalID:      req.NationalID,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}

	account, err := h.service.Register(ctx, arg)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindValidation, domain.KindConflict:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: registerData{
			ID:            account.ID,
			AccountNumber: account.AccountNumber,
			Status:        "user registered",
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type loginRequest struct {
	NationalID string `json:"dni" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Login handles http login request and returns the access token and role.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	result, err := h.service.Login(ctx, req.NationalID, req.Password)
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: result})
}
