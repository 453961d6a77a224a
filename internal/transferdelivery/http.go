// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/p2p-bank/internal/domain"
	"github.com/go-petr/p2p-bank/internal/middleware"
	"github.com/go-petr/p2p-bank/pkg/errorspkg"
	"github.com/go-petr/p2p-bank/pkg/web"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, callerAccountNumber string, arg domain.CreateTransferParams) (domain.TransferResult, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type request struct {
	// The sender is checked against the caller before its format.
	FromAccountNumber string `json:"numero_cuenta_enviar" binding:"required"`
	ToAccountNumber   string `json:"numero_cuenta_recibe" binding:"required,account_number"`
	// An explicit zero must reach the service and fail there as a non-positive amount.
	Amount *int64 `json:"cantidad_dinero" binding:"required"`
}

// Create handles http request to transfer money from the caller's account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	payload := middleware.Payload(gctx)

	arg := domain.CreateTransferParams{
		FromAccountNumber: req.FromAccountNumber,
		ToAccountNumber:   req.ToAccountNumber,
		Amount:            *req.Amount,
	}

	result, err := h.service.Transfer(ctx, payload.AccountNumber, arg)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: result})
}
