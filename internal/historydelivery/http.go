// Package historydelivery manages delivery layer of the transfer history.
package historydelivery

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

// Service provides service layer interface needed by history delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package historydelivery
type Service interface {
	History(ctx context.Context, callerAccountNumber, accountNumber string) ([]domain.HistoryRecord, error)
}

// Handler facilitates history delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns history handler.
func NewHandler(hs Service) *Handler {
	return &Handler{service: hs}
}

type request struct {
	AccountNumber string `json:"numero_cuenta" binding:"required,account_number"`
}

// List handles http request for the transfers sent from the caller's account.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	payload := middleware.Payload(gctx)

	records, err := h.service.History(ctx, payload.AccountNumber, req.AccountNumber)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: records})
}
