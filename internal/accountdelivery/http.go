// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

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

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Get(ctx context.Context, accountNumber string) (domain.Account, error)
	SetStatus(ctx context.Context, actorRole, accountNumber string, active bool) (domain.AccountView, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

// Me handles http request for the account of the authenticated caller.
func (h *Handler) Me(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	payload := middleware.Payload(gctx)

	account, err := h.service.Get(ctx, payload.AccountNumber)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: account})
}

type statusURI struct {
	AccountNumber string `uri:"account_number" binding:"required,account_number"`
}

type statusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetStatus handles http request to activate or deactivate an account.
func (h *Handler) SetStatus(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri statusURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	var req statusRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	payload := middleware.Payload(gctx)

	account, err := h.service.SetStatus(ctx, payload.Role, uri.AccountNumber, *req.Active)
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: account})
}
