package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/delivery"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/account"
	"github.com/x-xyz/auctionhouse/middleware"
	authMiddleware "github.com/x-xyz/auctionhouse/stores/auth/delivery/http/middleware"
)

type handler struct {
	au account.Usecase
}

func New(e *echo.Echo, au account.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{au}

	g := e.Group("/accounts")
	g.GET("/:address/balance", h.balance, middleware.IsValidAddress("address"))
	g.POST("/faucet", h.faucet, authMiddleware.Auth(), authMiddleware.IsAdmin())
}

// balance
//
//	@Summary	Get native balance
//	@Tags		accounts
//	@Produce	json
//	@Param		address	path		string	true	"account address"
//	@Success	200		{object}	delivery.Amount
//	@Failure	400
//	@Router		/accounts/{address}/balance [get]
func (h *handler) balance(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	b, err := h.au.Balance(ctx, domain.Address(c.Param("address")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, delivery.ToAmount(b))
}

// faucet
//
//	@Summary		Mint test value
//	@Description	Admin only, enabled on memory networks
//	@Tags			accounts
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			params	body	http.faucet.params	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/accounts/faucet [post]
func (h *handler) faucet(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		To     domain.Address `json:"to" validate:"required,address"`
		Amount string         `json:"amount" validate:"required,amount"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, err := domain.ParseAmount(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.au.Faucet(ctx, caller, p.To, amount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
