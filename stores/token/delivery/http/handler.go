package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/delivery"
	"github.com/x-xyz/auctionhouse/base/log"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/token"
	"github.com/x-xyz/auctionhouse/middleware"
	authMiddleware "github.com/x-xyz/auctionhouse/stores/auth/delivery/http/middleware"
)

type handler struct {
	tokens token.Directory
}

func New(e *echo.Echo, tokens token.Directory, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{tokens}

	g := e.Group("/tokens/:token", middleware.IsValidAddress("token"))
	g.GET("", h.get)
	g.GET("/balances/:address", h.balanceOf, middleware.IsValidAddress("address"))
	g.POST("/transfer", h.transfer, authMiddleware.Auth())
	g.POST("/mint", h.mint, authMiddleware.Auth(), authMiddleware.IsAdmin())
}

type tokenResp struct {
	Address domain.Address `json:"address"`
	Symbol  string         `json:"symbol"`
}

// get
//
//	@Summary	Get a registered token
//	@Tags		tokens
//	@Produce	json
//	@Param		token	path		string	true	"token address"
//	@Success	200		{object}	tokenResp
//	@Failure	404
//	@Router		/tokens/{token} [get]
func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	t, err := h.tokens.Get(ctx, domain.Address(c.Param("token")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, tokenResp{t.Address(), t.Symbol()})
}

// balanceOf
//
//	@Summary	Get token balance
//	@Tags		tokens
//	@Produce	json
//	@Param		token	path		string	true	"token address"
//	@Param		address	path		string	true	"holder address"
//	@Success	200		{object}	delivery.Amount
//	@Failure	404
//	@Router		/tokens/{token}/balances/{address} [get]
func (h *handler) balanceOf(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	t, err := h.tokens.Get(ctx, domain.Address(c.Param("token")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	b, err := t.BalanceOf(ctx, domain.Address(c.Param("address")))
	if err != nil {
		ctx.WithFields(log.Fields{"err": err}).Error("token.BalanceOf failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, delivery.ToAmount(b))
}

type amountParams struct {
	To     domain.Address `json:"to" validate:"required,address"`
	Amount string         `json:"amount" validate:"required,amount"`
}

func (h *handler) bindAmount(c echo.Context) (token.Token, *amountParams, error) {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &amountParams{}
	if err := c.Bind(p); err != nil {
		return nil, nil, err
	}
	if err := c.Validate(p); err != nil {
		return nil, nil, err
	}
	t, err := h.tokens.Get(ctx, domain.Address(c.Param("token")))
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

// transfer
//
//	@Summary	Transfer tokens from the caller
//	@Tags		tokens
//	@Accept		json
//	@Produce	json
//	@Security	ApiKeyAuth
//	@Param		token	path	string				true	"token address"
//	@Param		params	body	http.amountParams	true	"params"
//	@Success	200
//	@Failure	400
//	@Router		/tokens/{token}/transfer [post]
func (h *handler) transfer(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	t, p, err := h.bindAmount(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, err := domain.ParseAmount(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := t.Transfer(ctx, caller, p.To, amount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// mint
//
//	@Summary	Mint tokens
//	@Tags		tokens
//	@Accept		json
//	@Produce	json
//	@Security	ApiKeyAuth
//	@Param		token	path	string				true	"token address"
//	@Param		params	body	http.amountParams	true	"params"
//	@Success	200
//	@Failure	400
//	@Failure	403
//	@Router		/tokens/{token}/mint [post]
func (h *handler) mint(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	t, p, err := h.bindAmount(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, err := domain.ParseAmount(p.Amount)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := t.Mint(ctx, p.To, amount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
