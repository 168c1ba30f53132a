package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/delivery"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/ledger"
	"github.com/x-xyz/auctionhouse/middleware"
	authMiddleware "github.com/x-xyz/auctionhouse/stores/auth/delivery/http/middleware"
)

type handler struct {
	ledgers ledger.Directory
}

func New(e *echo.Echo, ledgers ledger.Directory, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{ledgers}

	g := e.Group("/ledger/:holder", middleware.IsValidAddress("holder"))
	g.GET("/pending/:payee", h.pending, middleware.IsValidAddress("payee"))
	g.GET("/entries", h.entries)
	g.POST("/withdraw", h.withdraw, authMiddleware.Auth())
	g.POST("/sweep", h.sweep, authMiddleware.Auth(), authMiddleware.IsAdmin())
}

type entry struct {
	Payee  domain.Address  `json:"payee"`
	Amount delivery.Amount `json:"amount"`
}

// pending
//
//	@Summary		Get pending balance
//	@Description	Value the holder owes the payee after failed pushes
//	@Tags			ledger
//	@Produce		json
//	@Param			holder	path		string	true	"engine or splitter address"
//	@Param			payee	path		string	true	"payee address"
//	@Success		200		{object}	delivery.Amount
//	@Failure		400
//	@Failure		404
//	@Router			/ledger/{holder}/pending/{payee} [get]
func (h *handler) pending(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	l, err := h.ledgers.Get(ctx, domain.Address(c.Param("holder")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	amount, err := l.BalanceOf(ctx, domain.Address(c.Param("payee")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, delivery.ToAmount(amount))
}

// entries
//
//	@Summary		List pending balances
//	@Tags			ledger
//	@Produce		json
//	@Param			holder	path		string	true	"engine or splitter address"
//	@Success		200		{array}		http.entry
//	@Failure		404
//	@Router			/ledger/{holder}/entries [get]
func (h *handler) entries(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	l, err := h.ledgers.Get(ctx, domain.Address(c.Param("holder")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	entries, err := l.Entries(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	res := make([]entry, 0, len(entries))
	for _, e := range entries {
		amount, err := domain.ParseAmount(e.Amount)
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
		}
		res = append(res, entry{Payee: e.Payee, Amount: delivery.ToAmount(amount)})
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// withdraw
//
//	@Summary		Withdraw pending balance
//	@Description	Pays the caller its pending balance. A rejected push keeps the balance and returns zero.
//	@Tags			ledger
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			holder	path		string	true	"engine or splitter address"
//	@Success		200		{object}	delivery.Amount
//	@Failure		401
//	@Failure		404
//	@Router			/ledger/{holder}/withdraw [post]
func (h *handler) withdraw(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	l, err := h.ledgers.Get(ctx, domain.Address(c.Param("holder")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	amount, err := l.Withdraw(ctx, caller)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, delivery.ToAmount(amount))
}

// sweep
//
//	@Summary		Sweep pending balance
//	@Description	Admin recovery of a payee's pending balance, only while paused
//	@Tags			ledger
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			holder	path		string				true	"engine or splitter address"
//	@Param			params	body		http.sweep.params	true	"params"
//	@Success		200		{object}	delivery.Amount
//	@Failure		400
//	@Failure		403
//	@Failure		409
//	@Router			/ledger/{holder}/sweep [post]
func (h *handler) sweep(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Payee domain.Address `json:"payee" validate:"required,address"`
		To    domain.Address `json:"to" validate:"required,address"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	l, err := h.ledgers.Get(ctx, domain.Address(c.Param("holder")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	amount, err := l.Sweep(ctx, caller, p.Payee, p.To)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, delivery.ToAmount(amount))
}
