package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/delivery"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/royalty"
	"github.com/x-xyz/auctionhouse/middleware"
	authMiddleware "github.com/x-xyz/auctionhouse/stores/auth/delivery/http/middleware"
)

type handler struct {
	factory royalty.Factory
	network domain.Network
}

func New(e *echo.Echo, factory royalty.Factory, network domain.Network, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{factory, network}

	e.POST("/splitters", h.deploy, authMiddleware.Auth(), authMiddleware.IsAdmin())
	e.GET("/splitters", h.list)

	g := e.Group("/splitters/:address", middleware.IsValidAddress("address"))
	g.GET("", h.get)
	g.POST("/pay", h.pay, authMiddleware.Auth())
	g.POST("/royalties", h.getRoyalties, authMiddleware.Auth())
	g.POST("/royalties/token", h.getRoyaltiesToken, authMiddleware.Auth())
	g.POST("/withdraw", h.withdraw, authMiddleware.Auth())
}

type splitterResp struct {
	Address domain.Address  `json:"address"`
	PayeeA  domain.Address  `json:"payeeA"`
	PayeeB  domain.Address  `json:"payeeB"`
	Pending delivery.Amount `json:"pending"`
}

func (h *handler) describe(c ctx.Ctx, s royalty.Splitter) (*splitterResp, error) {
	a, b, err := s.Payees(c)
	if err != nil {
		return nil, err
	}
	pending, err := s.ShowPendingRoyalties(c)
	if err != nil {
		return nil, err
	}
	return &splitterResp{
		Address: s.Address(),
		PayeeA:  a,
		PayeeB:  b,
		Pending: delivery.ToAmount(pending),
	}, nil
}

// deploy
//
//	@Summary		Deploy splitter
//	@Description	Admin only. Deploys a splitter routing every payment 50/50 to both payees.
//	@Tags			splitters
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			params	body		http.deploy.params	true	"params"
//	@Success		200		{object}	http.splitterResp
//	@Failure		400
//	@Failure		403
//	@Router			/splitters [post]
func (h *handler) deploy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		PayeeA domain.Address `json:"payeeA" validate:"required,address"`
		PayeeB domain.Address `json:"payeeB" validate:"required,address"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	s, err := h.factory.Deploy(ctx, p.PayeeA, p.PayeeB)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	res, err := h.describe(ctx, s)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// list
//
//	@Summary		List splitters
//	@Tags			splitters
//	@Produce		json
//	@Success		200	{array}	royalty.Record
//	@Router			/splitters [get]
func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	records, err := h.factory.FindAll(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, records)
}

// get
//
//	@Summary		Get splitter
//	@Tags			splitters
//	@Produce		json
//	@Param			address	path		string	true	"splitter address"
//	@Success		200		{object}	http.splitterResp
//	@Failure		404
//	@Router			/splitters/{address} [get]
func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	s, err := h.factory.Get(ctx, domain.Address(c.Param("address")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	res, err := h.describe(ctx, s)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// pay
//
//	@Summary		Pay splitter
//	@Description	Sends value from the caller to the splitter. gasLimit bounds the split, zero forwards all gas.
//	@Tags			splitters
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			address	path		string			true	"splitter address"
//	@Param			params	body		http.pay.params	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		404
//	@Router			/splitters/{address}/pay [post]
func (h *handler) pay(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Amount   string `json:"amount" validate:"required,amount"`
		GasLimit uint64 `json:"gasLimit"`
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
	gasLimit := p.GasLimit
	if gasLimit == 0 {
		gasLimit = gas.Unlimited
	}

	s, err := h.factory.Get(ctx, domain.Address(c.Param("address")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	if err := h.network.Transfer(ctx, caller, s.Address(), amount, gasLimit); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// getRoyalties
//
//	@Summary		Split royalties
//	@Description	Payees only. Splits the value the splitter kept.
//	@Tags			splitters
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			address	path	string	true	"splitter address"
//	@Success		200
//	@Failure		403
//	@Failure		409
//	@Router			/splitters/{address}/royalties [post]
func (h *handler) getRoyalties(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	s, err := h.factory.Get(ctx, domain.Address(c.Param("address")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	if err := s.GetRoyalties(ctx, caller); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// getRoyaltiesToken
//
//	@Summary		Split token royalties
//	@Tags			splitters
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			address	path		string						true	"splitter address"
//	@Param			params	body		http.getRoyaltiesToken.params	true	"params"
//	@Success		200
//	@Failure		403
//	@Failure		404
//	@Router			/splitters/{address}/royalties/token [post]
func (h *handler) getRoyaltiesToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Token domain.Address `json:"token" validate:"required,address"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	s, err := h.factory.Get(ctx, domain.Address(c.Param("address")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	if err := s.GetRoyaltiesToken(ctx, caller, p.Token); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// withdraw
//
//	@Summary		Withdraw royalties
//	@Description	Pays the caller what failed pushes left in the splitter's ledger
//	@Tags			splitters
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			address	path		string	true	"splitter address"
//	@Success		200		{object}	delivery.Amount
//	@Failure		404
//	@Router			/splitters/{address}/withdraw [post]
func (h *handler) withdraw(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	s, err := h.factory.Get(ctx, domain.Address(c.Param("address")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	amount, err := s.Withdraw(ctx, caller)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, delivery.ToAmount(amount))
}
