package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/delivery"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/middleware"
	"github.com/x-xyz/auctionhouse/service/ens"
)

type handler struct {
	ens ens.ENS
}

func New(e *echo.Echo, ens ens.ENS) {
	h := &handler{
		ens,
	}

	g := e.Group("/ens")

	g.GET("/resolve/:name", h.Resolve)

	g.GET("/reverse-resolve/:address", h.ReverseResolve, middleware.IsValidAddress("address"))
}

// Resolve
//
//	@Summary	Resolve ens name
//	@Tags		ens
//	@Produce	json
//	@Param		name	path		string	true	"ens name"	example(vitalik.eth)
//	@Success	200		{string}	string
//	@Failure	400
//	@Router		/ens/resolve/{name} [get]
func (h *handler) Resolve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	name := c.Param("name")
	if !ens.IsName(name) {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	address, err := h.ens.Resolve(ctx, name)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, address)
}

// ReverseResolve
//
//	@Summary	Reverse resolve address
//	@Tags		ens
//	@Produce	json
//	@Param		address	path		string	true	"address"
//	@Success	200		{string}	string
//	@Failure	400
//	@Router		/ens/reverse-resolve/{address} [get]
func (h *handler) ReverseResolve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	name, err := h.ens.ReverseResolve(ctx, domain.Address(c.Param("address")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	return delivery.MakeJsonResp(c, http.StatusOK, name)
}
