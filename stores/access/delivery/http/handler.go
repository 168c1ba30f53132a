package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/delivery"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/access"
	authMiddleware "github.com/x-xyz/auctionhouse/stores/auth/delivery/http/middleware"
)

type handler struct {
	access access.Control
}

func New(e *echo.Echo, ac access.Control, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{ac}

	g := e.Group("/access")
	g.GET("/:role/members", h.members)
	g.POST("/grant", h.grant, authMiddleware.Auth())
	g.POST("/revoke", h.revoke, authMiddleware.Auth())
}

type roleParams struct {
	Address domain.Address `json:"address" validate:"required,address"`
	Role    access.Role    `json:"role" validate:"required,oneof=ADMIN MINTER"`
}

func bindRole(c echo.Context) (*roleParams, error) {
	p := &roleParams{}
	if err := c.Bind(p); err != nil {
		return nil, err
	}
	if err := c.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// members
//
//	@Summary	List role members
//	@Tags		access
//	@Produce	json
//	@Param		role	path	string	true	"ADMIN or MINTER"
//	@Success	200		{array}	string
//	@Router		/access/{role}/members [get]
func (h *handler) members(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	return delivery.MakeJsonResp(c, http.StatusOK, h.access.Members(ctx, access.Role(c.Param("role"))))
}

// grant
//
//	@Summary		Grant role
//	@Description	Admin only
//	@Tags			access
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			params	body	http.roleParams	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/access/grant [post]
func (h *handler) grant(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	p, err := bindRole(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.access.Grant(ctx, caller, p.Address, p.Role); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// revoke
//
//	@Summary		Revoke role
//	@Description	Admin only
//	@Tags			access
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			params	body	http.roleParams	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/access/revoke [post]
func (h *handler) revoke(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	p, err := bindRole(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := h.access.Revoke(ctx, caller, p.Address, p.Role); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
