package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/delivery"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/registry"
	authMiddleware "github.com/x-xyz/auctionhouse/stores/auth/delivery/http/middleware"
)

type handler struct {
	registry registry.Registry
}

func New(e *echo.Echo, r registry.Registry, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{r}

	e.POST("/assets/mint", h.mint, authMiddleware.Auth())
	e.GET("/assets/:assetId", h.get)
	e.POST("/assets/:assetId/import", h.importAsset, authMiddleware.Auth())
	e.POST("/assets/:assetId/approve", h.approve, authMiddleware.Auth())
	e.POST("/assets/:assetId/transfer", h.transfer, authMiddleware.Auth())
}

// get
//
//	@Summary		Get asset
//	@Tags			assets
//	@Produce		json
//	@Param			assetId	path		string	true	"asset id"
//	@Success		200		{object}	registry.Asset
//	@Failure		404
//	@Router			/assets/{assetId} [get]
func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	a, err := h.registry.Get(ctx, domain.AssetId(c.Param("assetId")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, a)
}

// mint
//
//	@Summary		Mint asset
//	@Description	Minters only. Optionally deploys a royalty splitter between the author and the treasury.
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			params	body		http.mint.params	true	"params"
//	@Success		200		{object}	registry.Asset
//	@Failure		400
//	@Failure		403
//	@Router			/assets/mint [post]
func (h *handler) mint(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		To           domain.Address `json:"to" validate:"required,address"`
		RoyaltyBps   uint16         `json:"royaltyBps" validate:"lte=10000"`
		WithSplitter bool           `json:"withSplitter"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	a, err := h.registry.Mint(ctx, caller, p.To, registry.MintOptions{RoyaltyBps: p.RoyaltyBps, WithSplitter: p.WithSplitter})
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, a)
}

// importAsset
//
//	@Summary		Import asset
//	@Description	Registers a token the caller owns on chain
//	@Tags			assets
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			assetId	path		string	true	"token id"
//	@Success		200		{object}	registry.Asset
//	@Failure		400
//	@Failure		403
//	@Failure		409
//	@Router			/assets/{assetId}/import [post]
func (h *handler) importAsset(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	a, err := h.registry.Import(ctx, caller, domain.AssetId(c.Param("assetId")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, a)
}

// approve
//
//	@Summary		Approve operator
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			assetId	path		string				true	"asset id"
//	@Param			params	body		http.approve.params	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/assets/{assetId}/approve [post]
func (h *handler) approve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Operator domain.Address `json:"operator" validate:"required,address"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.registry.Approve(ctx, caller, domain.AssetId(c.Param("assetId")), p.Operator); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// transfer
//
//	@Summary		Transfer asset
//	@Description	Moves the asset from its owner, the caller must be the owner or approved
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			assetId	path		string					true	"asset id"
//	@Param			params	body		http.transfer.params	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/assets/{assetId}/transfer [post]
func (h *handler) transfer(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		From domain.Address `json:"from" validate:"required,address"`
		To   domain.Address `json:"to" validate:"required,address"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.registry.TransferCustody(ctx, caller, domain.AssetId(c.Param("assetId")), p.From, p.To); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}
