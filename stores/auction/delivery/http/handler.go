package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/delivery"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/auction"
	"github.com/x-xyz/auctionhouse/service/ens"
	authMiddleware "github.com/x-xyz/auctionhouse/stores/auth/delivery/http/middleware"
)

type handler struct {
	auction auction.UseCase
	// names resolves *.eth recipients, optional
	names ens.ENS
}

func New(e *echo.Echo, uc auction.UseCase, names ens.ENS, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{uc, names}

	e.GET("/engine", h.engine)
	e.POST("/auctions", h.create, authMiddleware.Auth())
	e.GET("/auctions", h.findAll)

	g := e.Group("/auctions/:assetId")
	g.GET("", h.get)
	g.GET("/lastBid", h.lastBid)
	g.POST("/bid", h.bid, authMiddleware.Auth())
	g.POST("/cancel", h.cancel, authMiddleware.Auth())
	g.POST("/cancelWhenPaused", h.cancelWhenPaused, authMiddleware.Auth())
	g.POST("/finish", h.finish, authMiddleware.Auth())

	e.POST("/assets/:assetId/royalty", h.setRoyalty, authMiddleware.Auth())

	a := e.Group("/admin", authMiddleware.Auth())
	a.POST("/pause", h.pause)
	a.POST("/unpause", h.unpause)
	a.POST("/withdrawUnclaimed", h.withdrawUnclaimed)
}

type auctionResp struct {
	AssetId       domain.AssetId  `json:"assetId"`
	Seller        domain.Address  `json:"seller"`
	StartingPrice delivery.Amount `json:"startingPrice"`
	EndingPrice   delivery.Amount `json:"endingPrice"`
	// Duration in seconds
	Duration      int64           `json:"duration"`
	CreatedAt     time.Time       `json:"createdAt"`
	Deadline      time.Time       `json:"deadline"`
	LastBidder    domain.Address  `json:"lastBidder,omitempty"`
	LastBidAmount delivery.Amount `json:"lastBidAmount"`
	LastBidTime   *time.Time      `json:"lastBidTime,omitempty"`
}

func toAuctionResp(a *auction.Auction) auctionResp {
	res := auctionResp{
		AssetId:       a.AssetId,
		Seller:        a.Seller,
		StartingPrice: delivery.ToAmount(a.StartingPrice),
		EndingPrice:   delivery.ToAmount(a.EndingPrice),
		Duration:      int64(a.Duration / time.Second),
		CreatedAt:     a.CreatedAt,
		Deadline:      a.Deadline(),
		LastBidder:    a.LastBidder,
		LastBidAmount: delivery.ToAmount(a.Escrow()),
	}
	if a.HasBid() {
		t := a.LastBidTime
		res.LastBidTime = &t
	}
	return res
}

type engineResp struct {
	Address  domain.Address `json:"address"`
	Treasury domain.Address `json:"treasury"`
	FeeBps   uint16         `json:"feeBps"`
	Paused   bool           `json:"paused"`
}

// engine
//
//	@Summary	Get engine
//	@Tags		auctions
//	@Produce	json
//	@Success	200	{object}	http.engineResp
//	@Router		/engine [get]
func (h *handler) engine(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	return delivery.MakeJsonResp(c, http.StatusOK, engineResp{
		Address:  h.auction.Address(),
		Treasury: h.auction.Treasury(),
		FeeBps:   h.auction.FeeBps(),
		Paused:   h.auction.Paused(ctx),
	})
}

// create
//
//	@Summary		Create auction
//	@Description	Moves the asset into the engine's custody and opens an auction. Owner or admin only.
//	@Tags			auctions
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			params	body	http.create.params	true	"params"
//	@Success		200		{object}	http.auctionResp
//	@Failure		400
//	@Failure		403
//	@Failure		409
//	@Router			/auctions [post]
func (h *handler) create(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		AssetId       domain.AssetId `json:"assetId" validate:"required,numeric"`
		StartingPrice string         `json:"startingPrice" validate:"required,amount"`
		EndingPrice   string         `json:"endingPrice" validate:"required,amount"`
		// Duration in seconds
		Duration int64 `json:"duration" validate:"required,gt=0"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	startingPrice, err := domain.ParseAmount(p.StartingPrice)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	endingPrice, err := domain.ParseAmount(p.EndingPrice)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.auction.CreateAuction(ctx, caller, p.AssetId, startingPrice, endingPrice, time.Duration(p.Duration)*time.Second); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	a, err := h.auction.GetAuction(ctx, p.AssetId)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toAuctionResp(a))
}

// findAll
//
//	@Summary	List open auctions
//	@Tags		auctions
//	@Produce	json
//	@Param		seller	query	string	false	"seller address"
//	@Param		bidder	query	string	false	"current leader"
//	@Param		offset	query	int		false	"offset"
//	@Param		limit	query	int		false	"limit, at most 100"
//	@Success	200		{array}	http.auctionResp
//	@Failure	400
//	@Router		/auctions [get]
func (h *handler) findAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Seller domain.Address `query:"seller" validate:"omitempty,address"`
		Bidder domain.Address `query:"bidder" validate:"omitempty,address"`
		Offset int64          `query:"offset" validate:"min=0"`
		Limit  int64          `query:"limit" validate:"min=0,max=100"`
	}

	p := params{Limit: 20}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	opts := []auction.FindAllOptionsFunc{auction.WithPagination(p.Offset, p.Limit)}
	if !p.Seller.IsEmpty() {
		opts = append(opts, auction.WithSeller(p.Seller))
	}
	if !p.Bidder.IsEmpty() {
		opts = append(opts, auction.WithLastBidder(p.Bidder))
	}

	auctions, err := h.auction.FindAll(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	res := make([]auctionResp, 0, len(auctions))
	for i := range auctions {
		res = append(res, toAuctionResp(&auctions[i]))
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// get
//
//	@Summary	Get auction
//	@Tags		auctions
//	@Produce	json
//	@Param		assetId	path		string	true	"asset id"
//	@Success	200		{object}	http.auctionResp
//	@Failure	404
//	@Router		/auctions/{assetId} [get]
func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	a, err := h.auction.GetAuction(ctx, domain.AssetId(c.Param("assetId")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, toAuctionResp(a))
}

// lastBid
//
//	@Summary		Get last bid
//	@Description	The value the engine holds for the auction, zero before any bid
//	@Tags			auctions
//	@Produce		json
//	@Param			assetId	path		string	true	"asset id"
//	@Success		200		{object}	delivery.Amount
//	@Failure		404
//	@Router			/auctions/{assetId}/lastBid [get]
func (h *handler) lastBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	amount, err := h.auction.GetLastBid(ctx, domain.AssetId(c.Param("assetId")))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, delivery.ToAmount(amount))
}

// bid
//
//	@Summary		Bid
//	@Description	Pulls amount from the caller. Value above the ending price is sent back, the previous leader is refunded.
//	@Tags			auctions
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			assetId	path	string			true	"asset id"
//	@Param			params	body	http.bid.params	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		404
//	@Failure		409
//	@Router			/auctions/{assetId}/bid [post]
func (h *handler) bid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Amount string `json:"amount" validate:"required,amount"`
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

	if err := h.auction.Bid(ctx, caller, domain.AssetId(c.Param("assetId")), amount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// cancel
//
//	@Summary		Cancel auction
//	@Description	Seller only, before the deadline
//	@Tags			auctions
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			assetId	path	string	true	"asset id"
//	@Success		200
//	@Failure		403
//	@Failure		409
//	@Router			/auctions/{assetId}/cancel [post]
func (h *handler) cancel(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.auction.CancelAuction(ctx, caller, domain.AssetId(c.Param("assetId"))); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// cancelWhenPaused
//
//	@Summary		Cancel auction while paused
//	@Description	Admin only, the engine must be paused
//	@Tags			auctions
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			assetId	path	string	true	"asset id"
//	@Success		200
//	@Failure		403
//	@Failure		409
//	@Router			/auctions/{assetId}/cancelWhenPaused [post]
func (h *handler) cancelWhenPaused(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.auction.CancelAuctionWhenPaused(ctx, caller, domain.AssetId(c.Param("assetId"))); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// finish
//
//	@Summary		Finish auction
//	@Description	Anyone may finish once the deadline passed or the ending price was bid
//	@Tags			auctions
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			assetId	path	string	true	"asset id"
//	@Success		200
//	@Failure		409
//	@Router			/auctions/{assetId}/finish [post]
func (h *handler) finish(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.auction.FinishAuction(ctx, caller, domain.AssetId(c.Param("assetId"))); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// setRoyalty
//
//	@Summary		Set asset royalty
//	@Description	Asset owner or admin only
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			assetId	path	string					true	"asset id"
//	@Param			params	body	http.setRoyalty.params	true	"params"
//	@Success		200
//	@Failure		400
//	@Failure		403
//	@Router			/assets/{assetId}/royalty [post]
func (h *handler) setRoyalty(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Receiver domain.Address `json:"receiver" validate:"required,address"`
		Bps      uint16         `json:"bps" validate:"lte=10000"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.auction.SetAssetRoyalty(ctx, caller, domain.AssetId(c.Param("assetId")), p.Receiver, p.Bps); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// pause
//
//	@Summary	Pause engine
//	@Tags		admin
//	@Security	ApiKeyAuth
//	@Success	200
//	@Failure	403
//	@Failure	409
//	@Router		/admin/pause [post]
func (h *handler) pause(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.auction.Pause(ctx, caller); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// unpause
//
//	@Summary	Unpause engine
//	@Tags		admin
//	@Security	ApiKeyAuth
//	@Success	200
//	@Failure	403
//	@Failure	409
//	@Router		/admin/unpause [post]
func (h *handler) unpause(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	if err := h.auction.Unpause(ctx, caller); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// withdrawUnclaimed
//
//	@Summary		Withdraw unclaimed value
//	@Description	Paused only. Sends the engine balance nobody has a claim on. `to` may be an ens name.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			params	body		http.withdrawUnclaimed.params	true	"params"
//	@Success		200		{object}	delivery.Amount
//	@Failure		403
//	@Failure		409
//	@Router			/admin/withdrawUnclaimed [post]
func (h *handler) withdrawUnclaimed(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		To string `json:"to" validate:"required"`
	}

	p := params{}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	to, err := ens.Recipient(ctx, h.names, p.To)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	amount, err := h.auction.WithdrawUnclaimed(ctx, caller, to)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, delivery.ToAmount(amount))
}
