package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/delivery"
	"github.com/x-xyz/auctionhouse/domain"
)

type handler struct {
	repo domain.EventRepo
}

func New(e *echo.Echo, repo domain.EventRepo, mws ...echo.MiddlewareFunc) {
	h := &handler{repo}
	e.GET("/events", h.findAll, mws...)
}

// findAll
//
//	@Summary		List events
//	@Description	Events emitted by the engine, the access control and the splitters, oldest first
//	@Tags			events
//	@Produce		json
//	@Param			name	query		string	false	"event name"	example(AuctionBid)
//	@Param			emitter	query		string	false	"emitting address"
//	@Param			offset	query		int		false	"offset"
//	@Param			limit	query		int		false	"limit, at most 500"
//	@Success		200		{array}		domain.Event
//	@Failure		400
//	@Failure		500
//	@Router			/events [get]
func (h *handler) findAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Name    string `query:"name"`
		Emitter string `query:"emitter"`
		Offset  int    `query:"offset"`
		Limit   int    `query:"limit" validate:"min=0,max=500"`
	}

	p := params{Limit: 100}
	if err := c.Bind(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	opts := []domain.EventFindAllOptionsFunc{domain.EventWithPagination(p.Offset, p.Limit)}
	if p.Name != "" {
		opts = append(opts, domain.EventWithName(domain.EventName(p.Name)))
	}
	if p.Emitter != "" {
		opts = append(opts, domain.EventWithEmitter(domain.Address(p.Emitter)))
	}

	events, err := h.repo.FindAll(ctx, opts...)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, events)
}
