package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/validator"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/stores/event/repository"
)

func TestFindAll(t *testing.T) {
	repo := repository.NewMemory()
	c := ctx.Background()
	require.NoError(t, repo.Emit(c, domain.Event{ID: "1", Name: domain.EventAuctionCreated, Args: []string{"0", "1", "10", "360"}}))
	require.NoError(t, repo.Emit(c, domain.Event{ID: "2", Name: domain.EventAuctionBid, Args: []string{"0", "7", "0xb1"}}))

	e := echo.New()
	e.Validator = validator.NewCustomValidator(validator.New())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			ec.Set("ctx", ctx.Background())
			return next(ec)
		}
	})
	New(e, repo)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events?name=AuctionBid", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Data []domain.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Data, 1)
	require.Equal(t, []string{"0", "7", "0xb1"}, res.Data[0].Args)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events?limit=1000", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
