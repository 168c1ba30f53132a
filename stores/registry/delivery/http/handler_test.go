package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/registry"
	accessUsecase "github.com/x-xyz/auctionhouse/stores/access/usecase"
	authMiddleware "github.com/x-xyz/auctionhouse/stores/auth/delivery/http/middleware"
	"github.com/x-xyz/auctionhouse/stores/registry/repository"
	"github.com/x-xyz/auctionhouse/stores/registry/usecase"
)

const (
	minter = domain.Address("0xaa00000000000000000000000000000000000001")
	alice  = domain.Address("0xa000000000000000000000000000000000000002")
)

func TestGet(t *testing.T) {
	access := accessUsecase.New(&accessUsecase.Config{Minters: []domain.Address{minter}})
	r := usecase.New(&usecase.Config{Repo: repository.NewMemory(), Access: access})
	_, err := r.Mint(ctx.Background(), minter, alice, registry.MintOptions{RoyaltyBps: 100})
	require.NoError(t, err)

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			ec.Set("ctx", ctx.Background())
			return next(ec)
		}
	})
	New(e, r, authMiddleware.New(nil, access))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/0", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Data registry.Asset `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, alice, res.Data.Owner)
	require.Equal(t, minter, res.Data.RoyaltyReceiver)
	require.Equal(t, uint16(100), res.Data.RoyaltyBps)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/5", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
