package http

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/gas"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/service/network"
	accessUsecase "github.com/x-xyz/auctionhouse/stores/access/usecase"
	accountRepo "github.com/x-xyz/auctionhouse/stores/account/repository"
	authMiddleware "github.com/x-xyz/auctionhouse/stores/auth/delivery/http/middleware"
	ledgerRepo "github.com/x-xyz/auctionhouse/stores/ledger/repository"
	paymentUsecase "github.com/x-xyz/auctionhouse/stores/payment/usecase"
	"github.com/x-xyz/auctionhouse/stores/royalty/repository"
	"github.com/x-xyz/auctionhouse/stores/royalty/usecase"
)

const (
	deployer = domain.Address("0xf000000000000000000000000000000000000001")
	author   = domain.Address("0xa000000000000000000000000000000000000002")
	treasury = domain.Address("0x7000000000000000000000000000000000000003")
	payer    = domain.Address("0xb000000000000000000000000000000000000004")
)

func TestGet(t *testing.T) {
	c := ctx.Background()
	accounts := accountRepo.NewMemory()
	require.NoError(t, accounts.Credit(c, payer, big.NewInt(9)))
	net := network.New(&network.Config{Accounts: accounts})
	access := accessUsecase.New(&accessUsecase.Config{})
	factory := usecase.NewFactory(&usecase.Config{
		Address:    deployer,
		Repo:       repository.NewMemory(),
		Network:    net,
		Sender:     paymentUsecase.New(&paymentUsecase.Config{Network: net}),
		Access:     access,
		LedgerRepo: ledgerRepo.NewMemory(),
	})
	s, err := factory.Deploy(c, author, treasury)
	require.NoError(t, err)
	require.NoError(t, net.Transfer(c, payer, s.Address(), big.NewInt(9), gas.DefaultStipend))

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			ec.Set("ctx", ctx.Background())
			return next(ec)
		}
	})
	New(e, factory, net, authMiddleware.New(nil, access))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/splitters/"+string(s.Address()), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Data splitterResp `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, author, res.Data.PayeeA)
	require.Equal(t, treasury, res.Data.PayeeB)
	require.Equal(t, "9", res.Data.Pending.Wei)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/splitters/"+string(payer), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
