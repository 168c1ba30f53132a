package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
)

const vitalik = domain.Address("0xd8da6bf26964af9d7eed9e03e53415d37aa96045")

type fakeENS struct{}

func (fakeENS) Resolve(_ ctx.Ctx, name string) (domain.Address, error) {
	if name == "vitalik.eth" {
		return vitalik, nil
	}
	return "", nil
}

func (fakeENS) ReverseResolve(_ ctx.Ctx, address domain.Address) (string, error) {
	if address.ToLower() == vitalik {
		return "vitalik.eth", nil
	}
	return "", nil
}

func get(t *testing.T, path string) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			ec.Set("ctx", ctx.Background())
			return next(ec)
		}
	})
	New(e, fakeENS{})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestResolve(t *testing.T) {
	rec := get(t, "/ens/resolve/vitalik.eth")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":"`+string(vitalik)+`","status":"success"}`, rec.Body.String())

	rec = get(t, "/ens/resolve/vitalik")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReverseResolve(t *testing.T) {
	rec := get(t, "/ens/reverse-resolve/"+string(vitalik))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":"vitalik.eth","status":"success"}`, rec.Body.String())

	rec = get(t, "/ens/reverse-resolve/0x123")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
