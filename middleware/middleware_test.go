package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/auctionhouse/base/ctx"
)

func TestAddContext(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	var got ctx.Ctx
	h := InitMiddleware().AddContext()(func(c echo.Context) error {
		got = c.Get("ctx").(ctx.Ctx)
		return nil
	})
	require.NoError(t, h(c))
	require.NotEmpty(t, ctx.CallID(got))
}

func TestIsValidAddress(t *testing.T) {
	cases := []struct {
		desc   string
		param  string
		status int
	}{
		{"valid", "0xb000000000000000000000000000000000000004", http.StatusOK},
		{"not hex", "bob.eth", http.StatusBadRequest},
		{"too short", "0xb0", http.StatusBadRequest},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.SetParamNames("address")
		c.SetParamValues(tc.param)

		h := IsValidAddress("address")(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, h(c), tc.desc)
		require.Equal(t, tc.status, rec.Code, tc.desc)
	}
}
