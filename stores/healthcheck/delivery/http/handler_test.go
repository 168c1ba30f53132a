package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/auctionhouse/base/ctx"
	hcdomain "github.com/x-xyz/auctionhouse/domain/healthcheck"
)

type fakeUsecase struct {
	status *hcdomain.Status
	err    error
}

func (f *fakeUsecase) Check(ctx.Ctx) (*hcdomain.Status, error) {
	return f.status, f.err
}

func serve(us hcdomain.HealthCheckUsecase) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			ec.Set("ctx", ctx.Background())
			return next(ec)
		}
	})
	New(e, us)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	return rec
}

func TestCheck(t *testing.T) {
	rec := serve(&fakeUsecase{status: &hcdomain.Status{Healthy: "ok", Engine: "0xae01", Paused: true}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"healthy":"ok","engine":"0xae01","paused":true}`, rec.Body.String())

	rec = serve(&fakeUsecase{err: errors.New("mongo down")})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"message":"mongo down"}`, rec.Body.String())
}
