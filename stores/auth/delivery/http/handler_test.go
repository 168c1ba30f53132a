package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/ethereum"
	bValidator "github.com/x-xyz/auctionhouse/base/validator"
	"github.com/x-xyz/auctionhouse/service/cache"
	"github.com/x-xyz/auctionhouse/service/cache/provider/primitive"
	"github.com/x-xyz/auctionhouse/stores/auth/usecase"
)

const template = "Sign in to auctionhouse, nonce: %s"

func newServer() *echo.Echo {
	e := echo.New()
	e.Validator = bValidator.NewCustomValidator(bValidator.New())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			ec.Set("ctx", ctx.Background())
			return next(ec)
		}
	})
	auth := usecase.New(&usecase.Config{
		JwtSecret:          "jwt-secret",
		SigningMsgTemplate: template,
		Nonces: cache.New(cache.Config{
			TTL:      time.Minute,
			Prefix:   "nonce",
			Provider: primitive.NewPrimitive("nonce", 1),
		}),
	})
	New(e, auth, template)
	return e
}

func TestLogin(t *testing.T) {
	e := newServer()
	key, address, err := ethereum.GenerateKey()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/nonce/"+address, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var nonce struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nonce))
	require.NotEmpty(t, nonce.Data)

	sig, err := ethereum.SignMsg(key, []byte(fmt.Sprintf(template, nonce.Data)))
	require.NoError(t, err)

	sign := func() *httptest.ResponseRecorder {
		body := fmt.Sprintf(`{"address":%q,"signature":%q}`, address, sig)
		req := httptest.NewRequest(http.MethodPost, "/auth/sign", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec = sign()
	require.Equal(t, http.StatusCreated, rec.Code)
	var token struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	require.NotEmpty(t, token.Data)

	// the nonce is single use
	rec = sign()
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSigningMsgTemplate(t *testing.T) {
	e := newServer()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/signingMsgTemplate", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Data struct {
			Template string `json:"template"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, template, res.Data.Template)
}
