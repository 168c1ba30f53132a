package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/delivery"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/access"
)

type AuthMiddleware struct {
	auth   domain.AuthUsecase
	access access.Control
}

func New(auth domain.AuthUsecase, access access.Control) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		access: access,
	}
}

// Auth requires a bearer token and puts its address into "address"
func (m *AuthMiddleware) Auth() echo.MiddlewareFunc {
	return middleware.KeyAuth(m.validateAuthToken)
}

func (m *AuthMiddleware) OptionalAuth() echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(c echo.Context) bool {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			return len(auth) == 0
		},
		Validator: m.validateAuthToken,
	})
}

// HasRole must run after Auth
func (m *AuthMiddleware) HasRole(role access.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Get("ctx").(ctx.Ctx)
			address := c.Get("address").(domain.Address)

			if !m.access.HasRole(ctx, address, role) {
				return delivery.MakeJsonResp(c, http.StatusForbidden, "require "+string(role)+" privilege")
			}
			return next(c)
		}
	}
}

func (m *AuthMiddleware) IsAdmin() echo.MiddlewareFunc {
	return m.HasRole(access.RoleAdmin)
}

func (m *AuthMiddleware) validateAuthToken(key string, c echo.Context) (bool, error) {
	cont := c.Get("ctx").(ctx.Ctx)
	if ads, err := m.auth.ParseToken(cont, key); err != nil {
		cont.WithField("err", err).Warn("auth.ParseToken failed")
		return false, err
	} else {
		c.Set("address", domain.Address(ads))
		c.Set("ctx", ctx.WithValue(cont, "caller", ads))
		return true, nil
	}
}
