package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/x-xyz/auctionhouse/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"`
	jwt.StandardClaims
}

type AuthUsecase interface {
	// Nonce issues a one-time nonce the address has to embed in its signing message
	Nonce(ctx ctx.Ctx, address Address) (string, error)
	// SignToken checks the signature over the signing message and issues an access token
	SignToken(ctx ctx.Ctx, address Address, signature string) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (address string, err error)
}
