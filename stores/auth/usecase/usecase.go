package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/base/ethereum"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/service/cache"
)

const defaultTokenTTL = 24 * time.Hour

type Config struct {
	JwtSecret string
	// SigningMsgTemplate has a single %s the nonce is put into
	SigningMsgTemplate string
	// Nonces keeps the pending nonce of each address, its ttl bounds how long a login may take
	Nonces   cache.Service
	TokenTTL time.Duration
}

type impl struct {
	jwtSecret []byte
	template  string
	nonces    cache.Service
	tokenTTL  time.Duration
}

func New(cfg *Config) domain.AuthUsecase {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = defaultTokenTTL
	}
	return &impl{
		jwtSecret: []byte(cfg.JwtSecret),
		template:  cfg.SigningMsgTemplate,
		nonces:    cfg.Nonces,
		tokenTTL:  ttl,
	}
}

func (im *impl) Nonce(ctx ctx.Ctx, address domain.Address) (string, error) {
	nonce := uuid.NewString()
	if err := im.nonces.Set(ctx, address.ToLowerStr(), nonce); err != nil {
		ctx.WithField("err", err).Error("nonces.Set failed")
		return "", err
	}
	return nonce, nil
}

func (im *impl) SignToken(ctx ctx.Ctx, address domain.Address, signature string) (string, error) {
	// a nonce is good for one attempt
	nonce := ""
	if err := im.nonces.Take(ctx, address.ToLowerStr(), &nonce); errors.Is(err, cache.ErrNotFound) {
		return "", xerrors.Errorf("no pending nonce for %s: %w", address, domain.ErrInvalidSignature)
	} else if err != nil {
		ctx.WithField("err", err).Error("nonces.Take failed")
		return "", err
	}

	msg := []byte(fmt.Sprintf(im.template, nonce))
	if ok, err := ethereum.ValidateMsgSignature(msg, signature, address.String()); err != nil {
		return "", xerrors.Errorf("%v: %w", err, domain.ErrInvalidSignature)
	} else if !ok {
		return "", domain.ErrInvalidSignature
	}

	claims := domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(im.tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		ctx.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(ctx ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
		return claims.Address, nil
	}
	return "", domain.ErrInvalidSignature
}
