package chain

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/x-xyz/auctionhouse/base/backoff"
	bCtx "github.com/x-xyz/auctionhouse/base/ctx"
	baseEthereum "github.com/x-xyz/auctionhouse/base/ethereum"
	"github.com/x-xyz/auctionhouse/base/log"
)

var ErrUnsupportedChain = errors.New("unsupported chain")

type ClientCfg struct {
	RpcUrls map[int32]string
	// MaxConcurrent bounds in-flight calls per endpoint
	MaxConcurrent int
	// Attempts per call, transient rpc errors are retried with exponential backoff
	Attempts int
}

type Client interface {
	Call(bCtx.Ctx, int32, common.Address, abi.ABI, string, ...interface{}) ([]interface{}, error)
}

type clientImpl struct {
	callers  map[int32]bind.ContractCaller
	attempts int
}

func NewClient(ctx bCtx.Ctx, cfg *ClientCfg) (Client, error) {
	var (
		anyerr error
	)
	callers := make(map[int32]bind.ContractCaller)
	for chainId, url := range cfg.RpcUrls {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			anyerr = err
			ctx.WithFields(log.Fields{
				"err":     err,
				"chainId": chainId,
				"url":     url,
			}).Warn("failed to dial rpc")
			// soft warning, still let the server start
			continue
		}
		callers[chainId] = baseEthereum.NewThrottledCaller(client, cfg.MaxConcurrent)
	}
	return NewClientWithCallers(callers, cfg.Attempts), anyerr
}

// NewClientWithCallers serves calls from the given callers
func NewClientWithCallers(callers map[int32]bind.ContractCaller, attempts int) Client {
	if attempts <= 0 {
		attempts = 1
	}
	return &clientImpl{
		callers:  callers,
		attempts: attempts,
	}
}

func (c *clientImpl) Call(ctx bCtx.Ctx, chainId int32, addr common.Address, _abi abi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	caller, ok := c.callers[chainId]
	if !ok {
		return nil, ErrUnsupportedChain
	}

	data, err := _abi.Pack(method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"params": params,
			"err":    err,
		}).Error("abi.Pack failed")
		return nil, err
	}
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}

	var res []byte
	err = backoff.Retry(ctx, backoff.NewExponential(100*time.Millisecond, 2*time.Second), c.attempts, func(attempt int) error {
		res, err = caller.CallContract(ctx, msg, nil)
		if err != nil {
			ctx.WithFields(log.Fields{"err": err, "attempt": attempt}).Warn("client.CallContract failed")
		}
		return err
	})
	if err != nil {
		ctx.WithField("err", err).Error("client.CallContract failed")
		return nil, err
	}
	unpacked, err := _abi.Unpack(method, res)
	if err != nil {
		ctx.WithField("err", err).Error("abi.Unpack failed")
		return nil, err
	}
	return unpacked, nil
}
