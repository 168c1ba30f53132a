package contract

import (
	"math/big"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/xerrors"

	baseabi "github.com/x-xyz/auctionhouse/base/abi"
	bCtx "github.com/x-xyz/auctionhouse/base/ctx"
	"github.com/x-xyz/auctionhouse/domain"
	"github.com/x-xyz/auctionhouse/domain/registry"
	"github.com/x-xyz/auctionhouse/service/chain"
)

// Erc721 reads one ERC721 collection. It verifies ownership for registry imports.
type Erc721 struct {
	chainService      chain.Client
	abi               ethabi.ABI
	chainId           int32
	address           common.Address
	erc721InterfaceId [4]byte
}

var _ registry.OwnershipVerifier = (*Erc721)(nil)

func NewErc721(chainService chain.Client, chainId int32, address domain.Address) *Erc721 {
	var interfaceId [4]byte
	copy(interfaceId[:], common.Hex2Bytes("80ac58cd"))
	return &Erc721{
		abi:               baseabi.ERC721TokenABI,
		chainService:      chainService,
		chainId:           chainId,
		address:           common.HexToAddress(string(address)),
		erc721InterfaceId: interfaceId,
	}
}

func (e *Erc721) Supports721Interface(ctx bCtx.Ctx) (bool, error) {
	method := "supportsInterface"
	unpacked, err := e.chainService.Call(ctx, e.chainId, e.address, e.abi, method, e.erc721InterfaceId)
	if err != nil {
		return false, err
	}
	return unpacked[0].(bool), nil
}

func (e *Erc721) OwnerOf(ctx bCtx.Ctx, id domain.AssetId) (domain.Address, error) {
	tokenId, ok := new(big.Int).SetString(string(id), 10)
	if !ok {
		return "", domain.ErrInvalidNumberFormat
	}
	method := "ownerOf"
	unpacked, err := e.chainService.Call(ctx, e.chainId, e.address, e.abi, method, tokenId)
	if err != nil {
		return "", xerrors.Errorf("ownerOf %s: %w", id, err)
	}
	return domain.Address(unpacked[0].(common.Address).String()).ToLower(), nil
}
