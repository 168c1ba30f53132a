package domain

import "errors"

// reasonError is a distinct rejection reason that belongs to a category
type reasonError struct {
	category error
	msg      string
}

func (e *reasonError) Error() string {
	return e.msg
}

func (e *reasonError) Unwrap() error {
	return e.category
}

func newReason(category error, msg string) error {
	return &reasonError{category: category, msg: msg}
}

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput       = errors.New("Given Param is not valid")
	ErrInvalidNumberFormat = errors.New("invalid number format")

	// request error
	ErrInvalidAddress   = errors.New("Invalid address")
	ErrInvalidSignature = errors.New("Invalid signature")
)

// categories
var (
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrPaused             = errors.New("paused")
	ErrNotPaused          = errors.New("not paused")
)

// reasons
var (
	ErrNotAdmin         = newReason(ErrNotAuthorized, "caller is not an administrator")
	ErrNotMinter        = newReason(ErrNotAuthorized, "caller is not a minter")
	ErrNotSeller        = newReason(ErrNotAuthorized, "only seller can cancel")
	ErrNotOwner         = newReason(ErrNotAuthorized, "transfer source is not the asset owner")
	ErrNotSellerOrAdmin = newReason(ErrNotAuthorized, "caller is neither asset owner nor administrator")
	ErrNotApproved      = newReason(ErrNotAuthorized, "operator is not approved for the asset")
	ErrNotPayee         = newReason(ErrNotAuthorized, "caller is not a payee")

	ErrAuctionAlreadyRunning = newReason(ErrInvalidState, "auction already running")
	ErrAuctionNotOpen        = newReason(ErrInvalidState, "auction not open")
	ErrNoSuchAuction         = newReason(ErrInvalidState, "no such auction")
	ErrNotYetEndable         = newReason(ErrInvalidState, "auction not yet endable")
	ErrNotInitialized        = newReason(ErrInvalidState, "splitter not initialized")
	ErrAssetExists           = newReason(ErrInvalidState, "asset already registered")
	ErrNoSuchAsset           = newReason(ErrInvalidState, "no such asset")
	ErrWithdrawInProgress    = newReason(ErrInvalidState, "withdrawal already in progress")
	ErrSplitInProgress       = newReason(ErrInvalidState, "royalty split already in progress")

	ErrBidBelowMinPrice    = newReason(ErrInvalidAmount, "bid below min price")
	ErrBidBelowLastBid     = newReason(ErrInvalidAmount, "bid below last bid")
	ErrEndingPriceReached  = newReason(ErrInvalidAmount, "ending price reached")
	ErrRoyaltyTooHigh      = newReason(ErrInvalidAmount, "royalty too high")
	ErrFeeTooHigh          = newReason(ErrInvalidAmount, "fee too high")
	ErrInvalidPriceRange   = newReason(ErrInvalidAmount, "ending price below starting price")
	ErrZeroStartingPrice   = newReason(ErrInvalidAmount, "starting price must be positive")
	ErrInvalidDuration     = newReason(ErrInvalidAmount, "duration must be positive")
	ErrNegativeAmount      = newReason(ErrInvalidAmount, "amount must not be negative")
	ErrInsufficientBalance = newReason(ErrInvalidAmount, "insufficient balance")
)
