package utils

import "errors"

var (
	// not found
	ErrOrderNotFound       = errors.New("order not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("wallet transaction not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrVoucherNotFound     = errors.New("voucher not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrCartNotFound        = errors.New("cart not found")

	// invalid state
	ErrOrderNotPending       = errors.New("order is not pending")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrTransactionNotPending = errors.New("wallet transaction is not pending")
	ErrVoucherLimitReached   = errors.New("voucher activation limit reached")
	ErrVoucherNotApplicable  = errors.New("voucher cannot be applied to discounted products")
	ErrVoucherInactive       = errors.New("voucher is inactive or expired")
	ErrAmountMismatch        = errors.New("payment amount mismatch")
	ErrSettlementInProgress  = errors.New("settlement already in progress")

	// validation
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid page size parameter")
	ErrInvalidID       = errors.New("invalid id")
	ErrEmptyOrder      = errors.New("order has no products")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidFilter   = errors.New("invalid filter value")
	ErrInvalidKey      = errors.New("invalid object key")

	// external
	ErrExternalService = errors.New("external service error")
	ErrStorageError    = errors.New("object storage error")

	// internal
	ErrDatabaseError = errors.New("database error")
)
