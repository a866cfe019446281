package errors

import "errors"

var (
	ErrInvalidPayeeInput    = errors.New("payee identity and positive share weight are required")
	ErrMismatchedShareInput = errors.New("payee identities and share weights must be non-empty and equal length")
	ErrPayeeExists          = errors.New("payee already registered")
	ErrPayeeNotFound        = errors.New("payee has no registered shares")
	ErrPayeeIndexOutOfRange = errors.New("payee index out of range")
	ErrInvalidDepositInput  = errors.New("deposit amount must be positive")
	ErrInvalidInvestorInput = errors.New("investor identity and positive fee amount are required")
	ErrInvestorNotFound     = errors.New("investor not found")
	ErrOutboxNotFound       = errors.New("outbox message not found")

	ErrRegistryAlreadyInitialized = errors.New("share registry already initialized")
	ErrRegistryNotInitialized     = errors.New("share registry not initialized")

	ErrNotOwner       = errors.New("caller is not the treasury owner")
	ErrReleaseNotSelf = errors.New("release may only be requested by the payee itself")

	ErrNoPaymentDue            = errors.New("no payment due")
	ErrNoFeesOwed              = errors.New("no investor fees owed")
	ErrInsufficientPoolBalance = errors.New("pool balance below amount due")

	ErrTransferFailed = errors.New("asset transfer failed")
)
