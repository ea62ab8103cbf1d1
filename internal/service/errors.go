package service

import "errors"

var (
	// ErrInvalidCredentials is the single unauthenticated outcome for
	// every login failure; the boundary never says why.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUserNotFound    = errors.New("user not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrVenueNotFound   = errors.New("venue not found")

	ErrNotOwner = errors.New("caller does not own this resource")

	ErrInvalidListingKind = errors.New("listing must carry exactly one of ticket, merchandise, venue pass")
	ErrInvalidRoyalties   = errors.New("royalty percentages must sum to at most 1")
	ErrSeriesAlreadyBound = errors.New("listing is already bound to a token series")

	// ErrTransactionNotFound is retryable: the transaction may simply not
	// be finalized yet.
	ErrTransactionNotFound = errors.New("transaction not found on ledger")

	// ErrMalformedEvent is permanent: the transaction exists but carries
	// no parsable series event.
	ErrMalformedEvent = errors.New("transaction carries no valid series event")

	ErrAlreadyReconciled = errors.New("purchase already reconciled")
	ErrListingSoldOut    = errors.New("listing has no available units")

	ErrOTPExpired = errors.New("one-time password expired")
)
