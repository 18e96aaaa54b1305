package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrUnprocessable is used for semantic validation failures (HTTP 422)
	ErrUnprocessable = errors.New("unprocessable")

	// Posting preconditions, all rejected before any balance write.
	ErrNoEntries        = errors.New("no_entries")
	ErrUnbalanced       = errors.New("unbalanced_transaction")
	ErrCurrencyMismatch = errors.New("currency_mismatch")
	ErrAccountNotFound  = errors.New("account_not_found")
	ErrAccountArchived  = errors.New("account_archived")

	// ErrDeleteBlocked indicates a physical delete was refused because journal
	// entries still reference the account; callers get an archive instead.
	ErrDeleteBlocked = errors.New("delete_blocked_by_references")
	// ErrSystemAccount indicates a seeded system account cannot be modified or deleted
	ErrSystemAccount = errors.New("system_account")
	// ErrImmutable indicates an attempt to change immutable fields
	ErrImmutable = errors.New("immutable")
	// ErrBalanceReadOnly indicates a direct balance write through the update
	// path on an account that already has posted transactions.
	ErrBalanceReadOnly = errors.New("balance_read_only")

	// ErrUnknownCurrency indicates a conversion against a currency with no
	// declared rate while the converter runs in strict mode.
	ErrUnknownCurrency = errors.New("unknown_currency")

	// ErrUnavailable wraps store connectivity/timeout failures; retryable.
	ErrUnavailable = errors.New("store_unavailable")
)
