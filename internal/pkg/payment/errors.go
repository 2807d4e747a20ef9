package payment

import "errors"

var (
	// ErrAlreadySubscribed is returned when a user with a still-valid premium
	// plan asks for a new payment link.
	ErrAlreadySubscribed = errors.New("user already has an active premium subscription")

	// ErrForbidden is returned when a non-admin calls an admin-only operation.
	ErrForbidden = errors.New("admin access required")

	// ErrLinkNotFound is returned when a link lookup scoped to the calling
	// user matches nothing.
	ErrLinkNotFound = errors.New("payment link not found")

	// ErrUserNotFound is returned when the target user of an operation does
	// not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotCancellable is returned when cancellation is requested for a link
	// that is no longer pending.
	ErrNotCancellable = errors.New("payment link is not pending")

	// ErrInvalidMonths is returned when a manual activation asks for more
	// months than a single grant allows.
	ErrInvalidMonths = errors.New("months must be between 1 and 12")
)
