package reconcile

import "errors"

var (
	// ErrInvalidTarget is a caller error: neither an item id nor a name was given.
	ErrInvalidTarget = errors.New("reconcile: target requires an item id or name")

	// ErrItemNotFound means no item matched the target.
	ErrItemNotFound = errors.New("reconcile: item not found")

	// ErrItemVanished means the item row disappeared mid-reconciliation.
	ErrItemVanished = errors.New("reconcile: item vanished during refresh")
)
