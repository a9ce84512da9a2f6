package review

import "errors"

var (
	// ErrNotRegistered is returned when a user acts before sharing a contact.
	ErrNotRegistered = errors.New("review: contact not shared")
	// ErrEmptyReview is returned when confirm or clear finds no pending messages.
	ErrEmptyReview = errors.New("review: no pending messages")
	// ErrNoPendingReview is returned when a bonus is chosen without a delivered batch.
	ErrNoPendingReview = errors.New("review: no delivered review awaiting a bonus")
	// ErrUnknownBonus is returned for labels missing from the catalog.
	ErrUnknownBonus = errors.New("review: unknown bonus label")
)
