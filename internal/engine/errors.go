package engine

import "errors"

// Every failure below rejects the whole transition: the surrounding
// transaction rolls back, so scoring, ledger, streak and achievement state
// can never diverge from a half-applied write. Nothing is retried here;
// retries belong to the caller (e.g. webhook redelivery on import).
var (
	ErrNotParticipant   = errors.New("user is not a participant in this challenge")
	ErrPaymentRequired  = errors.New("payment required before logging activities")
	ErrNotOwner         = errors.New("activity belongs to another user")
	ErrWrongChallenge   = errors.New("activity type does not belong to this challenge")
	ErrTypeNotAvailable = errors.New("activity type is not available on this date")
	ErrMaxPerChallenge  = errors.New("maximum logs for this activity type reached")
	ErrNotFound         = errors.New("activity not found")
	ErrAlreadyDeleted   = errors.New("activity is already deleted")
)
