package service

import "errors"

var (
	// ErrInvalidRider is returned when the rider identity is empty.
	ErrInvalidRider = errors.New("invalid rider")

	// ErrInvalidNonce is returned when the submission nonce is empty.
	ErrInvalidNonce = errors.New("invalid nonce")

	// ErrDistanceTooShort is returned when distance is below the configured minimum.
	ErrDistanceTooShort = errors.New("distance below configured minimum")

	// ErrDistanceTooLong is returned when distance is above the configured maximum.
	ErrDistanceTooLong = errors.New("distance above configured maximum")

	// ErrDurationTooShort is returned when duration is below the configured minimum.
	ErrDurationTooShort = errors.New("duration below configured minimum")

	// ErrNegativeAttribute is returned when a submission carries a negative
	// distance, duration, or carbon offset. These are physical quantities,
	// so negatives are invalid even under a max-only bound configuration.
	ErrNegativeAttribute = errors.New("negative ride attribute")

	// ErrDuplicateRide is returned when an identical submission already exists.
	// A replay is never silently treated as success.
	ErrDuplicateRide = errors.New("duplicate ride submission")

	// ErrRideNotFound is returned when verifying or rejecting an unknown ride.
	ErrRideNotFound = errors.New("ride not found")

	// ErrAlreadyFinalized is returned when a ride is already VERIFIED or
	// REJECTED; terminal states admit no further transition.
	ErrAlreadyFinalized = errors.New("ride already finalized")

	// ErrMintFailed is returned when the external mint capability fails.
	// The whole verification is rolled back; no partial state survives.
	ErrMintFailed = errors.New("reward mint failed")

	// ErrBadgeIssueFailed is returned when the external badge issuance
	// capability fails. The badge stays unearned and a later evaluation
	// retries it.
	ErrBadgeIssueFailed = errors.New("badge issuance failed")

	// ErrUnauthorized is returned when the caller lacks the required principal.
	ErrUnauthorized = errors.New("caller not authorized")

	// ErrEvaluationInProgress is returned when another badge evaluation
	// holds the rider lock.
	ErrEvaluationInProgress = errors.New("badge evaluation already in progress")

	// ErrInvalidMilestone is returned when a milestone table update contains
	// an unusable entry.
	ErrInvalidMilestone = errors.New("invalid milestone")

	// ErrInvalidRateTable is returned when a rate table update contains a
	// non-positive unit size.
	ErrInvalidRateTable = errors.New("invalid rate table")
)
