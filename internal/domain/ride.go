package domain

import "time"

// RideStatus represents the verification status of a ride claim.
type RideStatus string

const (
	RideStatusPending  RideStatus = "PENDING"
	RideStatusVerified RideStatus = "VERIFIED"
	RideStatusRejected RideStatus = "REJECTED"
)

// Terminal reports whether the status admits no further transitions.
func (s RideStatus) Terminal() bool {
	return s == RideStatusVerified || s == RideStatusRejected
}

// Ride represents a submitted activity claim.
//
// ID is derived deterministically from the submission inputs, so an
// identical resubmission collides with the existing record instead of
// creating a second one. Rider, Distance, Duration, CarbonOffset and
// SubmittedAt are immutable once the ride exists; RewardAmount is zero
// until verification and fixed afterward.
type Ride struct {
	ID           string
	Rider        string
	Distance     int64 // meters
	Duration     int64 // seconds
	CarbonOffset int64 // grams CO2 equivalent, caller-reported
	Status       RideStatus
	RewardAmount int64
	RejectReason string
	SubmittedAt  time.Time
}
