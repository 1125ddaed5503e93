package domain

// RiderStatistics holds per-rider lifetime totals.
//
// All three fields are monotonically non-decreasing and are mutated only
// when a ride transitions PENDING -> VERIFIED, exactly once per ride.
type RiderStatistics struct {
	Rider         string
	RidesVerified int64
	TotalDistance int64 // meters
	TotalRewards  int64 // token units
}
