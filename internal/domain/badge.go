package domain

import "time"

// BadgeKind identifies an achievement badge.
type BadgeKind string

const (
	BadgeFirstRide     BadgeKind = "FIRST_RIDE"
	BadgeTenRides      BadgeKind = "TEN_RIDES"
	BadgeFiftyRides    BadgeKind = "FIFTY_RIDES"
	BadgeHundredRides  BadgeKind = "HUNDRED_RIDES"
	BadgeCentury       BadgeKind = "CENTURY_DISTANCE" // 100 km lifetime
	BadgeMilleDistance BadgeKind = "MILLE_DISTANCE"   // 1000 km lifetime
)

// MilestoneMetric names the statistic a milestone threshold applies to.
type MilestoneMetric string

const (
	MetricRideCount     MilestoneMetric = "RIDE_COUNT"
	MetricTotalDistance MilestoneMetric = "TOTAL_DISTANCE"
)

// Milestone maps a badge kind to the statistic and threshold that earn it.
type Milestone struct {
	Kind      BadgeKind
	Metric    MilestoneMetric
	Threshold int64
}

// DefaultMilestones returns the built-in milestone table.
//
// Slice order is the issuance order when several badges qualify in one
// evaluation, so it must stay stable. FIRST_RIDE is expressed here as a
// ride-count milestone of 1; the badge engine also treats it as earned
// whenever the rider has any verified ride, independent of table edits.
func DefaultMilestones() []Milestone {
	return []Milestone{
		{Kind: BadgeFirstRide, Metric: MetricRideCount, Threshold: 1},
		{Kind: BadgeTenRides, Metric: MetricRideCount, Threshold: 10},
		{Kind: BadgeFiftyRides, Metric: MetricRideCount, Threshold: 50},
		{Kind: BadgeHundredRides, Metric: MetricRideCount, Threshold: 100},
		{Kind: BadgeCentury, Metric: MetricTotalDistance, Threshold: 100_000},
		{Kind: BadgeMilleDistance, Metric: MetricTotalDistance, Threshold: 1_000_000},
	}
}

// BadgeRecord marks a badge as earned by a rider.
//
// At most one record exists per (rider, kind) for the lifetime of the
// system; badges are never revoked or re-issued.
type BadgeRecord struct {
	Rider    string
	Kind     BadgeKind
	AssetID  string
	EarnedAt time.Time
}
