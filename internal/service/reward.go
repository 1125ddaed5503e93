package service

// RateTable holds the reward rates and unit sizes used to price a ride.
// Amounts are integer token units; all divisions are integer floor
// divisions, so sub-unit remainders are discarded, never rounded up.
type RateTable struct {
	DistanceUnit        int64 // meters per distance unit
	RatePerDistanceUnit int64
	DurationUnit        int64 // seconds per duration unit
	RatePerDurationUnit int64
	CarbonUnit          int64 // grams per carbon unit
	CarbonMultiplier    int64
}

// DefaultRateTable returns the built-in rate table:
// 10 tokens per km, 1 token per minute, 2 tokens per kg CO2 offset.
func DefaultRateTable() RateTable {
	return RateTable{
		DistanceUnit:        1000,
		RatePerDistanceUnit: 10,
		DurationUnit:        60,
		RatePerDurationUnit: 1,
		CarbonUnit:          1000,
		CarbonMultiplier:    2,
	}
}

// Valid reports whether every unit size is positive.
func (t RateTable) Valid() bool {
	return t.DistanceUnit > 0 && t.DurationUnit > 0 && t.CarbonUnit > 0
}

// Reward computes the token reward for a ride under this rate table.
//
// Pure and deterministic: the same attributes under the same table always
// yield the same amount. A ride short of one full unit in a term earns
// zero from that term even when it passes the submission bounds.
func (t RateTable) Reward(distance, duration, carbonOffset int64) int64 {
	distanceReward := (distance / t.DistanceUnit) * t.RatePerDistanceUnit
	durationReward := (duration / t.DurationUnit) * t.RatePerDurationUnit
	carbonReward := (carbonOffset / t.CarbonUnit) * t.CarbonMultiplier
	return distanceReward + durationReward + carbonReward
}
