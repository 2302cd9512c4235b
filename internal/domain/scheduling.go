package domain

// SchedulingConfig holds the process-wide scheduling constants. It is
// read-only after construction and passed around as a value rather
// than read from package globals, so tests can exercise ScheduleNext
// against alternative constants.
type SchedulingConfig struct {
	MaxIntervalSeconds int64
	RetrySeconds       int64
	FirstInterval      map[Rating]int64
	Growth             map[Rating]float64
}

// DefaultSchedulingConfig returns the constants named in the
// scheduler's data model: a one-year cap, a one-minute retry on a
// failed recall, and the two growth curves for "remembered" and
// "instant" ratings.
func DefaultSchedulingConfig() SchedulingConfig {
	return SchedulingConfig{
		MaxIntervalSeconds: 365 * 24 * 3600,
		RetrySeconds:       60,
		FirstInterval: map[Rating]int64{
			RatingRemembered: 86400,  // 1 day
			RatingInstant:    345600, // 4 days
		},
		Growth: map[Rating]float64{
			RatingRemembered: 1.6,
			RatingInstant:    2.5,
		},
	}
}

// ScheduleNext computes the next interval, in seconds, for a card
// reviewed with rating, given the interval that was active before
// this review and whether this is the card's first ever review.
//
// rating must already be validated by the caller; behavior for any
// value other than RatingDontRemember, RatingRemembered, or
// RatingInstant is undefined.
func ScheduleNext(cfg SchedulingConfig, rating Rating, lastIntervalSeconds int64, isFirst bool) int64 {
	if rating == RatingDontRemember {
		return cfg.RetrySeconds
	}

	if isFirst {
		return min64(cfg.FirstInterval[rating], cfg.MaxIntervalSeconds)
	}

	proposed := int64(float64(lastIntervalSeconds) * cfg.Growth[rating])
	capped := min64(proposed, cfg.MaxIntervalSeconds)
	return max64(capped, lastIntervalSeconds)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
