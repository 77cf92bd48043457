// Package care holds the pure scheduling rules: plant numbering, due dates
// and the needs-care predicate. Nothing here touches storage.
package care

import (
	"slices"
	"time"
)

const day = 24 * time.Hour

// NextPlantNumber returns the lowest positive integer not present in
// existing. Duplicates and non-positive values are tolerated.
func NextPlantNumber(existing []int) int {
	sorted := slices.Clone(existing)
	slices.Sort(sorted)

	next := 1
	for _, n := range sorted {
		if n < next {
			continue
		}
		if n > next {
			break
		}
		next++
	}
	return next
}

// DueDate is last plus intervalDays, or nil when last is unknown.
func DueDate(last *time.Time, intervalDays int) *time.Time {
	if last == nil {
		return nil
	}
	due := last.AddDate(0, 0, intervalDays)
	return &due
}

// NextCheck is the earlier of the next watering and next feeding due dates.
// When only one of them is known it is returned as is; when neither is
// known the result is nil.
func NextCheck(lastWatered, lastFed *time.Time, wateringDays, feedingDays int) *time.Time {
	water := DueDate(lastWatered, wateringDays)
	feed := DueDate(lastFed, feedingDays)

	switch {
	case water == nil:
		return feed
	case feed == nil:
		return water
	case feed.Before(*water):
		return feed
	default:
		return water
	}
}

// ElapsedDays is the number of whole days between last and now.
func ElapsedDays(last, now time.Time) int {
	return int(now.Sub(last) / day)
}

// NeedsCare reports whether a care action is due: always when it has never
// happened, otherwise once at least intervalDays whole days have passed.
func NeedsCare(last *time.Time, intervalDays int, now time.Time) bool {
	if last == nil {
		return true
	}
	return ElapsedDays(*last, now) >= intervalDays
}
