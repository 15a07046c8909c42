package collection

import "time"

// Recency partitions entity IDs by the calendar day of their timestamp.
type Recency struct {
	Today     []ID
	Yesterday []ID
	Older     []ID
}

// Len returns the number of grouped IDs.
func (r Recency) Len() int {
	return len(r.Today) + len(r.Yesterday) + len(r.Older)
}

// GroupByRecency partitions entities into today, yesterday and older by the
// calendar date of their timestamp in now's location. Entities whose
// timestamp is missing or unparsable (ok=false) are left out of every group.
// Timestamps later than now's date count as today. Input order is preserved
// within each group.
func GroupByRecency[E Entity](entities []E, timestamp func(E) (time.Time, bool), now time.Time) Recency {
	var groups Recency
	if timestamp == nil {
		return groups
	}
	loc := now.Location()
	year, month, day := now.Date()
	todayStart := time.Date(year, month, day, 0, 0, 0, 0, loc)
	yesterdayStart := time.Date(year, month, day-1, 0, 0, 0, 0, loc)

	for _, entity := range entities {
		ts, ok := timestamp(entity)
		if !ok || ts.IsZero() {
			continue
		}
		ts = ts.In(loc)
		switch {
		case !ts.Before(todayStart):
			groups.Today = append(groups.Today, entity.EntityID())
		case !ts.Before(yesterdayStart):
			groups.Yesterday = append(groups.Yesterday, entity.EntityID())
		default:
			groups.Older = append(groups.Older, entity.EntityID())
		}
	}
	return groups
}
