package event

import (
	"slices"
)

// Sort returns a copy of records ordered by DateTime, earliest first. Records with equal DateTime keep their input
// order
func Sort(records []Record) []Record {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return a.DateTime.Compare(b.DateTime)
	})
	return sorted
}
