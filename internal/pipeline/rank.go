package pipeline

import (
	"sort"

	"github.com/filingradar/filingradar/internal/domain"
)

// Compare defines the total order over announcements: ingestion time of
// push-delivered records first (a set ReceivedAt beats an unset one), then
// source date, newest first. A record whose date fails to parse sorts older
// than any record with a valid date; two unparseable dates compare equal so
// the stable sort keeps their relative order.
func Compare(a, b domain.Announcement) int {
	if a.ReceivedAt != b.ReceivedAt {
		if a.ReceivedAt > b.ReceivedAt {
			return -1
		}
		return 1
	}

	ta, okA := ParseDate(a.RawDate)
	tb, okB := ParseDate(b.RawDate)
	switch {
	case okA && okB:
		if ta.After(tb) {
			return -1
		}
		if tb.After(ta) {
			return 1
		}
		return 0
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

// SortAnnouncements orders the list in place, newest first, and returns it.
func SortAnnouncements(list []domain.Announcement) []domain.Announcement {
	sort.SliceStable(list, func(i, j int) bool {
		return Compare(list[i], list[j]) < 0
	})
	return list
}

// MergeIncoming inserts an already-deduplicated record into an ordered
// collection. Implemented as prepend-then-resort: collections are small and
// correctness beats incremental-merge cleverness. A record whose identity key
// is already present leaves the collection untouched.
func MergeIncoming(current []domain.Announcement, incoming domain.Announcement) []domain.Announcement {
	for _, existing := range current {
		if existing.IdentityKey == incoming.IdentityKey {
			return current
		}
	}
	merged := make([]domain.Announcement, 0, len(current)+1)
	merged = append(merged, incoming)
	merged = append(merged, current...)
	return SortAnnouncements(merged)
}
