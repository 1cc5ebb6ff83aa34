package dispatch

import "sort"

// RankCandidates orders eligible shippers for a leg: fewer current
// assignments on the relevant counter first, then higher average rating,
// then most recent heartbeat. Ties break deterministically by shipper id
// so concurrent dispatchers agree on the candidate order.
func RankCandidates(shippers []*Shipper, kind LegKind) []*Shipper {
	candidates := make([]*Shipper, 0, len(shippers))
	for _, s := range shippers {
		if s.Eligible(kind) {
			candidates = append(candidates, s)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.CounterFor(kind) != b.CounterFor(kind) {
			return a.CounterFor(kind) < b.CounterFor(kind)
		}
		if a.AvgRating != b.AvgRating {
			return a.AvgRating > b.AvgRating
		}
		if !a.LastSeenAt.Equal(b.LastSeenAt) {
			return a.LastSeenAt.After(b.LastSeenAt)
		}
		return a.ID < b.ID
	})
	return candidates
}
