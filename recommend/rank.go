package recommend

import "sort"

const (
	// boostPerDiscovery is added to a candidate's ranking score for
	// each time discovery surfaced it, up to maxBoost. A channel found
	// by several independent paths outranks an equally similar one
	// found once.
	boostPerDiscovery = 0.2 / 3
	maxBoost          = 0.2
)

// discoveryBoost returns the ranking bonus for a discovery count.
func discoveryBoost(count int) float64 {
	b := float64(count) * boostPerDiscovery
	if b > maxBoost {
		b = maxBoost
	}
	return b
}

// rankDiscovered orders entries by score descending, breaking ties by
// discovery count descending, and truncates to topN. The sort is
// stable, so fully tied entries keep their pool order and the result
// is deterministic.
func rankDiscovered(entries []*candidateEntry, topN int) []*candidateEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].count > entries[j].count
	})
	return truncate(entries, topN)
}

// rankRecommended orders entries by score descending, breaking ties by
// subscriber count descending, and truncates to topN.
func rankRecommended(entries []*candidateEntry, topN int) []*candidateEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].channel.Subscribers > entries[j].channel.Subscribers
	})
	return truncate(entries, topN)
}

func truncate(entries []*candidateEntry, topN int) []*candidateEntry {
	if topN > 0 && len(entries) > topN {
		return entries[:topN]
	}
	return entries
}
