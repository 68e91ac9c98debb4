package recommend

import "ytscout/youtube"

// qualityFilter gates candidates on minimum size and activity before
// they are ranked.
type qualityFilter struct {
	minSubscribers int64
	minVideos      int64
}

func newQualityFilter(cfg Config) qualityFilter {
	return qualityFilter{
		minSubscribers: cfg.MinSubscribers,
		minVideos:      cfg.MinVideoCount,
	}
}

// pass reports whether ch clears the thresholds. The subscriber floor
// is inclusive: a count equal to the minimum passes. Channels hiding
// their subscriber count pass that check unverified rather than being
// discarded; large channels hide counts too.
func (f qualityFilter) pass(ch *youtube.Channel) bool {
	if ch == nil {
		return false
	}
	if f.minSubscribers > 0 && ch.KnownSubscribers() && ch.Subscribers < f.minSubscribers {
		return false
	}
	if ch.VideoCount < f.minVideos {
		return false
	}
	return true
}
