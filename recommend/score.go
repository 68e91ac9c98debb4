package recommend

import "math"

const (
	// neutralScore is contributed by a sub-score whose inputs carry no
	// information (empty topic sets, hidden subscriber counts). It
	// neither rewards nor penalizes.
	neutralScore = 0.5

	// sizeSpan is the subscriber-magnitude distance, in orders of
	// magnitude, at which size similarity bottoms out. Three orders
	// apart (10K vs 10M) scores zero; same order scores near one.
	sizeSpan = 3.0
)

// scorer computes the weighted composite similarity between two
// feature sets. It is symmetric in its arguments.
type scorer struct {
	weights Weights
}

// score returns a composite similarity in [0, 1]. The video component
// participates only when both sides carry a video sample; its weight
// is otherwise redistributed proportionally across the remaining
// components by dividing through the reduced weight sum.
func (s scorer) score(a, b featureSet) float64 {
	w := s.weights

	text := jaccard(a.tokens, b.tokens)

	topic := neutralScore
	if len(a.topics) > 0 && len(b.topics) > 0 {
		topic = jaccard(a.topics, b.topics)
	}

	size := neutralScore
	if a.sizeKnown && b.sizeKnown {
		size = clamp01(1 - math.Abs(a.magnitude-b.magnitude)/sizeSpan)
	}

	total := w.Text*text + w.Topic*topic + w.Size*size
	weight := w.Text + w.Topic + w.Size
	if len(a.videoTokens) > 0 && len(b.videoTokens) > 0 {
		total += w.Video * jaccard(a.videoTokens, b.videoTokens)
		weight += w.Video
	}
	if weight <= 0 {
		return 0
	}
	return clamp01(total / weight)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
