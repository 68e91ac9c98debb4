package recommend

import (
	"math"
	"testing"
)

func defaultScorer() scorer {
	return scorer{weights: DefaultWeights()}
}

func TestScoreIdenticalFeatures(t *testing.T) {
	fs := featureSet{
		tokens:      tokenSet("alpha", "beta"),
		topics:      tokenSet("science"),
		magnitude:   6,
		sizeKnown:   true,
		videoTokens: tokenSet("laser", "magnet"),
	}

	if got := defaultScorer().score(fs, fs); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("score(x, x) = %g, want 1.0", got)
	}
}

func TestScoreComposite(t *testing.T) {
	a := featureSet{
		tokens:    tokenSet("alpha", "beta"),
		topics:    tokenSet("science", "education"),
		magnitude: 6,
		sizeKnown: true,
	}
	b := featureSet{
		tokens:    tokenSet("beta", "gamma"),
		topics:    tokenSet("science"),
		magnitude: 7.5,
		sizeKnown: true,
	}

	// text 1/3, topic 1/2, size 1 - 1.5/3 = 1/2, no video sample:
	// (0.30/3 + 0.25/2 + 0.15/2) / 0.70 = 0.3/0.7
	want := 0.3 / 0.7
	if got := defaultScorer().score(a, b); math.Abs(got-want) > 1e-9 {
		t.Errorf("score() = %g, want %g", got, want)
	}

	// Adding a fully overlapping video sample keeps the other
	// sub-scores and swings the composite by the video weight.
	a.videoTokens = tokenSet("laser")
	b.videoTokens = tokenSet("laser")
	want = 0.30/3 + 0.25/2 + 0.15/2 + 0.30
	if got := defaultScorer().score(a, b); math.Abs(got-want) > 1e-9 {
		t.Errorf("score() with video = %g, want %g", got, want)
	}
}

func TestScoreSymmetry(t *testing.T) {
	pairs := []struct {
		name string
		a, b featureSet
	}{
		{
			name: "full features",
			a: featureSet{
				tokens:      tokenSet("alpha", "beta", "gamma"),
				topics:      tokenSet("science"),
				magnitude:   4.2,
				sizeKnown:   true,
				videoTokens: tokenSet("laser", "prism"),
			},
			b: featureSet{
				tokens:      tokenSet("beta", "delta"),
				topics:      tokenSet("science", "education"),
				magnitude:   6.9,
				sizeKnown:   true,
				videoTokens: tokenSet("prism"),
			},
		},
		{
			name: "sparse features",
			a:    featureSet{tokens: tokenSet("alpha")},
			b:    featureSet{topics: tokenSet("science"), magnitude: 3, sizeKnown: true},
		},
	}

	s := defaultScorer()
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			if fwd, rev := s.score(tt.a, tt.b), s.score(tt.b, tt.a); fwd != rev {
				t.Errorf("score is asymmetric: %g vs %g", fwd, rev)
			}
		})
	}
}

func TestScoreNeutralMidpoints(t *testing.T) {
	base := featureSet{tokens: tokenSet("alpha"), magnitude: 5, sizeKnown: true}

	// No topics on either side: topic contributes 0.5, size 1, text 1.
	other := featureSet{tokens: tokenSet("alpha"), magnitude: 5, sizeKnown: true}
	want := (0.30 + 0.25*0.5 + 0.15) / 0.70
	if got := defaultScorer().score(base, other); math.Abs(got-want) > 1e-9 {
		t.Errorf("score without topics = %g, want %g", got, want)
	}

	// Unknown size on one side contributes 0.5 regardless of
	// magnitudes.
	known := featureSet{tokens: tokenSet("alpha"), topics: tokenSet("x"), magnitude: 9, sizeKnown: true}
	hidden := featureSet{tokens: tokenSet("alpha"), topics: tokenSet("x"), magnitude: 0}
	want = (0.30 + 0.25 + 0.15*0.5) / 0.70
	if got := defaultScorer().score(known, hidden); math.Abs(got-want) > 1e-9 {
		t.Errorf("score with hidden size = %g, want %g", got, want)
	}
}

func TestScoreSizeDistance(t *testing.T) {
	s := scorer{weights: Weights{Size: 1}}

	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"equal", 6, 6, 1.0},
		{"one order apart", 6, 7, 1 - 1.0/3},
		{"1M vs 1.2M nearly identical", 6, math.Log10(1200000), 1 - math.Log10(1.2)/3},
		{"three orders apart", 3, 6, 0.0},
		{"beyond span clamps", 2, 8, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := featureSet{magnitude: tt.a, sizeKnown: true}
			b := featureSet{magnitude: tt.b, sizeKnown: true}
			if got := s.score(a, b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("size score = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestScoreBounds(t *testing.T) {
	s := defaultScorer()
	extremes := []featureSet{
		{},
		{tokens: tokenSet("alpha"), topics: tokenSet("x"), magnitude: 20, sizeKnown: true},
		{tokens: tokenSet("beta"), videoTokens: tokenSet("laser")},
	}

	for _, a := range extremes {
		for _, b := range extremes {
			got := s.score(a, b)
			if got < 0 || got > 1 {
				t.Errorf("score(%+v, %+v) = %g, outside [0, 1]", a, b, got)
			}
		}
	}
}

func TestScoreZeroWeights(t *testing.T) {
	s := scorer{}
	a := featureSet{tokens: tokenSet("alpha")}
	if got := s.score(a, a); got != 0 {
		t.Errorf("score with zero weights = %g, want 0", got)
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0}, {0, 0}, {0.42, 0.42}, {1, 1}, {1.7, 1},
	}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}
