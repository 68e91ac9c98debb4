package recommend

import "fmt"

// Weights are the relative importances of the similarity components.
// They need not sum to one; the scorer divides by the active weight
// sum, which also redistributes the video weight when no video sample
// exists.
type Weights struct {
	// Text weighs token overlap between channel titles and
	// descriptions.
	Text float64 `json:"text"`

	// Topic weighs overlap between topic category sets.
	Topic float64 `json:"topic"`

	// Size weighs closeness in subscriber-count magnitude.
	Size float64 `json:"size"`

	// Video weighs token overlap between recent-upload titles and
	// descriptions.
	Video float64 `json:"video"`
}

// DefaultWeights returns the standard component weighting.
func DefaultWeights() Weights {
	return Weights{Text: 0.30, Topic: 0.25, Size: 0.15, Video: 0.30}
}

// Config tunes a run. Zero values are not usable; start from
// DefaultDiscoverConfig or DefaultRecommendConfig.
type Config struct {
	// MinSubscribers is the inclusive quality floor for known
	// subscriber counts. Zero disables the floor. Channels hiding
	// their count always pass.
	MinSubscribers int64 `json:"min_subscribers"`

	// MinVideoCount is the minimum number of uploads a candidate must
	// have. Zero disables the floor.
	MinVideoCount int64 `json:"min_video_count"`

	// MaxCandidates caps the raw candidate pool before detail
	// fetching. Lowest discovery counts are dropped first.
	MaxCandidates int `json:"max_candidates"`

	// TopN is the length of the ranked output.
	TopN int `json:"top_n"`

	// MinScore drops candidates whose similarity, before any discovery
	// boost, falls below it.
	MinScore float64 `json:"min_score"`

	// Weights are the similarity component weights.
	Weights Weights `json:"weights"`

	// PopularFetch is how many of the seed's most-viewed videos to
	// fetch for related-video traversal.
	PopularFetch int `json:"popular_fetch"`

	// PopularSample is how many of those videos are actually
	// traversed. Each traversal is one search call.
	PopularSample int `json:"popular_sample"`

	// RelatedPerVideo bounds the related videos requested per
	// traversed video.
	RelatedPerVideo int `json:"related_per_video"`

	// TopicSearches bounds how many of the seed's topic categories get
	// a channel search.
	TopicSearches int `json:"topic_searches"`

	// TopicSearchLimit bounds the channels returned per topic search.
	TopicSearchLimit int `json:"topic_search_limit"`

	// VideoSample is how many recent uploads per channel feed the
	// video-content signal. Zero disables the signal.
	VideoSample int `json:"video_sample"`
}

// DefaultDiscoverConfig returns the tuning for finding channels the
// user does not follow yet.
func DefaultDiscoverConfig() Config {
	return Config{
		MinSubscribers:   50000,
		MinVideoCount:    10,
		MaxCandidates:    50,
		TopN:             15,
		MinScore:         0.2,
		Weights:          DefaultWeights(),
		PopularFetch:     5,
		PopularSample:    3,
		RelatedPerVideo:  25,
		TopicSearches:    3,
		TopicSearchLimit: 20,
		VideoSample:      10,
	}
}

// DefaultRecommendConfig returns the tuning for ranking the user's own
// subscriptions against a seed. Quality floors are off; the user
// already chose these channels.
func DefaultRecommendConfig() Config {
	return Config{
		MaxCandidates: 500,
		TopN:          10,
		MinScore:      0.15,
		Weights:       DefaultWeights(),
		VideoSample:   10,
	}
}

// Validate reports the first problem that would make a run
// meaningless.
func (c Config) Validate() error {
	if c.MinSubscribers < 0 {
		return fmt.Errorf("recommend: min subscribers must not be negative, got %d", c.MinSubscribers)
	}
	if c.MinVideoCount < 0 {
		return fmt.Errorf("recommend: min video count must not be negative, got %d", c.MinVideoCount)
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("recommend: max candidates must be positive, got %d", c.MaxCandidates)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("recommend: top n must be positive, got %d", c.TopN)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("recommend: min score must be in [0, 1], got %g", c.MinScore)
	}
	w := c.Weights
	if w.Text < 0 || w.Topic < 0 || w.Size < 0 || w.Video < 0 {
		return fmt.Errorf("recommend: weights must not be negative, got %+v", w)
	}
	if w.Text+w.Topic+w.Size+w.Video <= 0 {
		return fmt.Errorf("recommend: at least one weight must be positive")
	}
	if c.PopularFetch < 0 || c.PopularSample < 0 || c.RelatedPerVideo < 0 ||
		c.TopicSearches < 0 || c.TopicSearchLimit < 0 || c.VideoSample < 0 {
		return fmt.Errorf("recommend: fetch limits must not be negative")
	}
	return nil
}
