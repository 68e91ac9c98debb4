// Package recommend ranks YouTube channels by similarity to a seed
// channel. Discovery collects unknown channels through related-video
// traversal and topic search, then scores, filters, and ranks them;
// recommendation ranks channels the user already follows against the
// seed. Scoring combines token, topic, size, and video-content
// similarity with configurable weights, and runs entirely on data an
// injected provider supplies.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"ytscout/youtube"
)

// MetadataProvider supplies channel and video metadata. youtube.Client
// implements it; tests substitute fakes.
type MetadataProvider interface {
	Channel(ctx context.Context, id string) (*youtube.Channel, error)
	ChannelsByIDs(ctx context.Context, ids []string) ([]*youtube.Channel, error)
	PopularVideos(ctx context.Context, channelID string, limit int) ([]youtube.Video, error)
	RecentVideos(ctx context.Context, channelID string, limit int) ([]youtube.Video, error)
	RelatedVideos(ctx context.Context, videoID string, limit int) ([]youtube.Video, error)
	SearchChannelsByTopic(ctx context.Context, topic string, limit int) ([]string, error)
	SearchChannelsByKeyword(ctx context.Context, keyword string, limit int) ([]string, error)
}

// Result is one ranked output entry.
type Result struct {
	// Channel is the candidate's full record.
	Channel *youtube.Channel

	// Score is the ranking score in [0, 1]. For discovery it includes
	// the discovery boost; for recommendation it is the plain
	// similarity.
	Score float64

	// DiscoveryCount is how many discovery events surfaced the
	// channel. Zero for recommendation results.
	DiscoveryCount int
}

// Engine runs the discovery and recommendation flows against a
// provider. Construct with NewEngine; the zero value is not usable.
type Engine struct {
	provider MetadataProvider
	cfg      Config
	scorer   scorer
	filter   qualityFilter
}

// NewEngine validates cfg and builds an engine.
func NewEngine(provider MetadataProvider, cfg Config) (*Engine, error) {
	if provider == nil {
		return nil, errors.New("recommend: nil provider")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		provider: provider,
		cfg:      cfg,
		scorer:   scorer{weights: cfg.Weights},
		filter:   newQualityFilter(cfg),
	}, nil
}

// Discover finds channels similar to the seed that the user does not
// follow yet. It returns at most cfg.TopN results ordered by boosted
// score, then discovery count. An empty result is valid; a seed that
// cannot be fetched is fatal.
func (e *Engine) Discover(ctx context.Context, seedID string, subs SubscriptionSet) ([]Result, error) {
	seed, err := e.provider.Channel(ctx, seedID)
	if err != nil {
		return nil, fmt.Errorf("fetch seed channel %s: %w", seedID, err)
	}

	seedFeatures, err := e.features(ctx, seed)
	if err != nil {
		return nil, err
	}

	p := newPool(seed.ID, subs)
	coll := collector{provider: e.provider, cfg: e.cfg}
	if err := coll.collect(ctx, seed, p); err != nil {
		return nil, err
	}
	log.Info().Str("seed", seed.Title).Int("pool", p.size()).Msg("discover: candidate pool collected")
	p.trim(e.cfg.MaxCandidates)

	entries, err := e.scoreEntries(ctx, seedFeatures, p.list())
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		entry.score = clamp01(entry.score + discoveryBoost(entry.count))
	}

	ranked := rankDiscovered(entries, e.cfg.TopN)
	log.Info().Int("results", len(ranked)).Msg("discover: ranking complete")
	return results(ranked, true), nil
}

// Recommend ranks candidateIDs, normally the user's subscriptions, by
// similarity to the seed. The seed itself and duplicates are ignored.
// It returns at most cfg.TopN results ordered by score, then
// subscriber count.
func (e *Engine) Recommend(ctx context.Context, seedID string, candidateIDs []string) ([]Result, error) {
	seed, err := e.provider.Channel(ctx, seedID)
	if err != nil {
		return nil, fmt.Errorf("fetch seed channel %s: %w", seedID, err)
	}

	seedFeatures, err := e.features(ctx, seed)
	if err != nil {
		return nil, err
	}

	p := newPool(seed.ID, nil)
	for _, id := range candidateIDs {
		p.add(id)
	}

	entries, err := e.scoreEntries(ctx, seedFeatures, p.list())
	if err != nil {
		return nil, err
	}

	ranked := rankRecommended(entries, e.cfg.TopN)
	log.Info().Str("seed", seed.Title).Int("results", len(ranked)).Msg("recommend: ranking complete")
	return results(ranked, false), nil
}

// scoreEntries fetches candidate details in bulk, drops entries that
// cannot be fetched or fail the quality filter or score floor, and
// fills in each survivor's channel and similarity score.
func (e *Engine) scoreEntries(ctx context.Context, seedFeatures featureSet, entries []*candidateEntry) ([]*candidateEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.id
	}
	channels, err := e.provider.ChannelsByIDs(ctx, ids)
	if err != nil {
		if fatalFetch(err) {
			return nil, err
		}
		log.Warn().Err(err).Msg("recommend: candidate details unavailable")
		return nil, nil
	}
	byID := make(map[string]*youtube.Channel, len(channels))
	for _, ch := range channels {
		byID[ch.ID] = ch
	}

	var survivors []*candidateEntry
	for _, entry := range entries {
		ch, ok := byID[entry.id]
		if !ok {
			continue
		}
		if !e.filter.pass(ch) {
			continue
		}
		videos, err := e.videoSample(ctx, ch.ID)
		if err != nil {
			return nil, err
		}
		score := e.scorer.score(seedFeatures, channelFeatures(ch, videos))
		if score < e.cfg.MinScore {
			continue
		}
		entry.channel = ch
		entry.score = score
		survivors = append(survivors, entry)
	}
	return survivors, nil
}

func (e *Engine) features(ctx context.Context, ch *youtube.Channel) (featureSet, error) {
	videos, err := e.videoSample(ctx, ch.ID)
	if err != nil {
		return featureSet{}, err
	}
	return channelFeatures(ch, videos), nil
}

// videoSample fetches the recent uploads feeding the video-content
// signal. Failures cost only that signal, not the run.
func (e *Engine) videoSample(ctx context.Context, channelID string) ([]youtube.Video, error) {
	if e.cfg.VideoSample <= 0 {
		return nil, nil
	}
	videos, err := e.provider.RecentVideos(ctx, channelID, e.cfg.VideoSample)
	if err != nil {
		if fatalFetch(err) {
			return nil, err
		}
		log.Debug().Err(err).Str("channel", channelID).
			Msg("recommend: recent videos unavailable, scoring without video signal")
		return nil, nil
	}
	return videos, nil
}

func results(entries []*candidateEntry, withCounts bool) []Result {
	out := make([]Result, 0, len(entries))
	for _, entry := range entries {
		r := Result{Channel: entry.channel, Score: entry.score}
		if withCounts {
			r.DiscoveryCount = entry.count
		}
		out = append(out, r)
	}
	return out
}

// ResolveSeed turns user input into a channel ID. A well-formed ID
// passes through; otherwise the user's subscriptions are checked for a
// case-insensitive title match (exact first, then a unique substring
// match); as a last resort the input becomes a channel search and the
// top hit wins. Unresolvable input maps to youtube.ErrChannelNotFound.
func ResolveSeed(ctx context.Context, provider MetadataProvider, input string, subs []youtube.Subscription) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("resolve seed: %w", youtube.ErrChannelNotFound)
	}
	if youtube.IsChannelID(input) {
		return input, nil
	}

	lower := strings.ToLower(input)
	var partial []string
	for _, sub := range subs {
		title := strings.ToLower(sub.Title)
		if title == lower {
			return sub.ChannelID, nil
		}
		if strings.Contains(title, lower) {
			partial = append(partial, sub.ChannelID)
		}
	}
	if len(partial) == 1 {
		return partial[0], nil
	}

	ids, err := provider.SearchChannelsByKeyword(ctx, input, 1)
	if err != nil {
		return "", fmt.Errorf("resolve seed %q: %w", input, err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("resolve seed %q: %w", input, youtube.ErrChannelNotFound)
	}
	return ids[0], nil
}
