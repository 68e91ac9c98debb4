package recommend

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"ytscout/youtube"
)

// collector fills a pool with candidate channel IDs using two
// independent methods: walking related videos off the seed's most
// popular uploads, and searching channels by the seed's topic
// categories. A channel surfaced by both methods accumulates a higher
// discovery count, which is the only corroboration signal carried
// forward.
//
// Individual fetch failures are absorbed: the failing source's
// contribution is dropped and collection continues. Only cancellation
// aborts.
type collector struct {
	provider MetadataProvider
	cfg      Config
}

func (c collector) collect(ctx context.Context, seed *youtube.Channel, p *pool) error {
	if err := c.fromRelatedVideos(ctx, seed, p); err != nil {
		return err
	}
	return c.fromTopicSearch(ctx, seed, p)
}

func (c collector) fromRelatedVideos(ctx context.Context, seed *youtube.Channel, p *pool) error {
	if c.cfg.PopularSample <= 0 || c.cfg.RelatedPerVideo <= 0 {
		return nil
	}

	popular, err := c.provider.PopularVideos(ctx, seed.ID, c.cfg.PopularFetch)
	if err != nil {
		if fatalFetch(err) {
			return err
		}
		log.Warn().Err(err).Str("channel", seed.ID).
			Msg("discover: popular videos unavailable, skipping related-video traversal")
		return nil
	}

	sample := popular
	if len(sample) > c.cfg.PopularSample {
		sample = sample[:c.cfg.PopularSample]
	}

	for _, video := range sample {
		related, err := c.provider.RelatedVideos(ctx, video.ID, c.cfg.RelatedPerVideo)
		if err != nil {
			if fatalFetch(err) {
				return err
			}
			log.Warn().Err(err).Str("video", video.ID).
				Msg("discover: related videos unavailable for one source, continuing")
			continue
		}
		for _, r := range related {
			p.add(r.ChannelID)
		}
	}
	return nil
}

func (c collector) fromTopicSearch(ctx context.Context, seed *youtube.Channel, p *pool) error {
	if c.cfg.TopicSearches <= 0 || c.cfg.TopicSearchLimit <= 0 {
		return nil
	}

	topics := topicNames(seed.Topics)
	if len(topics) > c.cfg.TopicSearches {
		topics = topics[:c.cfg.TopicSearches]
	}

	for _, topic := range topics {
		ids, err := c.provider.SearchChannelsByTopic(ctx, topic, c.cfg.TopicSearchLimit)
		if err != nil {
			if fatalFetch(err) {
				return err
			}
			log.Warn().Err(err).Str("topic", topic).
				Msg("discover: topic search failed, continuing")
			continue
		}
		for _, id := range ids {
			p.add(id)
		}
	}
	return nil
}

// fatalFetch reports whether a sub-fetch error must abort the run.
// Cancellation is caller intent; every other failure just costs one
// source.
func fatalFetch(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
