package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ytscout/cache"
	"ytscout/internal/retry"
)

// Quota unit costs per Data API operation.
const (
	quotaCostList   = 1
	quotaCostSearch = 100
)

const (
	defaultDailyQuota = 10000
	defaultRPS        = 5.0
	defaultBurst      = 5
	maxPageSize       = 50
)

// Options configures a Client.
type Options struct {
	// APIKey authorizes public-data calls.
	APIKey string

	// HTTPClient is an OAuth-authorized client. Required for
	// Subscriptions; takes precedence over APIKey when both are set.
	HTTPClient *http.Client

	// DailyQuota is the unit budget this client may spend. Defaults to
	// the API's free tier allotment.
	DailyQuota int

	// QuotaReserve is withheld from the budget so other tools sharing
	// the same key keep working.
	QuotaReserve int

	// RequestsPerSecond paces API calls.
	RequestsPerSecond float64

	// Retry overrides the transient-failure retry policy.
	Retry *retry.Config

	// Cache, when non-nil, is consulted before spending quota and
	// filled afterward.
	Cache *cache.Cache
}

// Client wraps the Data API v3 service with quota accounting, request
// pacing, bounded retries, and a per-backend circuit breaker.
type Client struct {
	service  *youtube.Service
	feed     *feedFetcher
	limiter  *rate.Limiter
	breaker  *Breaker
	cache    *cache.Cache
	retryCfg retry.Config
	hasOAuth bool

	mu        sync.Mutex
	budget    int
	reserve   int
	used      int
	exhausted bool
	warned    bool
}

// NewClient builds a metadata client from opts. One of APIKey or
// HTTPClient must be set.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	var clientOpts []option.ClientOption
	switch {
	case opts.HTTPClient != nil:
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	case opts.APIKey != "":
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	default:
		return nil, ErrNoCredentials
	}

	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	retryCfg := retry.DefaultConfig()
	if opts.Retry != nil {
		retryCfg = *opts.Retry
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	budget := opts.DailyQuota
	if budget <= 0 {
		budget = defaultDailyQuota
	}

	return &Client{
		service:  service,
		feed:     newFeedFetcher(retryCfg),
		limiter:  rate.NewLimiter(rate.Limit(rps), defaultBurst),
		breaker:  newBreaker(defaultBreakerThreshold, defaultBreakerCooldown, transientAPIError),
		cache:    opts.Cache,
		retryCfg: retryCfg,
		hasOAuth: opts.HTTPClient != nil,
		budget:   budget,
		reserve:  opts.QuotaReserve,
	}, nil
}

// Channel fetches one channel's metadata.
func (c *Client) Channel(ctx context.Context, id string) (*Channel, error) {
	key := cache.Key("channel", id)
	var cached Channel
	if c.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	var ch *Channel
	err := c.call(ctx, "channel", id, quotaCostList, func(ctx context.Context) error {
		resp, err := c.service.Channels.List([]string{"snippet", "statistics", "topicDetails"}).
			Id(id).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return ErrChannelNotFound
		}
		ch = channelFromAPI(resp.Items[0])
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, key, ch)
	return ch, nil
}

// ChannelsByIDs fetches details for many channels, batching 50 IDs per
// API call. Unknown IDs are dropped; input order is preserved.
func (c *Client) ChannelsByIDs(ctx context.Context, ids []string) ([]*Channel, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	byID := make(map[string]*Channel, len(ids))
	var missing []string
	for _, id := range ids {
		var cached Channel
		if c.cache.Get(ctx, cache.Key("channel", id), &cached) {
			byID[id] = &cached
		} else {
			missing = append(missing, id)
		}
	}

	for start := 0; start < len(missing); start += maxPageSize {
		batch := missing[start:min(start+maxPageSize, len(missing))]
		err := c.call(ctx, "channels", fmt.Sprintf("batch of %d", len(batch)), quotaCostList, func(ctx context.Context) error {
			resp, err := c.service.Channels.List([]string{"snippet", "statistics", "topicDetails"}).
				Id(batch...).
				Context(ctx).
				Do()
			if err != nil {
				return err
			}
			for _, item := range resp.Items {
				ch := channelFromAPI(item)
				byID[ch.ID] = ch
				c.cache.Set(ctx, cache.Key("channel", ch.ID), ch)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	out := make([]*Channel, 0, len(ids))
	for _, id := range ids {
		if ch, ok := byID[id]; ok {
			out = append(out, ch)
		}
	}
	return out, nil
}

// PopularVideos returns the channel's most-viewed uploads.
func (c *Client) PopularVideos(ctx context.Context, channelID string, limit int) ([]Video, error) {
	key := cache.Key("popular", fmt.Sprintf("%s:%d", channelID, limit))
	var videos []Video
	if c.cache.Get(ctx, key, &videos) {
		return videos, nil
	}

	err := c.call(ctx, "popular", channelID, quotaCostSearch, func(ctx context.Context) error {
		resp, err := c.service.Search.List([]string{"snippet"}).
			ChannelId(channelID).
			Type("video").
			Order("viewCount").
			MaxResults(int64(min(limit, maxPageSize))).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		videos = searchVideos(resp.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, key, videos)
	// Prime per-video entries so RelatedVideos skips the title lookup.
	for _, v := range videos {
		c.cache.Set(ctx, cache.Key("video", v.ID), v)
	}
	return videos, nil
}

// RecentVideos returns the channel's newest uploads. The uploads feed
// is free of quota, so it is tried first; the search fallback costs
// 100 units and only runs when the feed path is down.
func (c *Client) RecentVideos(ctx context.Context, channelID string, limit int) ([]Video, error) {
	if err := c.breaker.Allow(backendFeed); err == nil {
		videos, ferr := c.feed.recentVideos(ctx, channelID, limit)
		if ferr == nil {
			c.breaker.Success(backendFeed)
			return videos, nil
		}
		c.breaker.Failure(backendFeed, ferr)
		if errors.Is(ferr, ErrChannelNotFound) {
			return nil, ferr
		}
		log.Debug().Err(ferr).Str("channel", channelID).Msg("youtube: uploads feed failed, falling back to search")
	}

	key := cache.Key("recent", fmt.Sprintf("%s:%d", channelID, limit))
	var videos []Video
	if c.cache.Get(ctx, key, &videos) {
		return videos, nil
	}

	err := c.call(ctx, "recent", channelID, quotaCostSearch, func(ctx context.Context) error {
		resp, err := c.service.Search.List([]string{"snippet"}).
			ChannelId(channelID).
			Type("video").
			Order("date").
			MaxResults(int64(min(limit, maxPageSize))).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		videos = searchVideos(resp.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, key, videos)
	return videos, nil
}

// RelatedVideos approximates the Data API's retired relatedToVideoId
// search filter: look up the source video's title and run a relevance
// search on it, dropping the source itself from the results.
func (c *Client) RelatedVideos(ctx context.Context, videoID string, limit int) ([]Video, error) {
	src, err := c.video(ctx, videoID)
	if err != nil {
		return nil, err
	}

	key := cache.Key("related", fmt.Sprintf("%s:%d", videoID, limit))
	var videos []Video
	if c.cache.Get(ctx, key, &videos) {
		return videos, nil
	}

	err = c.call(ctx, "related", videoID, quotaCostSearch, func(ctx context.Context) error {
		resp, err := c.service.Search.List([]string{"snippet"}).
			Q(src.Title).
			Type("video").
			MaxResults(int64(min(limit+1, maxPageSize))).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		videos = videos[:0]
		for _, v := range searchVideos(resp.Items) {
			if v.ID == videoID {
				continue
			}
			videos = append(videos, v)
		}
		if len(videos) > limit {
			videos = videos[:limit]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, key, videos)
	return videos, nil
}

// SearchChannelsByTopic returns channel IDs matching a topic's display
// name, most relevant first.
func (c *Client) SearchChannelsByTopic(ctx context.Context, topic string, limit int) ([]string, error) {
	return c.searchChannels(ctx, topic, limit)
}

// SearchChannelsByKeyword returns channel IDs for a free-text query.
func (c *Client) SearchChannelsByKeyword(ctx context.Context, keyword string, limit int) ([]string, error) {
	return c.searchChannels(ctx, keyword, limit)
}

func (c *Client) searchChannels(ctx context.Context, query string, limit int) ([]string, error) {
	key := cache.Key("chsearch", fmt.Sprintf("%s:%d", query, limit))
	var ids []string
	if c.cache.Get(ctx, key, &ids) {
		return ids, nil
	}

	err := c.call(ctx, "search", query, quotaCostSearch, func(ctx context.Context) error {
		resp, err := c.service.Search.List([]string{"snippet"}).
			Q(query).
			Type("channel").
			Order("relevance").
			MaxResults(int64(min(limit, maxPageSize))).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		ids = ids[:0]
		for _, item := range resp.Items {
			if item.Id != nil && item.Id.ChannelId != "" {
				ids = append(ids, item.Id.ChannelId)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, key, ids)
	return ids, nil
}

// Subscriptions pages through the authenticated user's subscription
// feed. Requires an OAuth-backed client.
func (c *Client) Subscriptions(ctx context.Context) ([]Subscription, error) {
	if !c.hasOAuth {
		return nil, &ProviderError{Op: "subscriptions", ID: "mine", Err: ErrOAuthRequired}
	}

	var subs []Subscription
	pageToken := ""
	for {
		err := c.call(ctx, "subscriptions", "mine", quotaCostList, func(ctx context.Context) error {
			resp, err := c.service.Subscriptions.List([]string{"snippet"}).
				Mine(true).
				MaxResults(maxPageSize).
				PageToken(pageToken).
				Context(ctx).
				Do()
			if err != nil {
				return err
			}
			for _, item := range resp.Items {
				if item.Snippet == nil || item.Snippet.ResourceId == nil {
					continue
				}
				sub := Subscription{
					ChannelID:   item.Snippet.ResourceId.ChannelId,
					Title:       item.Snippet.Title,
					Description: item.Snippet.Description,
				}
				if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
					sub.SubscribedAt = t
				}
				if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil {
					sub.Thumbnail = item.Snippet.Thumbnails.Default.Url
				}
				subs = append(subs, sub)
			}
			pageToken = resp.NextPageToken
			return nil
		})
		if err != nil {
			return nil, err
		}
		if pageToken == "" {
			break
		}
	}

	log.Info().Int("count", len(subs)).Msg("youtube: fetched subscriptions")
	return subs, nil
}

// video returns a single video's metadata, preferring the cache
// entries PopularVideos leaves behind.
func (c *Client) video(ctx context.Context, id string) (*Video, error) {
	key := cache.Key("video", id)
	var cached Video
	if c.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	var v *Video
	err := c.call(ctx, "video", id, quotaCostList, func(ctx context.Context) error {
		resp, err := c.service.Videos.List([]string{"snippet"}).
			Id(id).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(resp.Items) == 0 {
			return ErrVideoNotFound
		}
		item := resp.Items[0]
		v = &Video{ID: item.Id}
		if item.Snippet != nil {
			v.ChannelID = item.Snippet.ChannelId
			v.ChannelTitle = item.Snippet.ChannelTitle
			v.Title = item.Snippet.Title
			v.Description = item.Snippet.Description
			if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
				v.Published = t
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, key, v)
	return v, nil
}

// call runs one Data API operation through the quota gate, breaker,
// limiter, and retry policy, charging cost units on success.
func (c *Client) call(ctx context.Context, op, id string, cost int, fn func(context.Context) error) error {
	if err := c.reserveQuota(cost); err != nil {
		return &ProviderError{Op: op, ID: id, Err: err}
	}
	if err := c.breaker.Allow(backendAPI); err != nil {
		return &ProviderError{Op: op, ID: id, Err: err}
	}

	err := retry.Do(ctx, c.retryCfg, apiErrorClassifier, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classifyAPIError(err)
	})
	if err != nil {
		c.breaker.Failure(backendAPI, err)
		if errors.Is(err, ErrQuotaExhausted) {
			c.markExhausted()
		}
		return &ProviderError{Op: op, ID: id, Err: err}
	}

	c.breaker.Success(backendAPI)
	c.chargeQuota(cost)
	return nil
}

// reserveQuota fails fast when a call would cross the unit budget.
func (c *Client) reserveQuota(cost int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exhausted {
		return ErrQuotaExhausted
	}
	if c.used+cost > c.budget-c.reserve {
		if !c.warned {
			c.warned = true
			log.Warn().
				Int("used", c.used).
				Int("cost", cost).
				Int("budget", c.budget-c.reserve).
				Msg("youtube: call would exceed quota budget")
		}
		return ErrQuotaExhausted
	}
	return nil
}

func (c *Client) chargeQuota(cost int) {
	c.mu.Lock()
	c.used += cost
	used, remaining := c.used, c.budget-c.reserve-c.used
	c.mu.Unlock()

	log.Debug().Int("cost", cost).Int("used", used).Int("remaining", remaining).Msg("youtube: quota charge")
}

// markExhausted latches the quota gate after the API itself reported
// the daily budget spent.
func (c *Client) markExhausted() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.exhausted {
		c.exhausted = true
		log.Warn().Int("used", c.used).Msg("youtube: API reported quota exhausted")
	}
}

// QuotaUsed returns the units this client has spent.
func (c *Client) QuotaUsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// QuotaRemaining returns the unspent portion of the configured budget.
func (c *Client) QuotaRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budget - c.reserve - c.used
}

// CacheStats reports the response cache's counters.
func (c *Client) CacheStats() cache.Stats {
	return c.cache.Stats()
}

func channelFromAPI(item *youtube.Channel) *Channel {
	ch := &Channel{ID: item.Id}
	if item.Snippet != nil {
		ch.Title = item.Snippet.Title
		ch.Description = item.Snippet.Description
		ch.Country = item.Snippet.Country
		if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			ch.PublishedAt = t
		}
	}
	if item.Statistics != nil {
		ch.Subscribers = int64(item.Statistics.SubscriberCount)
		ch.SubscribersHidden = item.Statistics.HiddenSubscriberCount
		ch.VideoCount = int64(item.Statistics.VideoCount)
		ch.ViewCount = int64(item.Statistics.ViewCount)
	}
	if item.TopicDetails != nil {
		ch.Topics = append(ch.Topics, item.TopicDetails.TopicCategories...)
	}
	return ch
}

func searchVideos(items []*youtube.SearchResult) []Video {
	videos := make([]Video, 0, len(items))
	for _, item := range items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		v := Video{ID: item.Id.VideoId}
		if item.Snippet != nil {
			v.ChannelID = item.Snippet.ChannelId
			v.ChannelTitle = item.Snippet.ChannelTitle
			v.Title = item.Snippet.Title
			v.Description = item.Snippet.Description
			if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
				v.Published = t
			}
		}
		videos = append(videos, v)
	}
	return videos
}

// classifyAPIError maps googleapi errors onto the package sentinels so
// callers can branch with errors.Is.
func classifyAPIError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "quotaExceeded", "dailyLimitExceeded":
			return fmt.Errorf("%w: %s", ErrQuotaExhausted, gerr.Message)
		case "rateLimitExceeded", "userRateLimitExceeded":
			return fmt.Errorf("%w: %s", ErrRateLimited, gerr.Message)
		}
	}
	if gerr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, gerr.Message)
	}
	return err
}

// apiErrorClassifier reports whether an API error is worth retrying.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrChannelNotFound), errors.Is(err, ErrVideoNotFound):
		return false
	case errors.Is(err, ErrQuotaExhausted):
		// The daily budget does not come back within a run.
		return false
	case errors.Is(err, ErrBackendDown), errors.Is(err, ErrOAuthRequired):
		return false
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrNetworkTimeout):
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code >= 500
	}
	return true
}

// transientAPIError gates the circuit breaker: only failures that
// suggest backend trouble count toward opening it.
func transientAPIError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrChannelNotFound), errors.Is(err, ErrVideoNotFound), errors.Is(err, ErrOAuthRequired):
		return false
	}
	return true
}
