package ytscout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"ytscout/auth"
	"ytscout/cache"
	"ytscout/config"
	"ytscout/recommend"
	"ytscout/storage"
	"ytscout/youtube"
)

// Result is the outcome of a ranking flow.
type Result struct {
	// Seed is the resolved seed channel.
	Seed *youtube.Channel
	// Ranked holds the ranked channels, best first.
	Ranked []recommend.Result
	// Report is the persistable form of the run. Save it with SaveReport.
	Report *storage.Report
	// QuotaUsed is the API unit spend of the run.
	QuotaUsed int
}

// ProbeStats is the result of a quota diagnostic run.
type ProbeStats struct {
	Channel        *youtube.Channel
	QuotaUsed      int
	QuotaRemaining int
	Cache          cache.Stats
}

// SyncSubscriptions authenticates the user, pages through every
// subscription of the account, and persists the subscription artifacts
// to the configured output directory.
func SyncSubscriptions(ctx context.Context, cfg *config.Config) (*storage.SubscriptionList, error) {
	httpClient, err := auth.Client(ctx, auth.Options{
		ClientSecretsFile: cfg.ClientSecretsFile,
		TokenFile:         cfg.TokenFile,
	})
	if err != nil {
		return nil, err
	}

	client, done, err := newClient(ctx, cfg, httpClient)
	if err != nil {
		return nil, err
	}
	defer done()

	subs, err := client.Subscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch subscriptions: %w", err)
	}

	list := &storage.SubscriptionList{
		Subscriptions: make([]storage.Subscription, 0, len(subs)),
	}
	for _, sub := range subs {
		list.Subscriptions = append(list.Subscriptions, storage.Subscription{
			ChannelID:    sub.ChannelID,
			Title:        sub.Title,
			Description:  sub.Description,
			URL:          sub.ChannelURL(),
			SubscribedAt: sub.SubscribedAt,
		})
	}

	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.SaveSubscriptions(ctx, list); err != nil {
		return nil, err
	}
	log.Info().Int("count", list.Count).Str("dir", store.Dir()).Msg("subscriptions saved")
	return list, nil
}

// Discover resolves the seed channel, gathers candidates from its most
// popular videos' related results and from topic searches, and returns
// channels the user is not subscribed to, ranked by similarity and
// discovery frequency.
func Discover(ctx context.Context, cfg *config.Config, seed string) (*Result, error) {
	client, done, err := newClient(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	defer done()

	list := loadSubscriptions(ctx, cfg)

	seedID, err := recommend.ResolveSeed(ctx, client, seed, resolveInput(list))
	if err != nil {
		return nil, err
	}

	engine, err := recommend.NewEngine(client, cfg.Discover)
	if err != nil {
		return nil, err
	}

	ranked, err := engine.Discover(ctx, seedID, recommend.NewSubscriptionSet(list.ChannelIDs()...))
	if err != nil {
		return nil, err
	}

	seedCh, err := client.Channel(ctx, seedID)
	if err != nil {
		return nil, fmt.Errorf("fetch seed channel %s: %w", seedID, err)
	}

	return &Result{
		Seed:      seedCh,
		Ranked:    ranked,
		Report:    buildReport(storage.ReportDiscovery, seedCh, ranked, cfg.Discover),
		QuotaUsed: client.QuotaUsed(),
	}, nil
}

// Recommend ranks the user's saved subscriptions by similarity to the
// seed channel. The subscriptions flow must have run first.
func Recommend(ctx context.Context, cfg *config.Config, seed string) (*Result, error) {
	client, done, err := newClient(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	defer done()

	list := loadSubscriptions(ctx, cfg)
	if list == nil || len(list.Subscriptions) == 0 {
		return nil, fmt.Errorf("no saved subscriptions, run the subscriptions flow first: %w", storage.ErrNotFound)
	}

	seedID, err := recommend.ResolveSeed(ctx, client, seed, resolveInput(list))
	if err != nil {
		return nil, err
	}

	engine, err := recommend.NewEngine(client, cfg.Recommend)
	if err != nil {
		return nil, err
	}

	ranked, err := engine.Recommend(ctx, seedID, list.ChannelIDs())
	if err != nil {
		return nil, err
	}

	seedCh, err := client.Channel(ctx, seedID)
	if err != nil {
		return nil, fmt.Errorf("fetch seed channel %s: %w", seedID, err)
	}

	return &Result{
		Seed:      seedCh,
		Ranked:    ranked,
		Report:    buildReport(storage.ReportRecommendation, seedCh, ranked, cfg.Recommend),
		QuotaUsed: client.QuotaUsed(),
	}, nil
}

// SaveReport persists a report into the configured output directory and
// returns the path written.
func SaveReport(ctx context.Context, cfg *config.Config, report *storage.Report) (string, error) {
	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		return "", err
	}
	defer store.Close()
	return store.SaveReport(ctx, report)
}

// QuotaProbe performs a single channel lookup through the regular client
// path and reports the session's quota and cache counters.
func QuotaProbe(ctx context.Context, cfg *config.Config, channelID string) (*ProbeStats, error) {
	client, done, err := newClient(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	defer done()

	ch, err := client.Channel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	return &ProbeStats{
		Channel:        ch,
		QuotaUsed:      client.QuotaUsed(),
		QuotaRemaining: client.QuotaRemaining(),
		Cache:          client.CacheStats(),
	}, nil
}

// newClient assembles the metadata client with the cache, quota, and
// retry policy from cfg. The returned func releases the cache.
func newClient(ctx context.Context, cfg *config.Config, httpClient *http.Client) (*youtube.Client, func(), error) {
	metaCache := cache.New(cfg.CacheConfig())
	retryCfg := cfg.RetryConfig()

	client, err := youtube.NewClient(ctx, youtube.Options{
		APIKey:            cfg.APIKey,
		HTTPClient:        httpClient,
		DailyQuota:        cfg.DailyQuota,
		QuotaReserve:      cfg.QuotaReserve,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Retry:             &retryCfg,
		Cache:             metaCache,
	})
	if err != nil {
		metaCache.Close()
		return nil, nil, err
	}
	return client, func() { metaCache.Close() }, nil
}

// loadSubscriptions reads the saved subscription list, tolerating its
// absence. Discovery only uses it as an exclusion set.
func loadSubscriptions(ctx context.Context, cfg *config.Config) *storage.SubscriptionList {
	store, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		log.Debug().Err(err).Msg("subscription store unavailable")
		return nil
	}
	defer store.Close()

	list, err := store.LoadSubscriptions(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Msg("could not load saved subscriptions")
		}
		return nil
	}
	return list
}

// resolveInput projects stored subscriptions into the resolver's view.
func resolveInput(list *storage.SubscriptionList) []youtube.Subscription {
	if list == nil {
		return nil
	}
	subs := make([]youtube.Subscription, 0, len(list.Subscriptions))
	for _, s := range list.Subscriptions {
		subs = append(subs, youtube.Subscription{ChannelID: s.ChannelID, Title: s.Title})
	}
	return subs
}

// buildReport converts ranked results into their persistable form.
func buildReport(kind storage.ReportKind, seed *youtube.Channel, ranked []recommend.Result, cfg recommend.Config) *storage.Report {
	report := &storage.Report{
		Kind:           kind,
		SeedID:         seed.ID,
		SeedTitle:      seed.Title,
		MinSubscribers: cfg.MinSubscribers,
		MinScore:       cfg.MinScore,
		Results:        make([]storage.ReportEntry, 0, len(ranked)),
	}
	for i, r := range ranked {
		entry := storage.ReportEntry{
			Rank:           i + 1,
			ChannelID:      r.Channel.ID,
			Title:          r.Channel.Title,
			Description:    r.Channel.Description,
			URL:            r.Channel.URL(),
			VideoCount:     r.Channel.VideoCount,
			Topics:         recommend.TopicNames(r.Channel.Topics),
			Score:          r.Score,
			DiscoveryCount: r.DiscoveryCount,
		}
		if r.Channel.KnownSubscribers() {
			entry.Subscribers = r.Channel.Subscribers
		}
		report.Results = append(report.Results, entry)
	}
	return report
}
