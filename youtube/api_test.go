package youtube

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/youtube/v3"
)

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "quota exceeded reason",
			err:  &googleapi.Error{Code: 403, Message: "quota", Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}}},
			want: ErrQuotaExhausted,
		},
		{
			name: "daily limit reason",
			err:  &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "dailyLimitExceeded"}}},
			want: ErrQuotaExhausted,
		},
		{
			name: "rate limit reason",
			err:  &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}}},
			want: ErrRateLimited,
		},
		{
			name: "user rate limit reason",
			err:  &googleapi.Error{Code: 403, Errors: []googleapi.ErrorItem{{Reason: "userRateLimitExceeded"}}},
			want: ErrRateLimited,
		},
		{
			name: "429 without reason",
			err:  &googleapi.Error{Code: http.StatusTooManyRequests},
			want: ErrRateLimited,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyAPIError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classifyAPIError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyAPIErrorPassesThroughUnknown(t *testing.T) {
	server := &googleapi.Error{Code: 500, Message: "backend"}
	if got := classifyAPIError(server); got != server {
		t.Errorf("classifyAPIError(500) = %v, want the original error", got)
	}

	plain := errors.New("dial tcp: connection refused")
	if got := classifyAPIError(plain); got != plain {
		t.Errorf("classifyAPIError(plain) = %v, want the original error", got)
	}
}

func TestAPIErrorClassifier(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"channel not found", ErrChannelNotFound, false},
		{"video not found", ErrVideoNotFound, false},
		{"quota exhausted", ErrQuotaExhausted, false},
		{"backend down", ErrBackendDown, false},
		{"oauth required", ErrOAuthRequired, false},
		{"rate limited", ErrRateLimited, true},
		{"network timeout", ErrNetworkTimeout, true},
		{"wrapped rate limit", &ProviderError{Op: "search", ID: "q", Err: ErrRateLimited}, true},
		{"server error", &googleapi.Error{Code: 503}, true},
		{"client error", &googleapi.Error{Code: 400}, false},
		{"unknown", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apiErrorClassifier(tt.err); got != tt.want {
				t.Errorf("apiErrorClassifier(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTransientAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"channel not found", ErrChannelNotFound, false},
		{"video not found", ErrVideoNotFound, false},
		{"oauth required", ErrOAuthRequired, false},
		{"rate limited", ErrRateLimited, true},
		{"quota exhausted", ErrQuotaExhausted, true},
		{"unknown", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transientAPIError(tt.err); got != tt.want {
				t.Errorf("transientAPIError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestChannelFromAPI(t *testing.T) {
	item := &youtube.Channel{
		Id: "UCuAXFkgsw1L7xaCfnd5JJOw",
		Snippet: &youtube.ChannelSnippet{
			Title:       "Test Channel",
			Description: "Science videos.",
			Country:     "US",
			PublishedAt: "2010-07-21T07:18:02Z",
		},
		Statistics: &youtube.ChannelStatistics{
			SubscriberCount:       15000000,
			HiddenSubscriberCount: false,
			VideoCount:            380,
			ViewCount:             2500000000,
		},
		TopicDetails: &youtube.ChannelTopicDetails{
			TopicCategories: []string{"https://en.wikipedia.org/wiki/Physics"},
		},
	}

	ch := channelFromAPI(item)

	if ch.ID != "UCuAXFkgsw1L7xaCfnd5JJOw" {
		t.Errorf("ID = %q", ch.ID)
	}
	if ch.Title != "Test Channel" {
		t.Errorf("Title = %q", ch.Title)
	}
	if ch.Description != "Science videos." {
		t.Errorf("Description = %q", ch.Description)
	}
	if ch.Country != "US" {
		t.Errorf("Country = %q", ch.Country)
	}
	if ch.Subscribers != 15000000 {
		t.Errorf("Subscribers = %d", ch.Subscribers)
	}
	if ch.SubscribersHidden {
		t.Error("SubscribersHidden = true, want false")
	}
	if ch.VideoCount != 380 {
		t.Errorf("VideoCount = %d", ch.VideoCount)
	}
	if ch.ViewCount != 2500000000 {
		t.Errorf("ViewCount = %d", ch.ViewCount)
	}
	if len(ch.Topics) != 1 || ch.Topics[0] != "https://en.wikipedia.org/wiki/Physics" {
		t.Errorf("Topics = %v", ch.Topics)
	}
	want := time.Date(2010, 7, 21, 7, 18, 2, 0, time.UTC)
	if !ch.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", ch.PublishedAt, want)
	}
}

func TestChannelFromAPIMinimal(t *testing.T) {
	ch := channelFromAPI(&youtube.Channel{Id: "UCabc"})
	if ch.ID != "UCabc" {
		t.Errorf("ID = %q", ch.ID)
	}
	if ch.Title != "" || ch.Subscribers != 0 || len(ch.Topics) != 0 {
		t.Errorf("empty item produced non-zero fields: %+v", ch)
	}
}

func TestSearchVideosSkipsNonVideoResults(t *testing.T) {
	items := []*youtube.SearchResult{
		{
			Id: &youtube.ResourceId{VideoId: "vid1"},
			Snippet: &youtube.SearchResultSnippet{
				ChannelId:    "UCone",
				ChannelTitle: "One",
				Title:        "First",
				Description:  "d1",
				PublishedAt:  "2024-03-01T00:00:00Z",
			},
		},
		{Id: &youtube.ResourceId{ChannelId: "UCtwo"}}, // channel hit, no video ID
		{Id: nil},
		{
			Id:      &youtube.ResourceId{VideoId: "vid2"},
			Snippet: &youtube.SearchResultSnippet{Title: "Second"},
		},
	}

	videos := searchVideos(items)
	if len(videos) != 2 {
		t.Fatalf("searchVideos() returned %d videos, want 2", len(videos))
	}
	if videos[0].ID != "vid1" || videos[1].ID != "vid2" {
		t.Errorf("IDs = %s, %s, want vid1, vid2", videos[0].ID, videos[1].ID)
	}
	if videos[0].ChannelID != "UCone" || videos[0].Title != "First" {
		t.Errorf("first video mapping = %+v", videos[0])
	}
	if videos[0].Published.IsZero() {
		t.Error("first video Published is zero")
	}
}

func TestQuotaAccounting(t *testing.T) {
	c := &Client{budget: 150}

	if err := c.reserveQuota(quotaCostSearch); err != nil {
		t.Fatalf("reserveQuota(100) = %v, want nil", err)
	}
	c.chargeQuota(quotaCostSearch)

	if got := c.QuotaUsed(); got != 100 {
		t.Errorf("QuotaUsed() = %d, want 100", got)
	}
	if got := c.QuotaRemaining(); got != 50 {
		t.Errorf("QuotaRemaining() = %d, want 50", got)
	}

	if err := c.reserveQuota(quotaCostSearch); !errors.Is(err, ErrQuotaExhausted) {
		t.Errorf("reserveQuota over budget = %v, want %v", err, ErrQuotaExhausted)
	}
	// Spending exactly to the cap is allowed.
	if err := c.reserveQuota(50); err != nil {
		t.Errorf("reserveQuota(50) at boundary = %v, want nil", err)
	}
}

func TestQuotaReserveWithheld(t *testing.T) {
	c := &Client{budget: 200, reserve: 150}

	if err := c.reserveQuota(quotaCostSearch); !errors.Is(err, ErrQuotaExhausted) {
		t.Errorf("reserveQuota with reserve = %v, want %v", err, ErrQuotaExhausted)
	}
	if got := c.QuotaRemaining(); got != 50 {
		t.Errorf("QuotaRemaining() = %d, want 50", got)
	}
}

func TestQuotaExhaustedLatches(t *testing.T) {
	c := &Client{budget: 10000}
	c.markExhausted()

	if err := c.reserveQuota(1); !errors.Is(err, ErrQuotaExhausted) {
		t.Errorf("reserveQuota after latch = %v, want %v", err, ErrQuotaExhausted)
	}
}

func TestSubscriptionsRequireOAuth(t *testing.T) {
	c := &Client{}

	_, err := c.Subscriptions(context.Background())
	if !errors.Is(err, ErrOAuthRequired) {
		t.Fatalf("Subscriptions() without OAuth = %v, want %v", err, ErrOAuthRequired)
	}

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatal("Subscriptions() error is not a *ProviderError")
	}
	if perr.Op != "subscriptions" {
		t.Errorf("Op = %q, want subscriptions", perr.Op)
	}
}

func TestRecentVideosPrefersFeed(t *testing.T) {
	fetcher, transport := newTestFeedFetcher(http.StatusOK, sampleUploadsFeed)
	c := &Client{
		feed:    fetcher,
		breaker: newBreaker(defaultBreakerThreshold, defaultBreakerCooldown, transientAPIError),
	}

	videos, err := c.RecentVideos(context.Background(), "UCuAXFkgsw1L7xaCfnd5JJOw", 10)
	if err != nil {
		t.Fatalf("RecentVideos() error = %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("RecentVideos() returned %d videos, want 2", len(videos))
	}
	if c.QuotaUsed() != 0 {
		t.Errorf("QuotaUsed() = %d after feed fetch, want 0", c.QuotaUsed())
	}
	if transport.calls != 1 {
		t.Errorf("feed transport saw %d calls, want 1", transport.calls)
	}
}

func TestRecentVideosUnknownChannelSkipsFallback(t *testing.T) {
	fetcher, _ := newTestFeedFetcher(http.StatusNotFound, "")

	// A nil service would panic if the search fallback ran; a missing
	// channel must not burn 100 units confirming it is missing.
	c := &Client{
		feed:    fetcher,
		breaker: newBreaker(defaultBreakerThreshold, defaultBreakerCooldown, transientAPIError),
	}

	_, err := c.RecentVideos(context.Background(), "UCuAXFkgsw1L7xaCfnd5JJOw", 10)
	if !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("RecentVideos() = %v, want %v", err, ErrChannelNotFound)
	}
}
