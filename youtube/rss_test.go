package youtube

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"ytscout/internal/retry"
)

const sampleUploadsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
 <title>Test Channel</title>
 <author>
  <name>Test Channel</name>
  <uri>https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw</uri>
 </author>
 <entry>
  <id>yt:video:dQw4w9WgXcQ</id>
  <yt:videoId>dQw4w9WgXcQ</yt:videoId>
  <yt:channelId>UCuAXFkgsw1L7xaCfnd5JJOw</yt:channelId>
  <title>Lasers Explained</title>
  <published>2024-01-02T10:00:00+00:00</published>
  <media:group>
   <media:description>All about lasers and optics.</media:description>
   <media:community>
    <media:statistics views="12345"/>
   </media:community>
  </media:group>
 </entry>
 <entry>
  <id>yt:video:abc123xyz00</id>
  <yt:videoId>abc123xyz00</yt:videoId>
  <yt:channelId>UCuAXFkgsw1L7xaCfnd5JJOw</yt:channelId>
  <title>Magnets Explained</title>
  <published>2024-01-01T09:00:00+00:00</published>
  <media:group>
   <media:description>How magnets work.</media:description>
   <media:community>
    <media:statistics views="678"/>
   </media:community>
  </media:group>
 </entry>
</feed>`

const sampleEmptyUploadsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
 <title>Empty Channel</title>
 <author>
  <name>Empty Channel</name>
 </author>
</feed>`

type mockTransport struct {
	statusCode int
	body       string
	calls      int
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.calls++
	return &http.Response{
		StatusCode: m.statusCode,
		Status:     http.StatusText(m.statusCode),
		Body:       io.NopCloser(strings.NewReader(m.body)),
		Header:     make(http.Header),
	}, nil
}

func newTestFeedFetcher(statusCode int, body string) (*feedFetcher, *mockTransport) {
	transport := &mockTransport{statusCode: statusCode, body: body}
	return &feedFetcher{
		client: &http.Client{Transport: transport},
		retryCfg: retry.Config{
			MaxRetries:     0,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     time.Millisecond,
			Multiplier:     1.0,
		},
	}, transport
}

func TestFeedRecentVideos(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		channelID  string
		limit      int
		wantErr    error
		wantCount  int
		wantFirst  string
	}{
		{
			name:       "valid feed",
			statusCode: http.StatusOK,
			body:       sampleUploadsFeed,
			channelID:  "UCuAXFkgsw1L7xaCfnd5JJOw",
			limit:      10,
			wantCount:  2,
			wantFirst:  "dQw4w9WgXcQ",
		},
		{
			name:       "limit trims",
			statusCode: http.StatusOK,
			body:       sampleUploadsFeed,
			channelID:  "UCuAXFkgsw1L7xaCfnd5JJOw",
			limit:      1,
			wantCount:  1,
			wantFirst:  "dQw4w9WgXcQ",
		},
		{
			name:       "empty feed",
			statusCode: http.StatusOK,
			body:       sampleEmptyUploadsFeed,
			channelID:  "UCuAXFkgsw1L7xaCfnd5JJOw",
			limit:      10,
			wantCount:  0,
		},
		{
			name:       "channel not found",
			statusCode: http.StatusNotFound,
			channelID:  "UCuAXFkgsw1L7xaCfnd5JJOw",
			limit:      10,
			wantErr:    ErrChannelNotFound,
		},
		{
			name:       "malformed channel id",
			statusCode: http.StatusOK,
			body:       sampleUploadsFeed,
			channelID:  "not-a-channel-id",
			limit:      10,
			wantErr:    ErrChannelNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher, _ := newTestFeedFetcher(tt.statusCode, tt.body)

			videos, err := fetcher.recentVideos(context.Background(), tt.channelID, tt.limit)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("recentVideos() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("recentVideos() error = %v, want nil", err)
			}
			if len(videos) != tt.wantCount {
				t.Fatalf("recentVideos() returned %d videos, want %d", len(videos), tt.wantCount)
			}
			if tt.wantCount > 0 && videos[0].ID != tt.wantFirst {
				t.Errorf("recentVideos() first ID = %s, want %s", videos[0].ID, tt.wantFirst)
			}
		})
	}
}

func TestFeedRecentVideosFieldMapping(t *testing.T) {
	fetcher, _ := newTestFeedFetcher(http.StatusOK, sampleUploadsFeed)

	videos, err := fetcher.recentVideos(context.Background(), "UCuAXFkgsw1L7xaCfnd5JJOw", 10)
	if err != nil {
		t.Fatalf("recentVideos() error = %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("recentVideos() returned %d videos, want 2", len(videos))
	}

	v := videos[0]
	if v.Title != "Lasers Explained" {
		t.Errorf("Title = %q, want %q", v.Title, "Lasers Explained")
	}
	if v.Description != "All about lasers and optics." {
		t.Errorf("Description = %q, want %q", v.Description, "All about lasers and optics.")
	}
	if v.ChannelID != "UCuAXFkgsw1L7xaCfnd5JJOw" {
		t.Errorf("ChannelID = %q, want feed channel", v.ChannelID)
	}
	if v.ChannelTitle != "Test Channel" {
		t.Errorf("ChannelTitle = %q, want %q", v.ChannelTitle, "Test Channel")
	}
	if v.Views != 12345 {
		t.Errorf("Views = %d, want 12345", v.Views)
	}
	want := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	if !v.Published.Equal(want) {
		t.Errorf("Published = %v, want %v", v.Published, want)
	}
}

func TestFeedRetriesRateLimit(t *testing.T) {
	fetcher, transport := newTestFeedFetcher(http.StatusTooManyRequests, "")
	fetcher.retryCfg.MaxRetries = 2

	_, err := fetcher.recentVideos(context.Background(), "UCuAXFkgsw1L7xaCfnd5JJOw", 5)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("recentVideos() error = %v, want %v", err, ErrRateLimited)
	}
	if transport.calls != 3 {
		t.Errorf("transport saw %d calls, want 3 (initial + 2 retries)", transport.calls)
	}
}

func TestFeedNotFoundIsNotRetried(t *testing.T) {
	fetcher, transport := newTestFeedFetcher(http.StatusNotFound, "")
	fetcher.retryCfg.MaxRetries = 3

	_, err := fetcher.recentVideos(context.Background(), "UCuAXFkgsw1L7xaCfnd5JJOw", 5)
	if !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("recentVideos() error = %v, want %v", err, ErrChannelNotFound)
	}
	if transport.calls != 1 {
		t.Errorf("transport saw %d calls, want 1", transport.calls)
	}
}

func TestParseUploadsFeedRejectsGarbage(t *testing.T) {
	if _, err := parseUploadsFeed([]byte("{not xml}")); err == nil {
		t.Error("parseUploadsFeed() accepted garbage input")
	}
}

func TestFeedErrorClassifier(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", &ProviderError{Op: "recent", ID: "x", Err: ErrChannelNotFound}, false},
		{"rate limited", &ProviderError{Op: "recent", ID: "x", Err: ErrRateLimited}, true},
		{"generic", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := feedErrorClassifier(tt.err); got != tt.want {
				t.Errorf("feedErrorClassifier(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
