package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ytscout/internal/retry"
)

const (
	feedURLTemplate = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"
	feedTimeout     = 30 * time.Second
)

// feedFetcher reads a channel's public uploads feed. The feed carries
// the 15 newest videos with titles and descriptions and costs no API
// quota, which makes it the preferred source for the recent-video
// sample used in content scoring.
type feedFetcher struct {
	client   *http.Client
	retryCfg retry.Config
}

func newFeedFetcher(retryCfg retry.Config) *feedFetcher {
	return &feedFetcher{
		client:   &http.Client{Timeout: feedTimeout},
		retryCfg: retryCfg,
	}
}

// recentVideos fetches up to limit newest uploads for channelID.
func (f *feedFetcher) recentVideos(ctx context.Context, channelID string, limit int) ([]Video, error) {
	if !IsChannelID(channelID) {
		return nil, &ProviderError{Op: "recent", ID: channelID, Err: ErrChannelNotFound}
	}

	var videos []Video
	err := retry.Do(ctx, f.retryCfg, feedErrorClassifier, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(feedURLTemplate, channelID), nil)
		if err != nil {
			return &ProviderError{Op: "recent", ID: channelID, Err: err}
		}

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return &ProviderError{Op: "recent", ID: channelID, Err: ErrNetworkTimeout}
			}
			return &ProviderError{Op: "recent", ID: channelID, Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return &ProviderError{Op: "recent", ID: channelID, Err: ErrChannelNotFound}
		case resp.StatusCode == http.StatusTooManyRequests:
			return &ProviderError{Op: "recent", ID: channelID, Err: ErrRateLimited}
		case resp.StatusCode != http.StatusOK:
			return &ProviderError{Op: "recent", ID: channelID,
				Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &ProviderError{Op: "recent", ID: channelID, Err: err}
		}

		feed, err := parseUploadsFeed(body)
		if err != nil {
			return &ProviderError{Op: "recent", ID: channelID, Err: err}
		}

		videos = feedVideos(feed, channelID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

// uploadsFeed mirrors the subset of YouTube's Atom feed the scorer
// consumes.
type uploadsFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Author  feedAuthor  `xml:"author"`
	Entries []feedEntry `xml:"entry"`
}

type feedAuthor struct {
	Name string `xml:"name"`
	URI  string `xml:"uri"`
}

type feedEntry struct {
	VideoID     string    `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	ChannelID   string    `xml:"http://www.youtube.com/xml/schemas/2015 channelId"`
	Title       string    `xml:"title"`
	Published   time.Time `xml:"published"`
	Description string    `xml:"group>description"`
	Community   feedStats `xml:"group>community"`
}

type feedStats struct {
	Views feedViews `xml:"http://search.yahoo.com/mrss/ statistics"`
}

type feedViews struct {
	Views int64 `xml:"views,attr"`
}

func parseUploadsFeed(data []byte) (*uploadsFeed, error) {
	var feed uploadsFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("parse uploads feed: %w", err)
	}
	return &feed, nil
}

func feedVideos(feed *uploadsFeed, channelID string) []Video {
	videos := make([]Video, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		videos = append(videos, Video{
			ID:           entry.VideoID,
			ChannelID:    channelID,
			ChannelTitle: feed.Author.Name,
			Title:        entry.Title,
			Description:  entry.Description,
			Published:    entry.Published,
			Views:        entry.Community.Views.Views,
		})
	}
	return videos
}

// feedErrorClassifier marks feed errors as retryable unless the
// channel itself is the problem.
func feedErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrChannelNotFound) {
		return false
	}
	return true
}
