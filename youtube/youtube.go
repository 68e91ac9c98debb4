// Package youtube fetches channel and video metadata from the YouTube
// Data API v3 and the public uploads feeds. It accounts for API quota,
// paces requests, and degrades to quota-free sources where one exists.
package youtube

import (
	"errors"
	"regexp"
	"time"
)

// Sentinel errors for metadata operations.
var (
	ErrChannelNotFound = errors.New("youtube: channel not found")
	ErrVideoNotFound   = errors.New("youtube: video not found")
	ErrRateLimited     = errors.New("youtube: rate limited")
	ErrQuotaExhausted  = errors.New("youtube: daily quota exhausted")
	ErrNetworkTimeout  = errors.New("youtube: network timeout")
	ErrNoCredentials   = errors.New("youtube: no API key or OAuth client configured")
	ErrOAuthRequired   = errors.New("youtube: operation requires OAuth credentials")
)

// channelIDRegex matches YouTube channel IDs (UC followed by 22 base64 chars).
var channelIDRegex = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)

// IsChannelID reports whether s is a well-formed channel ID.
func IsChannelID(s string) bool {
	return channelIDRegex.MatchString(s)
}

// Channel is a snapshot of a channel's public metadata, immutable once
// fetched within a run.
type Channel struct {
	// ID is the YouTube channel ID (e.g., "UCuAXFkgsw1L7xaCfnd5JJOw").
	ID string `json:"channel_id"`

	// Title is the channel display name.
	Title string `json:"channel_title"`

	// Description is the channel's About text.
	Description string `json:"description,omitempty"`

	// Subscribers is the public subscriber count. Zero when hidden.
	Subscribers int64 `json:"subscriber_count"`

	// SubscribersHidden is true when the channel hides its subscriber
	// count; Subscribers carries no information in that case.
	SubscribersHidden bool `json:"subscriber_count_hidden,omitempty"`

	// VideoCount is the number of public uploads.
	VideoCount int64 `json:"video_count"`

	// ViewCount is the lifetime view total. May be zero if not exposed.
	ViewCount int64 `json:"view_count,omitempty"`

	// Topics holds the channel's topic category URLs as returned by the
	// API (Wikipedia links).
	Topics []string `json:"topic_categories,omitempty"`

	// Country is the self-declared channel country, if any.
	Country string `json:"country,omitempty"`

	// PublishedAt is the channel creation time.
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// URL returns the canonical channel URL.
func (c *Channel) URL() string {
	return "https://www.youtube.com/channel/" + c.ID
}

// KnownSubscribers reports whether the subscriber count is usable for
// comparisons. Hidden or unreported counts are treated as unknown.
func (c *Channel) KnownSubscribers() bool {
	return !c.SubscribersHidden && c.Subscribers > 0
}

// Video is a lightweight video record used as scoring input. It is
// never persisted on its own.
type Video struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`

	// ChannelID is the owning channel's ID.
	ChannelID string `json:"channel_id"`

	// ChannelTitle is the owning channel's display name.
	ChannelTitle string `json:"channel_title,omitempty"`

	// Title is the video title.
	Title string `json:"title"`

	// Description is the video description, possibly truncated by the
	// source (search snippets and feeds both truncate).
	Description string `json:"description,omitempty"`

	// Published is the video publication time.
	Published time.Time `json:"published,omitempty"`

	// Views is the view count when the source provides one.
	Views int64 `json:"view_count,omitempty"`
}

// URL returns the full watch URL for this video.
func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Subscription is one entry of the authenticated user's subscription
// feed.
type Subscription struct {
	// ChannelID is the subscribed channel's ID.
	ChannelID string `json:"channel_id"`

	// Title is the subscribed channel's display name.
	Title string `json:"title"`

	// Description is the channel description as carried by the
	// subscription snippet.
	Description string `json:"description,omitempty"`

	// SubscribedAt is when the user subscribed.
	SubscribedAt time.Time `json:"subscribed_at,omitempty"`

	// Thumbnail is the default channel thumbnail URL.
	Thumbnail string `json:"thumbnail,omitempty"`
}

// ChannelURL returns the canonical URL of the subscribed channel.
func (s Subscription) ChannelURL() string {
	return "https://www.youtube.com/channel/" + s.ChannelID
}

// ProviderError wraps metadata fetch failures with context about what
// was being fetched. Use errors.As() to extract it:
//
//	var perr *youtube.ProviderError
//	if errors.As(err, &perr) {
//		fmt.Printf("fetching %s %q failed: %v\n", perr.Op, perr.ID, perr.Err)
//	}
type ProviderError struct {
	// Op names the operation ("channel", "popular", "related",
	// "search", "subscriptions", "recent").
	Op string
	// ID is the channel ID, video ID, or query the operation ran on.
	ID string
	// Err is the underlying error.
	Err error
}

// Error returns a string representation of the provider error.
func (e *ProviderError) Error() string {
	return "youtube: " + e.Op + " " + e.ID + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is() and errors.As().
func (e *ProviderError) Unwrap() error { return e.Err }
