package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxDescriptionRunes bounds channel descriptions in saved artifacts.
const maxDescriptionRunes = 200

// Subscription is one subscribed channel in a saved subscription list.
type Subscription struct {
	// ChannelID is the YouTube channel ID (e.g., "UCxxxxxxxxxxxxxxx").
	ChannelID string `json:"channel_id"`
	// Title is the channel's display name.
	Title string `json:"title"`
	// Description is the channel description, truncated on save.
	Description string `json:"description,omitempty"`
	// URL is the full URL to the channel.
	URL string `json:"url"`
	// SubscribedAt is when the user subscribed, if known.
	SubscribedAt time.Time `json:"subscribed_at,omitempty"`
}

// SubscriptionList is the persisted form of a user's subscriptions.
type SubscriptionList struct {
	// Version is the artifact schema version.
	Version string `json:"version"`
	// GeneratedAt is when the list was fetched.
	GeneratedAt time.Time `json:"generated_at"`
	// Count is the number of subscriptions.
	Count int `json:"count"`
	// Subscriptions holds the channels in the order the API returned them.
	Subscriptions []Subscription `json:"subscriptions"`
}

// ChannelIDs returns the channel IDs in list order.
func (l *SubscriptionList) ChannelIDs() []string {
	if l == nil {
		return nil
	}
	ids := make([]string, 0, len(l.Subscriptions))
	for _, sub := range l.Subscriptions {
		ids = append(ids, sub.ChannelID)
	}
	return ids
}

// ReportKind distinguishes the two ranking flows.
type ReportKind string

const (
	// ReportDiscovery is a report of channels found outside the user's subscriptions.
	ReportDiscovery ReportKind = "discovery"
	// ReportRecommendation is a report ranking the user's own subscriptions.
	ReportRecommendation ReportKind = "recommendation"
)

// Valid reports whether k is a known report kind.
func (k ReportKind) Valid() bool {
	return k == ReportDiscovery || k == ReportRecommendation
}

// Report is a persisted ranking run.
type Report struct {
	// ID uniquely identifies the run.
	ID uuid.UUID `json:"id"`
	// Kind is the flow that produced the report.
	Kind ReportKind `json:"kind"`
	// SeedID is the seed channel's YouTube ID.
	SeedID string `json:"seed_channel_id"`
	// SeedTitle is the seed channel's display name.
	SeedTitle string `json:"seed_channel_title"`
	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at"`
	// MinSubscribers is the subscriber floor applied, zero if none.
	MinSubscribers int64 `json:"min_subscribers,omitempty"`
	// MinScore is the score floor applied.
	MinScore float64 `json:"min_score"`
	// Results holds the ranked entries, best first.
	Results []ReportEntry `json:"results"`
}

// ReportEntry is one ranked channel in a report.
type ReportEntry struct {
	// Rank is the 1-based position in the report.
	Rank int `json:"rank"`
	// ChannelID is the channel's YouTube ID.
	ChannelID string `json:"channel_id"`
	// Title is the channel's display name.
	Title string `json:"title"`
	// Description is the channel description, truncated on save.
	Description string `json:"description,omitempty"`
	// URL is the full URL to the channel.
	URL string `json:"url"`
	// Subscribers is the channel's subscriber count, zero if hidden.
	Subscribers int64 `json:"subscriber_count,omitempty"`
	// VideoCount is the channel's public video count.
	VideoCount int64 `json:"video_count,omitempty"`
	// Topics holds the channel's topic category names.
	Topics []string `json:"topics,omitempty"`
	// Score is the similarity score in [0, 1].
	Score float64 `json:"score"`
	// DiscoveryCount is how many traversal paths reached the channel.
	// Zero for recommendation reports.
	DiscoveryCount int `json:"discovery_count,omitempty"`
}

// Filename returns the report's file name, derived from its kind and
// seed title: "discovered_<slug>.json" or "recommendations_<slug>.json".
func (r *Report) Filename() string {
	slug := slugify(r.SeedTitle)
	if slug == "" {
		slug = slugify(r.SeedID)
	}
	if slug == "" {
		slug = "report"
	}
	if r.Kind == ReportDiscovery {
		return "discovered_" + slug + ".json"
	}
	return "recommendations_" + slug + ".json"
}

// slugify lowercases s and replaces runs of non-alphanumeric characters
// with single underscores, suitable for use in a file name.
func slugify(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// truncateDescription bounds a description to maxDescriptionRunes runes.
func truncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDescriptionRunes {
		return s
	}
	return string(runes[:maxDescriptionRunes])
}
