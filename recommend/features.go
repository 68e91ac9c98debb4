package recommend

import (
	"math"
	"net/url"
	"strings"

	"ytscout/youtube"
)

// featureSet is the comparable form of a channel: what it talks about
// (tokens, topics), how big it is (log-magnitude of subscribers), and
// what its recent uploads talk about.
type featureSet struct {
	tokens      map[string]struct{}
	topics      map[string]struct{}
	magnitude   float64
	sizeKnown   bool
	videoTokens map[string]struct{}
}

// channelFeatures extracts a featureSet from a channel record and an
// optional sample of its recent videos. A nil or empty sample leaves
// videoTokens empty, which drops the video signal from scoring.
func channelFeatures(ch *youtube.Channel, videos []youtube.Video) featureSet {
	fs := featureSet{
		tokens: tokenize(ch.Title + " " + ch.Description),
		topics: topicSet(ch.Topics),
	}
	if ch.KnownSubscribers() {
		fs.magnitude = math.Log10(float64(ch.Subscribers))
		fs.sizeKnown = true
	}
	if len(videos) > 0 {
		var b strings.Builder
		for _, v := range videos {
			b.WriteString(v.Title)
			b.WriteString(" ")
			b.WriteString(v.Description)
			b.WriteString(" ")
		}
		fs.videoTokens = tokenize(b.String())
	}
	return fs
}

// topicName reduces a topic category URL to a comparable display name:
// the last path segment, unescaped, underscores to spaces, lowercased.
// "https://en.wikipedia.org/wiki/Music_of_Asia" becomes "music of asia".
func topicName(topicURL string) string {
	segment := topicURL[strings.LastIndex(topicURL, "/")+1:]
	if unescaped, err := url.PathUnescape(segment); err == nil {
		segment = unescaped
	}
	segment = strings.ReplaceAll(segment, "_", " ")
	return strings.ToLower(strings.TrimSpace(segment))
}

// TopicNames maps a channel's topic category URLs to display names, the
// same normalization searches and reports use.
func TopicNames(topicURLs []string) []string {
	return topicNames(topicURLs)
}

// topicNames maps topic URLs to display names, deduplicated, in input
// order.
func topicNames(topicURLs []string) []string {
	seen := make(map[string]struct{}, len(topicURLs))
	names := make([]string, 0, len(topicURLs))
	for _, u := range topicURLs {
		name := topicName(u)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func topicSet(topicURLs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(topicURLs))
	for _, name := range topicNames(topicURLs) {
		set[name] = struct{}{}
	}
	return set
}
