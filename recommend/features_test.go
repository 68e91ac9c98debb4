package recommend

import (
	"math"
	"testing"

	"ytscout/youtube"
)

func TestTopicName(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain", "https://en.wikipedia.org/wiki/Physics", "physics"},
		{"underscores", "https://en.wikipedia.org/wiki/Music_of_Asia", "music of asia"},
		{"escaped", "https://en.wikipedia.org/wiki/Role-playing_video_game", "role-playing video game"},
		{"percent encoded", "https://en.wikipedia.org/wiki/Caf%C3%A9", "café"},
		{"no path", "physics", "physics"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := topicName(tt.url); got != tt.want {
				t.Errorf("topicName(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestTopicNamesDeduplicates(t *testing.T) {
	urls := []string{
		"https://en.wikipedia.org/wiki/Science",
		"https://en.wikipedia.org/wiki/Education",
		"https://en.wikipedia.org/wiki/Science", // repeat
		"",
	}

	got := topicNames(urls)
	want := []string{"science", "education"}
	if len(got) != len(want) {
		t.Fatalf("topicNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topicNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChannelFeatures(t *testing.T) {
	ch := &youtube.Channel{
		ID:          "UCseed",
		Title:       "Physics Lab",
		Description: "Experiments with lasers and magnets.",
		Subscribers: 1000000,
		Topics:      []string{"https://en.wikipedia.org/wiki/Science"},
	}
	videos := []youtube.Video{
		{Title: "Laser basics", Description: "How lasers work"},
		{Title: "Magnet tricks", Description: ""},
	}

	fs := channelFeatures(ch, videos)

	for _, token := range []string{"physics", "lab", "experiments", "lasers", "magnets"} {
		if _, ok := fs.tokens[token]; !ok {
			t.Errorf("tokens missing %q: %v", token, keys(fs.tokens))
		}
	}
	if _, ok := fs.topics["science"]; !ok {
		t.Errorf("topics = %v, want science", keys(fs.topics))
	}
	if !fs.sizeKnown {
		t.Error("sizeKnown = false for a public subscriber count")
	}
	if math.Abs(fs.magnitude-6.0) > 1e-9 {
		t.Errorf("magnitude = %g, want 6.0", fs.magnitude)
	}
	for _, token := range []string{"laser", "basics", "magnet", "tricks", "lasers", "work"} {
		if _, ok := fs.videoTokens[token]; !ok {
			t.Errorf("videoTokens missing %q: %v", token, keys(fs.videoTokens))
		}
	}
}

func TestChannelFeaturesHiddenSubscribers(t *testing.T) {
	ch := &youtube.Channel{ID: "UCx", Title: "Quiet", SubscribersHidden: true, Subscribers: 123}

	fs := channelFeatures(ch, nil)
	if fs.sizeKnown {
		t.Error("sizeKnown = true for a hidden subscriber count")
	}
	if len(fs.videoTokens) != 0 {
		t.Errorf("videoTokens = %v without a video sample, want empty", keys(fs.videoTokens))
	}
}
