package youtube

import (
	"errors"
	"testing"
)

func TestIsChannelID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "UCuAXFkgsw1L7xaCfnd5JJOw", true},
		{"valid with underscore and dash", "UC_x5XG1OV2P6uZZ5FSM9Tt-", true},
		{"empty", "", false},
		{"too short", "UCabc", false},
		{"too long", "UCuAXFkgsw1L7xaCfnd5JJOwX", false},
		{"missing prefix", "XXuAXFkgsw1L7xaCfnd5JJOw", false},
		{"handle", "@veritasium", false},
		{"url", "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw", false},
		{"illegal char", "UCuAXFkgsw1L7xaCfnd5JJ!w", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsChannelID(tt.id); got != tt.want {
				t.Errorf("IsChannelID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestChannelURL(t *testing.T) {
	c := &Channel{ID: "UCuAXFkgsw1L7xaCfnd5JJOw"}
	want := "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw"
	if got := c.URL(); got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestVideoURL(t *testing.T) {
	v := Video{ID: "dQw4w9WgXcQ"}
	want := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	if got := v.URL(); got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestSubscriptionChannelURL(t *testing.T) {
	s := Subscription{ChannelID: "UCuAXFkgsw1L7xaCfnd5JJOw"}
	want := "https://www.youtube.com/channel/UCuAXFkgsw1L7xaCfnd5JJOw"
	if got := s.ChannelURL(); got != want {
		t.Errorf("ChannelURL() = %q, want %q", got, want)
	}
}

func TestKnownSubscribers(t *testing.T) {
	tests := []struct {
		name    string
		channel Channel
		want    bool
	}{
		{"public count", Channel{Subscribers: 1000}, true},
		{"hidden count", Channel{Subscribers: 1000, SubscribersHidden: true}, false},
		{"zero count", Channel{Subscribers: 0}, false},
		{"hidden zero", Channel{SubscribersHidden: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.channel.KnownSubscribers(); got != tt.want {
				t.Errorf("KnownSubscribers() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProviderError(t *testing.T) {
	perr := &ProviderError{Op: "channel", ID: "UCabc", Err: ErrChannelNotFound}

	want := "youtube: channel UCabc: youtube: channel not found"
	if got := perr.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(perr, ErrChannelNotFound) {
		t.Error("errors.Is() does not see the wrapped sentinel")
	}

	var target *ProviderError
	wrapped := errors.Join(errors.New("outer"), perr)
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As() failed to extract ProviderError")
	}
	if target.Op != "channel" || target.ID != "UCabc" {
		t.Errorf("extracted ProviderError = %+v, want Op=channel ID=UCabc", target)
	}
}
