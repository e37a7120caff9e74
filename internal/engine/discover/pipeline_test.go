package discover

import (
	"testing"

	"github.com/anatolykoptev/go_scout/internal/engine"
)

func TestDetailCalls(t *testing.T) {
	tests := []struct {
		ids  int
		want int
	}{
		{0, 0},
		{1, 1},
		{50, 1},
		{51, 2},
		{100, 2},
		{101, 3},
	}
	for _, tt := range tests {
		if got := detailCalls(tt.ids); got != tt.want {
			t.Errorf("detailCalls(%d) = %d, want %d", tt.ids, got, tt.want)
		}
	}
}

func TestCollectIDs(t *testing.T) {
	records := []engine.SearchRecord{
		{VideoIDs: []string{"v1", "v2", "v1"}, ChannelIDs: []string{"UC1", "UC2"}},
		{VideoIDs: []string{"v2", "v3", "v4"}, ChannelIDs: []string{"UC2", "UC3"}},
	}

	t.Run("dedups across records", func(t *testing.T) {
		videos, channels := collectIDs(records, engine.Budget("full"))
		if len(videos) != 4 {
			t.Errorf("expected 4 unique videos, got %v", videos)
		}
		if len(channels) != 3 {
			t.Errorf("expected 3 unique channels, got %v", channels)
		}
	})

	t.Run("caps at the budget", func(t *testing.T) {
		var rec engine.SearchRecord
		for i := 0; i < 100; i++ {
			rec.VideoIDs = append(rec.VideoIDs, string(rune('a'+i%26))+string(rune('0'+i/26)))
		}
		preset := engine.Budget("ultra-saving") // 10 videos, 10 channels
		videos, _ := collectIDs([]engine.SearchRecord{rec}, preset)
		if len(videos) != preset.MaxVideos {
			t.Errorf("expected %d videos, got %d", preset.MaxVideos, len(videos))
		}
	})

	t.Run("preserves first-seen order", func(t *testing.T) {
		videos, _ := collectIDs(records, engine.Budget("full"))
		if videos[0] != "v1" || videos[1] != "v2" || videos[2] != "v3" {
			t.Errorf("unexpected order: %v", videos)
		}
	})
}
