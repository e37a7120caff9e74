package sources

import (
	"context"
	"fmt"
	"sort"

	"github.com/mmcdole/gofeed"

	"github.com/anatolykoptev/go_scout/internal/engine"
)

// Channel uploads via the public RSS feed. Costs zero API quota; the feed
// carries roughly the 15 most recent uploads with title and description
// but no statistics.

var rssFeedBase = "https://www.youtube.com/feeds/videos.xml"

// FetchChannelUploads reads a channel's uploads feed and returns its recent
// videos, newest first. View counts come from the media:community block
// when present; like and comment counts are not in the feed and stay zero.
func FetchChannelUploads(ctx context.Context, channelID string) ([]engine.VideoStats, error) {
	if channelID == "" {
		return nil, fmt.Errorf("rss: empty channel id")
	}
	engine.IncrRSSFetch()

	parser := gofeed.NewParser()
	parser.Client = engine.Cfg.HTTPClient
	feed, err := parser.ParseURLWithContext(rssFeedBase+"?channel_id="+channelID, ctx)
	if err != nil {
		return nil, fmt.Errorf("rss fetch %s: %w", channelID, err)
	}

	videos := make([]engine.VideoStats, 0, len(feed.Items))
	for _, item := range feed.Items {
		v := engine.VideoStats{
			Title:     item.Title,
			ChannelID: channelID,
		}
		if feed.Title != "" {
			v.ChannelTitle = feed.Title
		}
		if item.PublishedParsed != nil {
			v.PublishedAt = *item.PublishedParsed
		}
		if ext, ok := item.Extensions["yt"]; ok {
			if ids := ext["videoId"]; len(ids) > 0 {
				v.VideoID = ids[0].Value
			}
		}
		if ext, ok := item.Extensions["media"]; ok {
			for _, group := range ext["group"] {
				if descs := group.Children["description"]; len(descs) > 0 {
					v.Description = descs[0].Value
				}
				for _, community := range group.Children["community"] {
					for _, stats := range community.Children["statistics"] {
						v.ViewCount = parseCount(stats.Attrs["views"])
					}
				}
			}
		}
		if v.VideoID == "" {
			continue
		}
		videos = append(videos, v)
	}
	sort.SliceStable(videos, func(i, j int) bool { return videos[i].PublishedAt.After(videos[j].PublishedAt) })
	return videos, nil
}
