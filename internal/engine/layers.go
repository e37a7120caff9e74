package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Typed accessors for the three cache layers. The search layer is keyed by
// (competitor, query) and churns fastest; channel and video metadata is
// stable, so those layers carry the longer detail TTL. Batch variants
// partition the requested IDs into hits and misses so callers fetch only
// the misses upstream — quota cost scales with miss count, not request
// count.

// GetSearch returns the cached ID lists for one (competitor, query) pair.
func (s *Store) GetSearch(ctx context.Context, competitor, query string) (SearchRecord, bool) {
	var rec SearchRecord
	data, ok := s.Get(ctx, nsSearch+QueryCacheKey(competitor, query))
	if !ok {
		return rec, false
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Debug("cache: corrupt search record", slog.String("query", query), slog.Any("error", err))
		return SearchRecord{}, false
	}
	return rec, true
}

// SetSearch stores the ID lists a search call produced.
func (s *Store) SetSearch(ctx context.Context, rec SearchRecord) {
	rec.FetchedAt = time.Now()
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	s.Set(ctx, nsSearch+QueryCacheKey(rec.Competitor, rec.Query), data, cfg.SearchCacheTTL)
}

// GetChannel returns one cached channel record.
func (s *Store) GetChannel(ctx context.Context, channelID string) (ChannelStats, bool) {
	var ch ChannelStats
	data, ok := s.Get(ctx, nsChannel+ChannelCacheKey(channelID))
	if !ok {
		return ch, false
	}
	if err := json.Unmarshal(data, &ch); err != nil {
		return ChannelStats{}, false
	}
	return ch, true
}

// SetChannel stores one channel record.
func (s *Store) SetChannel(ctx context.Context, ch ChannelStats) {
	data, err := json.Marshal(ch)
	if err != nil {
		return
	}
	s.Set(ctx, nsChannel+ChannelCacheKey(ch.ChannelID), data, cfg.DetailCacheTTL)
}

// GetChannelsBatch partitions channelIDs into cached records and missing IDs.
func (s *Store) GetChannelsBatch(ctx context.Context, channelIDs []string) (map[string]ChannelStats, []string) {
	hits := make(map[string]ChannelStats, len(channelIDs))
	var missing []string
	for _, id := range channelIDs {
		if ch, ok := s.GetChannel(ctx, id); ok {
			hits[id] = ch
		} else {
			missing = append(missing, id)
		}
	}
	slog.Debug("cache: channel batch", slog.Int("hits", len(hits)), slog.Int("misses", len(missing)))
	return hits, missing
}

// SetChannelsBatch backfills freshly fetched channel records.
func (s *Store) SetChannelsBatch(ctx context.Context, channels []ChannelStats) {
	for _, ch := range channels {
		s.SetChannel(ctx, ch)
	}
}

// GetVideo returns one cached video record.
func (s *Store) GetVideo(ctx context.Context, videoID string) (VideoStats, bool) {
	var v VideoStats
	data, ok := s.Get(ctx, nsVideo+VideoCacheKey(videoID))
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return VideoStats{}, false
	}
	return v, true
}

// SetVideo stores one video record.
func (s *Store) SetVideo(ctx context.Context, v VideoStats) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.Set(ctx, nsVideo+VideoCacheKey(v.VideoID), data, cfg.DetailCacheTTL)
}

// GetVideosBatch partitions videoIDs into cached records and missing IDs.
func (s *Store) GetVideosBatch(ctx context.Context, videoIDs []string) (map[string]VideoStats, []string) {
	hits := make(map[string]VideoStats, len(videoIDs))
	var missing []string
	for _, id := range videoIDs {
		if v, ok := s.GetVideo(ctx, id); ok {
			hits[id] = v
		} else {
			missing = append(missing, id)
		}
	}
	slog.Debug("cache: video batch", slog.Int("hits", len(hits)), slog.Int("misses", len(missing)))
	return hits, missing
}

// SetVideosBatch backfills freshly fetched video records.
func (s *Store) SetVideosBatch(ctx context.Context, videos []VideoStats) {
	for _, v := range videos {
		s.SetVideo(ctx, v)
	}
}
