package engine

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Process-wide counters. All access is atomic; no locks.
var (
	metricSearchCalls   atomic.Int64
	metricVideosCalls   atomic.Int64
	metricChannelsCalls atomic.Int64
	metricRSSFetches    atomic.Int64
	metricCacheHits     atomic.Int64
	metricCacheMisses   atomic.Int64
	metricQuotaTrips    atomic.Int64

	metricsStart = time.Now()
)

func IncrSearchCall()   { metricSearchCalls.Add(1) }
func IncrVideosCall()   { metricVideosCalls.Add(1) }
func IncrChannelsCall() { metricChannelsCalls.Add(1) }
func IncrRSSFetch()     { metricRSSFetches.Add(1) }
func IncrCacheHit()     { metricCacheHits.Add(1) }
func IncrCacheMiss()    { metricCacheMisses.Add(1) }
func IncrQuotaTrip()    { metricQuotaTrips.Add(1) }

// Metrics is a point-in-time snapshot of the counters.
type Metrics struct {
	SearchCalls   int64   `json:"search_calls"`
	VideosCalls   int64   `json:"videos_calls"`
	ChannelsCalls int64   `json:"channels_calls"`
	RSSFetches    int64   `json:"rss_fetches"`
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	QuotaTrips    int64   `json:"quota_trips"`
	UptimeSec     int64   `json:"uptime_sec"`
}

func GetMetrics() Metrics {
	m := Metrics{
		SearchCalls:   metricSearchCalls.Load(),
		VideosCalls:   metricVideosCalls.Load(),
		ChannelsCalls: metricChannelsCalls.Load(),
		RSSFetches:    metricRSSFetches.Load(),
		CacheHits:     metricCacheHits.Load(),
		CacheMisses:   metricCacheMisses.Load(),
		QuotaTrips:    metricQuotaTrips.Load(),
		UptimeSec:     int64(time.Since(metricsStart).Seconds()),
	}
	if total := m.CacheHits + m.CacheMisses; total > 0 {
		m.CacheHitRate = float64(m.CacheHits) / float64(total)
	}
	return m
}

// FormatMetrics renders the snapshot as the text block served by the
// metrics endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	return fmt.Sprintf(
		"uptime_sec %d\nsearch_calls %d\nvideos_calls %d\nchannels_calls %d\nrss_fetches %d\ncache_hits %d\ncache_misses %d\ncache_hit_rate %.2f\nquota_trips %d\n",
		m.UptimeSec, m.SearchCalls, m.VideosCalls, m.ChannelsCalls, m.RSSFetches,
		m.CacheHits, m.CacheMisses, m.CacheHitRate, m.QuotaTrips,
	)
}
