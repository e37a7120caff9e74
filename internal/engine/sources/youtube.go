package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_scout/internal/engine"
)

// YouTube Data API v3 client: search.list for candidate discovery,
// videos.list and channels.list for batched detail hydration.

// ytAPIBase is a var so tests can point the client at a local server.
var ytAPIBase = "https://www.googleapis.com/youtube/v3"

// BatchSize is the API's per-call ID limit for videos.list and
// channels.list. Callers accounting for quota cost chunk by it too.
const BatchSize = 50

// --- API response types ---

type ytErrorResp struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

type ytSearchResp struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			VideoID   string `json:"videoId"`
			ChannelID string `json:"channelId"`
		} `json:"id"`
		Snippet struct {
			ChannelID string `json:"channelId"`
		} `json:"snippet"`
	} `json:"items"`
}

type ytVideosResp struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			ChannelID   string `json:"channelId"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type ytChannelsResp struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			CustomURL   string `json:"customUrl"`
			Country     string `json:"country"`
			PublishedAt string `json:"publishedAt"`
			Thumbnails  struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
			ViewCount       string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// SearchPage is one page of search.list results.
type SearchPage struct {
	VideoIDs      []string `json:"video_ids"`
	ChannelIDs    []string `json:"channel_ids"`
	NextPageToken string   `json:"next_page_token,omitempty"`
}

// parseCount converts the API's string-typed counters. Hidden counters
// (empty string) become 0.
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// apiGet performs one Data API call. On a quota 403 the fallback key is
// tried once (keys from separate Google projects have separate daily
// budgets); only when every key is exhausted does the run's quota state
// trip.
func apiGet(ctx context.Context, run *engine.RunContext, endpoint string, params url.Values, out any) error {
	if err := run.CheckQuota(); err != nil {
		return err
	}
	keys := []string{engine.Cfg.YouTubeAPIKey}
	if engine.Cfg.YouTubeAPIKeyFallback != "" {
		keys = append(keys, engine.Cfg.YouTubeAPIKeyFallback)
	}
	var lastErr error
	for _, key := range keys {
		if key == "" {
			continue
		}
		err := doAPIGet(ctx, endpoint, params, key, out)
		if err == nil {
			return nil
		}
		lastErr = err
		var qe *engine.QuotaExhaustedError
		if errors.As(err, &qe) {
			slog.Debug("api key exhausted, trying fallback", slog.String("endpoint", endpoint))
			continue
		}
		return err
	}
	if lastErr == nil {
		return fmt.Errorf("youtube %s: no API key configured", endpoint)
	}
	var qe *engine.QuotaExhaustedError
	if errors.As(lastErr, &qe) {
		run.Quota.Trip(params.Get("q"))
		return run.Quota.Err()
	}
	return lastErr
}

func doAPIGet(ctx context.Context, endpoint string, params url.Values, apiKey string, out any) error {
	p := url.Values{}
	for k, v := range params {
		p[k] = v
	}
	p.Set("key", apiKey)
	apiURL := ytAPIBase + "/" + endpoint + "?" + p.Encode()

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, err
		}
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return fmt.Errorf("youtube %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		var apiErr ytErrorResp
		_ = json.Unmarshal(body, &apiErr)
		if resp.StatusCode == 403 && quotaReason(apiErr) {
			now := time.Now()
			return &engine.QuotaExhaustedError{At: now, ResetAt: engine.NextQuotaReset(now)}
		}
		detail := apiErr.Error.Message
		if detail == "" {
			detail = string(body)
		}
		return &engine.RequestError{Endpoint: endpoint, Status: resp.StatusCode, Detail: detail}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube %s: %w", endpoint, err)
	}
	return nil
}

func quotaReason(e ytErrorResp) bool {
	for _, item := range e.Error.Errors {
		switch item.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded":
			return true
		}
	}
	return false
}

// Search runs one search.list page for query, returning the found video
// and channel IDs. maxResults is clamped to the API's 50-per-page limit.
func Search(ctx context.Context, run *engine.RunContext, query string, maxResults int, pageToken string) (SearchPage, error) {
	if maxResults < 1 || maxResults > 50 {
		maxResults = 25
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	var page SearchPage
	err := engine.Limiter().Do(ctx, func() error {
		engine.IncrSearchCall()
		var resp ytSearchResp
		if err := apiGet(ctx, run, "search", params, &resp); err != nil {
			return err
		}
		seen := make(map[string]struct{})
		for _, item := range resp.Items {
			if item.ID.VideoID != "" {
				page.VideoIDs = append(page.VideoIDs, item.ID.VideoID)
			}
			ch := item.Snippet.ChannelID
			if ch == "" {
				ch = item.ID.ChannelID
			}
			if ch == "" {
				continue
			}
			if _, ok := seen[ch]; ok {
				continue
			}
			seen[ch] = struct{}{}
			page.ChannelIDs = append(page.ChannelIDs, ch)
		}
		page.NextPageToken = resp.NextPageToken
		return nil
	})
	return page, err
}

// VideosBatch fetches snippet and statistics for video IDs, chunked at the
// API's 50-ID limit.
func VideosBatch(ctx context.Context, run *engine.RunContext, ids []string) ([]engine.VideoStats, error) {
	var out []engine.VideoStats
	for _, chunk := range chunkIDs(ids, BatchSize) {
		params := url.Values{}
		params.Set("part", "snippet,statistics")
		params.Set("id", joinIDs(chunk))

		engine.IncrVideosCall()
		var resp ytVideosResp
		if err := apiGet(ctx, run, "videos", params, &resp); err != nil {
			return out, err
		}
		for _, item := range resp.Items {
			out = append(out, engine.VideoStats{
				VideoID:      item.ID,
				ChannelID:    item.Snippet.ChannelID,
				Title:        item.Snippet.Title,
				Description:  item.Snippet.Description,
				ViewCount:    parseCount(item.Statistics.ViewCount),
				LikeCount:    parseCount(item.Statistics.LikeCount),
				CommentCount: parseCount(item.Statistics.CommentCount),
				PublishedAt:  parseTime(item.Snippet.PublishedAt),
			})
		}
	}
	return out, nil
}

// ChannelsBatch fetches snippet and statistics for channel IDs, chunked at
// the API's 50-ID limit.
func ChannelsBatch(ctx context.Context, run *engine.RunContext, ids []string) ([]engine.ChannelStats, error) {
	var out []engine.ChannelStats
	for _, chunk := range chunkIDs(ids, BatchSize) {
		params := url.Values{}
		params.Set("part", "snippet,statistics")
		params.Set("id", joinIDs(chunk))

		engine.IncrChannelsCall()
		var resp ytChannelsResp
		if err := apiGet(ctx, run, "channels", params, &resp); err != nil {
			return out, err
		}
		for _, item := range resp.Items {
			out = append(out, engine.ChannelStats{
				ChannelID:       item.ID,
				Title:           item.Snippet.Title,
				Description:     item.Snippet.Description,
				CustomURL:       item.Snippet.CustomURL,
				Country:         item.Snippet.Country,
				SubscriberCount: parseCount(item.Statistics.SubscriberCount),
				VideoCount:      parseCount(item.Statistics.VideoCount),
				ViewCount:       parseCount(item.Statistics.ViewCount),
				ThumbnailURL:    item.Snippet.Thumbnails.Default.URL,
				PublishedAt:     parseTime(item.Snippet.PublishedAt),
			})
		}
	}
	return out, nil
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > 0 {
		n := size
		if len(ids) < n {
			n = len(ids)
		}
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}
	return chunks
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}
