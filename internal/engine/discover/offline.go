package discover

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/anatolykoptev/go_scout/internal/engine"
)

// Offline snapshots let a run's results be re-examined or re-scored
// without touching the API: a JSON file with the full result and a CSV
// summary for spreadsheets.

// Snapshot is the on-disk form of one completed run.
type Snapshot struct {
	SavedAt time.Time `json:"saved_at"`
	Result  Result    `json:"result"`
}

func snapshotDir() string {
	if engine.Cfg.OfflineDir != "" {
		return engine.Cfg.OfflineDir
	}
	return filepath.Join(engine.Cfg.CacheDir, "snapshots")
}

// SaveSnapshot writes a run's result as JSON plus a CSV partner summary.
// Returns the JSON path.
func SaveSnapshot(res *Result) (string, error) {
	dir := snapshotDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshot dir: %w", err)
	}
	runTag := res.RunID
	if len(runTag) > 8 {
		runTag = runTag[:8]
	}
	base := fmt.Sprintf("%s_%s_%s", res.Competitor, time.Now().UTC().Format("20060102T150405Z"), runTag)

	snap := Snapshot{SavedAt: time.Now(), Result: *res}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	jsonPath := filepath.Join(dir, base+".json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	if err := writeCSV(filepath.Join(dir, base+".csv"), res); err != nil {
		return jsonPath, fmt.Errorf("write snapshot csv: %w", err)
	}
	slog.Info("snapshot saved", slog.String("path", jsonPath), slog.Int("partners", len(res.Partners)))
	return jsonPath, nil
}

func writeCSV(path string, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"channel_id", "title", "subscribers", "score", "evidence"}); err != nil {
		return err
	}
	for _, p := range res.Partners {
		row := []string{
			p.ChannelID,
			p.Channel.Title,
			strconv.FormatInt(p.Channel.SubscriberCount, 10),
			strconv.Itoa(p.Total),
			engine.FormatEvidence(p.Evidence.Items),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadSnapshot reads a snapshot JSON back.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// ListSnapshots returns the snapshot JSON files, newest first by name.
func ListSnapshots() ([]string, error) {
	entries, err := os.ReadDir(snapshotDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for i := len(entries) - 1; i >= 0; i-- {
		name := entries[i].Name()
		if filepath.Ext(name) == ".json" {
			out = append(out, filepath.Join(snapshotDir(), name))
		}
	}
	return out, nil
}

// HydrateCache seeds the detail caches from a snapshot so later runs can
// re-score its channels without API calls.
func HydrateCache(ctx context.Context, store *engine.Store, snap *Snapshot) int {
	n := 0
	for _, p := range snap.Result.Partners {
		store.SetChannel(ctx, p.Channel)
		n++
	}
	slog.Info("cache hydrated from snapshot", slog.Int("channels", n))
	return n
}
