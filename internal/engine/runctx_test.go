package engine

import (
	"errors"
	"testing"
	"time"
)

func TestQuotaState(t *testing.T) {
	Init(Config{QuotaCooldown: time.Hour})

	t.Run("trip and reset", func(t *testing.T) {
		var q QuotaState
		if q.Exhausted() {
			t.Fatal("fresh state should not be exhausted")
		}
		q.Trip("weex futures")
		if !q.Exhausted() {
			t.Fatal("expected exhausted after trip")
		}
		q.Reset()
		if q.Exhausted() {
			t.Error("expected cleared after reset")
		}
	})

	t.Run("cooldown auto reset", func(t *testing.T) {
		Init(Config{QuotaCooldown: time.Millisecond})
		defer Init(Config{QuotaCooldown: time.Hour})

		var q QuotaState
		q.Trip("q")
		time.Sleep(5 * time.Millisecond)
		if q.Exhausted() {
			t.Error("expected auto reset after cooldown")
		}
	})

	t.Run("error carries reset time", func(t *testing.T) {
		var q QuotaState
		q.Trip("bitunix referral")
		err := q.Err()
		if err.Query != "bitunix referral" {
			t.Errorf("unexpected query: %q", err.Query)
		}
		if !err.ResetAt.After(err.At) {
			t.Errorf("reset %v should follow trip %v", err.ResetAt, err.At)
		}
		if err.ResetAt.Hour() != 0 || err.ResetAt.Location() != time.UTC {
			t.Errorf("expected midnight UTC reset, got %v", err.ResetAt)
		}
	})
}

func TestRunContext(t *testing.T) {
	Init(Config{QuotaCooldown: time.Hour})

	t.Run("distinct ids", func(t *testing.T) {
		a, b := NewRun(), NewRun()
		if a.ID == "" || a.ID == b.ID {
			t.Errorf("expected distinct run IDs, got %q and %q", a.ID, b.ID)
		}
	})

	t.Run("abort is sticky", func(t *testing.T) {
		r := NewRun()
		r.Quota = &QuotaState{}
		if err := r.CheckQuota(); err != nil {
			t.Fatalf("fresh run should pass: %v", err)
		}
		r.Abort()
		if !r.Aborted() {
			t.Fatal("expected aborted")
		}
		var qe *QuotaExhaustedError
		if err := r.CheckQuota(); !errors.As(err, &qe) {
			t.Errorf("expected QuotaExhaustedError, got %v", err)
		}
	})

	t.Run("shared quota fails all runs", func(t *testing.T) {
		shared := &QuotaState{}
		a := NewRun()
		b := NewRun()
		a.Quota = shared
		b.Quota = shared
		shared.Trip("q")
		if a.CheckQuota() == nil || b.CheckQuota() == nil {
			t.Error("both runs should fail fast after one trip")
		}
	})
}

func TestNextQuotaReset(t *testing.T) {
	at := time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC)
	want := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	if got := NextQuotaReset(at); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Just before midnight still resets at the next one.
	at = time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
	if got := NextQuotaReset(at); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
