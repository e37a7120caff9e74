package engine

import (
	"testing"
	"time"
)

func findEvidence(evs []Evidence, typ EvidenceType, keyword string) *Evidence {
	for i := range evs {
		if evs[i].Type == typ && evs[i].Keyword == keyword {
			return &evs[i]
		}
	}
	return nil
}

func TestExtractEvidence(t *testing.T) {
	lex := DefaultLexicon()

	t.Run("whole word only", func(t *testing.T) {
		evs := ExtractEvidence(lex, "my features are not futures but futuresmania", SourceTitle, nil)
		ev := findEvidence(evs, EvidenceContract, "futures")
		if ev == nil {
			t.Fatal("expected futures evidence")
		}
		if ev.Count != 1 {
			t.Errorf("expected count 1, got %d", ev.Count)
		}
	})

	t.Run("multiword keyword spans whitespace", func(t *testing.T) {
		evs := ExtractEvidence(lex, "today's funding   rate is wild", SourceDescription, nil)
		if findEvidence(evs, EvidenceMechanism, "funding rate") == nil {
			t.Error("expected funding rate evidence across a whitespace run")
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		evs := ExtractEvidence(lex, "PARTNERSHIP announced", SourceTitle, nil)
		if findEvidence(evs, EvidenceCommercial, "partnership") == nil {
			t.Error("expected partnership evidence")
		}
	})

	t.Run("counts are uncapped", func(t *testing.T) {
		evs := ExtractEvidence(lex, "futures futures futures futures futures", SourceTitle, nil)
		ev := findEvidence(evs, EvidenceContract, "futures")
		if ev == nil || ev.Count != 5 {
			t.Fatalf("expected raw count 5, got %+v", ev)
		}
	})

	t.Run("negative keywords", func(t *testing.T) {
		evs := ExtractEvidence(lex, "open a bank account for your loan", SourceDescription, nil)
		if findEvidence(evs, EvidenceNegative, "bank account") == nil {
			t.Error("expected bank account evidence")
		}
		ev := findEvidence(evs, EvidenceNegative, "loan")
		if ev == nil || ev.Weight >= 0 {
			t.Errorf("expected negative weight for loan, got %+v", ev)
		}
	})

	t.Run("links are not keyword evidence", func(t *testing.T) {
		evs := ExtractEvidence(lex, "join here https://bit.ly/abc and t.me/mychannel", SourceDescription, nil)
		for _, ev := range evs {
			switch ev.Keyword {
			case "bitly", "telegram", "http_link":
				t.Errorf("link category %q leaked into keyword evidence", ev.Keyword)
			}
		}
	})

	t.Run("competitor brand mentions", func(t *testing.T) {
		evs := ExtractEvidence(lex, "Trading on WEEX with weex referral", SourceTitle, []string{"WEEX"})
		ev := findEvidence(evs, EvidenceCompetitor, "weex")
		if ev == nil {
			t.Fatal("expected weex brand evidence")
		}
		if ev.Count != 2 {
			t.Errorf("expected count 2, got %d", ev.Count)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		if evs := ExtractEvidence(lex, "   ", SourceTitle, nil); evs != nil {
			t.Errorf("expected nil for blank text, got %d items", len(evs))
		}
	})
}

func TestDetectLinks(t *testing.T) {
	t.Run("categories in recognizer order", func(t *testing.T) {
		has, kinds := DetectLinks("join https://bit.ly/abc and t.me/mychannel")
		if !has {
			t.Fatal("expected links detected")
		}
		want := []string{"http_link", "bitly", "telegram"}
		if len(kinds) != len(want) {
			t.Fatalf("expected %v, got %v", want, kinds)
		}
		for i := range want {
			if kinds[i] != want[i] {
				t.Errorf("kinds[%d] = %q, want %q", i, kinds[i], want[i])
			}
		}
	})

	t.Run("no duplicates", func(t *testing.T) {
		_, kinds := DetectLinks("t.me/a t.me/b t.me/c")
		if len(kinds) != 1 || kinds[0] != "telegram" {
			t.Errorf("expected single telegram category, got %v", kinds)
		}
	})

	t.Run("plain text", func(t *testing.T) {
		has, kinds := DetectLinks("no links here at all")
		if has || kinds != nil {
			t.Errorf("expected no links, got %v", kinds)
		}
	})
}

func TestDetectTerms(t *testing.T) {
	t.Run("substring match", func(t *testing.T) {
		got := DetectTerms("My Exchange REVIEW and fee guide", QualityIndicators)
		if findString(got, "review") == -1 {
			t.Error("expected review indicator")
		}
		if findString(got, "guide") == -1 {
			t.Error("expected guide indicator")
		}
	})

	t.Run("risk flags", func(t *testing.T) {
		got := DetectTerms("100x GUARANTEED profit, easy money!", RiskFlagTerms)
		for _, want := range []string{"guaranteed", "100x", "easy money"} {
			if findString(got, want) == -1 {
				t.Errorf("expected %q flag, got %v", want, got)
			}
		}
	})

	t.Run("no hits", func(t *testing.T) {
		if got := DetectTerms("calm market recap", RiskFlagTerms); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}

func findString(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func TestMergeEvidence(t *testing.T) {
	a := []Evidence{
		{Type: EvidenceContract, Keyword: "futures", Count: 2, Source: SourceTitle, Weight: 3},
		{Type: EvidenceCommercial, Keyword: "referral", Count: 1, Source: SourceTitle, Weight: 3},
	}
	b := []Evidence{
		{Type: EvidenceContract, Keyword: "futures", Count: 3, Source: SourceTitle, Weight: 3},
		{Type: EvidenceContract, Keyword: "futures", Count: 1, Source: SourceDescription, Weight: 3},
	}

	merged := MergeEvidence(a, b)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged items, got %d", len(merged))
	}
	fut := findEvidence(merged, EvidenceContract, "futures")
	if fut == nil {
		t.Fatal("expected futures entry")
	}
	// Counts sum across sources; the first-seen entry keeps its source
	// and weight so repeating a keyword in another field cannot open a
	// second capped scoring slot.
	if fut.Count != 6 {
		t.Errorf("expected summed count 6, got %d", fut.Count)
	}
	if fut.Source != SourceTitle {
		t.Errorf("expected first-seen source title, got %s", fut.Source)
	}
}

func TestExtractChannelEvidence(t *testing.T) {
	lex := DefaultLexicon()

	t.Run("scans the ten most recent videos", func(t *testing.T) {
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		cand := CandidateChannel{
			Channel: ChannelStats{Description: "crypto channel"},
		}
		// Five stale videos arrive first, then fifteen newer ones. Only
		// the newest ten are scanned, so the stale keyword never shows.
		for i := 0; i < 5; i++ {
			cand.Videos = append(cand.Videos, VideoStats{
				Title:       "mortgage talk",
				PublishedAt: base.AddDate(-1, 0, i),
			})
		}
		for i := 0; i < 15; i++ {
			cand.Videos = append(cand.Videos, VideoStats{
				Title:       "leverage talk",
				PublishedAt: base.AddDate(0, 0, i),
			})
		}
		ev := ExtractChannelEvidence(lex, cand, nil)
		lev := findEvidence(ev.Items, EvidenceContract, "leverage")
		if lev == nil || lev.Count != 10 {
			t.Fatalf("expected 10 leverage hits from the 10 newest videos, got %+v", lev)
		}
		if findEvidence(ev.Items, EvidenceNegative, "mortgage") != nil {
			t.Error("stale videos beyond the recency window must not be scanned")
		}
	})

	t.Run("links and terms surface as flags", func(t *testing.T) {
		cand := CandidateChannel{
			Channel: ChannelStats{Description: "Honest exchange review channel"},
			Videos: []VideoStats{{
				Title:       "Futures tutorial, guaranteed profit",
				Description: "sign up via https://bit.ly/ref",
				PublishedAt: time.Now(),
			}},
		}
		ev := ExtractChannelEvidence(lex, cand, nil)
		if !ev.HasLinks {
			t.Error("expected external links flag")
		}
		if findString(ev.LinkKinds, "bitly") == -1 {
			t.Errorf("expected bitly link kind, got %v", ev.LinkKinds)
		}
		if findString(ev.Quality, "review") == -1 || findString(ev.Quality, "tutorial") == -1 {
			t.Errorf("expected review and tutorial quality indicators, got %v", ev.Quality)
		}
		if findString(ev.RiskFlags, "guaranteed profit") == -1 {
			t.Errorf("expected guaranteed profit risk flag, got %v", ev.RiskFlags)
		}
	})

	t.Run("referral code with brand and link", func(t *testing.T) {
		cand := CandidateChannel{
			Channel: ChannelStats{Description: ""},
			Videos: []VideoStats{{
				Title:       "WEEX futures trading",
				Description: "Use my referral code for WEEX futures trading, https://weex.com/ref/abc",
				PublishedAt: time.Now(),
			}},
		}
		ev := ExtractChannelEvidence(lex, cand, []string{"WEEX"})
		var contractRaw, commercialRaw int
		for _, item := range ev.Items {
			switch item.Type {
			case EvidenceContract:
				contractRaw += item.Count
			case EvidenceCommercial:
				commercialRaw += item.Count
			}
		}
		// "futures" and "futures trading" both hit twice across title and
		// description, each merged into one entry with the summed count.
		if contractRaw < 2 {
			t.Errorf("expected contract raw count >= 2, got %d", contractRaw)
		}
		if commercialRaw < 1 {
			t.Errorf("expected commercial raw count >= 1, got %d", commercialRaw)
		}
		if findEvidence(ev.Items, EvidenceCommercial, "referral code") == nil {
			t.Error("expected referral code evidence")
		}
		if findEvidence(ev.Items, EvidenceCompetitor, "weex") == nil {
			t.Error("expected weex brand evidence")
		}
		if !ev.HasLinks {
			t.Error("expected external links flag")
		}
	})
}

func TestFormatEvidence(t *testing.T) {
	evs := []Evidence{
		{Type: EvidenceNegative, Keyword: "loan", Count: 4},
		{Type: EvidenceContract, Keyword: "futures", Count: 2},
		{Type: EvidenceCommercial, Keyword: "referral", Count: 3},
		{Type: EvidenceCommercial, Keyword: "sponsored", Count: 5},
	}
	got := FormatEvidence(evs)
	if got != "commercial: sponsored, referral; contract: futures" {
		t.Errorf("unexpected format: %q", got)
	}
}
