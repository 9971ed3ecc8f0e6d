package match

import (
	"testing"

	"github.com/desertthunder/trackdown/internal/models"
)

func TestCanonical(t *testing.T) {
	t.Run("Artist And Title", func(t *testing.T) {
		if key := Canonical("Queen", "Bohemian Rhapsody"); key != "Queen - Bohemian Rhapsody" {
			t.Errorf("unexpected key: %s", key)
		}
	})

	t.Run("Missing Artist Defaults", func(t *testing.T) {
		if key := Canonical("", "Bohemian Rhapsody"); key != "Unknown - Bohemian Rhapsody" {
			t.Errorf("expected Unknown sentinel, got %s", key)
		}
	})

	t.Run("Empty Title Yields Empty Key", func(t *testing.T) {
		if key := Canonical("Queen", ""); key != "" {
			t.Errorf("expected empty key, got %s", key)
		}
	})
}

func TestCanonicalKeys(t *testing.T) {
	tracks := []models.Track{
		{Artist: "Queen", Title: "Bohemian Rhapsody"},
		{Artist: "Queen", Title: ""},
		{Artist: "", Title: "Untitled Demo"},
	}

	keys := CanonicalKeys(tracks)

	if len(keys) != 2 {
		t.Fatalf("expected 2 keys (titleless track dropped), got %d", len(keys))
	}
	if keys[0] != "Queen - Bohemian Rhapsody" {
		t.Errorf("unexpected first key: %s", keys[0])
	}
	if keys[1] != "Unknown - Untitled Demo" {
		t.Errorf("unexpected second key: %s", keys[1])
	}
}

func TestSimilarity(t *testing.T) {
	t.Run("Identical Keys", func(t *testing.T) {
		if score := Similarity("Queen - Bohemian Rhapsody", "Queen - Bohemian Rhapsody"); score != 100 {
			t.Errorf("expected 100, got %d", score)
		}
	})

	t.Run("Case And Punctuation Insensitive", func(t *testing.T) {
		if score := Similarity("QUEEN - Bohemian Rhapsody", "queen: bohemian rhapsody!"); score != 100 {
			t.Errorf("expected 100 for identical token multisets, got %d", score)
		}
	})

	t.Run("Token Order Insensitive", func(t *testing.T) {
		forward := Similarity("Queen - Bohemian Rhapsody", "Bohemian Rhapsody - Queen")
		if forward != 100 {
			t.Errorf("expected 100 for reordered tokens, got %d", forward)
		}
	})

	t.Run("Symmetric", func(t *testing.T) {
		a, b := "The Beatles - Let It Be", "Beatles - Let It Be (Remastered)"
		if Similarity(a, b) != Similarity(b, a) {
			t.Error("expected symmetric scores")
		}
	})

	t.Run("Unrelated Strings Score Low", func(t *testing.T) {
		related := Similarity("A - B", "B - A")
		unrelated := Similarity("A - B", "C - D")
		if unrelated != 0 {
			t.Errorf("expected 0 for disjoint tokens, got %d", unrelated)
		}
		if unrelated >= related {
			t.Errorf("unrelated score %d should be lower than related %d", unrelated, related)
		}
	})

	t.Run("Qualifier Suffix Tolerated", func(t *testing.T) {
		// Four shared tokens out of five on each side: 200*4/10 = 80.
		score := Similarity("The Beatles - Let It Be", "Beatles - Let It Be (Remastered)")
		if score != 80 {
			t.Errorf("expected 80, got %d", score)
		}
	})

	t.Run("Duplicate Tokens Counted As Multiset", func(t *testing.T) {
		if score := Similarity("la la la", "la"); score == 100 {
			t.Error("expected repeated tokens to count individually")
		}
	})

	t.Run("Empty Strings", func(t *testing.T) {
		if score := Similarity("", ""); score != 100 {
			t.Errorf("expected 100 for two empty keys, got %d", score)
		}
		if score := Similarity("Queen - Bohemian Rhapsody", ""); score != 0 {
			t.Errorf("expected 0 against empty key, got %d", score)
		}
	})
}

func TestReconcile(t *testing.T) {
	t.Run("One Result Per Remote Key In Order", func(t *testing.T) {
		remote := []string{"A - B", "C - D", "E - F"}
		local := []string{"C - D"}

		results := Reconcile(remote, local, 80)

		if len(results) != len(remote) {
			t.Fatalf("expected %d results, got %d", len(remote), len(results))
		}
		for i, r := range results {
			if r.Query != remote[i] {
				t.Errorf("result %d out of order: %s", i, r.Query)
			}
		}
	})

	t.Run("Empty Remote", func(t *testing.T) {
		if results := Reconcile(nil, []string{"A - B"}, 80); len(results) != 0 {
			t.Errorf("expected empty results, got %d", len(results))
		}
	})

	t.Run("Empty Local Forces Missing", func(t *testing.T) {
		results := Reconcile([]string{"A - B", "C - D"}, nil, 0)

		for _, r := range results {
			if r.Status != Missing {
				t.Errorf("expected Missing for %s", r.Query)
			}
			if r.Score != 0 {
				t.Errorf("expected score 0 for %s, got %d", r.Query, r.Score)
			}
			if r.Candidate != "" {
				t.Errorf("expected no candidate for %s, got %s", r.Query, r.Candidate)
			}
		}
	})

	t.Run("Exact Match At Any Threshold", func(t *testing.T) {
		results := Reconcile([]string{"X - Y"}, []string{"X - Y"}, 100)

		if results[0].Status != Matched {
			t.Error("expected Matched")
		}
		if results[0].Score != 100 {
			t.Errorf("expected score 100, got %d", results[0].Score)
		}
	})

	t.Run("Threshold Monotonicity", func(t *testing.T) {
		remote := []string{"The Beatles - Let It Be", "Queen - Bohemian Rhapsody"}
		local := []string{"Beatles - Let It Be (Remastered)", "queen bohemian rhapsody"}

		matchedAt := func(threshold int) int {
			n := 0
			for _, r := range Reconcile(remote, local, threshold) {
				if r.Status == Matched {
					n++
				}
			}
			return n
		}

		prev := matchedAt(0)
		for threshold := 1; threshold <= 100; threshold++ {
			cur := matchedAt(threshold)
			if cur > prev {
				t.Fatalf("raising threshold to %d increased matches from %d to %d", threshold, prev, cur)
			}
			prev = cur
		}
	})

	t.Run("First In Order Wins Ties", func(t *testing.T) {
		local := []string{"first copy - song", "second copy - song"}
		results := Reconcile([]string{"copy - song"}, local, 0)

		if results[0].Candidate != "first copy - song" {
			t.Errorf("expected first local candidate to win tie, got %s", results[0].Candidate)
		}
	})

	t.Run("Sub Threshold Candidate Retained", func(t *testing.T) {
		results := Reconcile([]string{"A - B"}, []string{"A - C"}, 80)

		if results[0].Status != Missing {
			t.Error("expected Missing below threshold")
		}
		if results[0].Candidate != "A - C" {
			t.Errorf("expected near-miss candidate retained, got %q", results[0].Candidate)
		}
	})

	t.Run("Many To One Allowed", func(t *testing.T) {
		results := Reconcile([]string{"A - B", "a b"}, []string{"A - B"}, 80)

		for _, r := range results {
			if r.Status != Matched {
				t.Errorf("expected %s to match the single local track", r.Query)
			}
		}
	})

	t.Run("Remastered Scenario", func(t *testing.T) {
		remote := []string{"The Beatles - Let It Be", "Queen - Bohemian Rhapsody"}
		local := []string{"Beatles - Let It Be (Remastered)"}

		results := Reconcile(remote, local, 80)

		if results[0].Status != Matched {
			t.Errorf("expected remastered variant to match, score %d", results[0].Score)
		}
		if results[1].Status != Missing {
			t.Error("expected Queen track to be missing")
		}

		missing := MissingKeys(results)
		if len(missing) != 1 || missing[0] != "Queen - Bohemian Rhapsody" {
			t.Errorf("unexpected missing set: %v", missing)
		}
	})
}

func TestStatusString(t *testing.T) {
	if Matched.String() != "matched" || Missing.String() != "missing" {
		t.Error("unexpected status names")
	}

	data, err := Matched.MarshalJSON()
	if err != nil {
		t.Fatalf("failed to marshal status: %v", err)
	}
	if string(data) != `"matched"` {
		t.Errorf("unexpected JSON encoding: %s", data)
	}
}
