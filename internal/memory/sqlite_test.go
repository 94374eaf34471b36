package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, opts Options) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "memory.db"), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_WindowRoundTrip(t *testing.T) {
	ctx := context.Background()
	const window = 5

	for _, turns := range []int{1, 2, 3, 7} {
		t.Run(fmt.Sprintf("turns=%d", turns), func(t *testing.T) {
			s := openTestStore(t, Options{Window: window})
			for i := 0; i < turns; i++ {
				if err := s.SaveMessage(ctx, Message{Role: RoleUser, Content: fmt.Sprintf("q%d", i)}); err != nil {
					t.Fatal(err)
				}
				if err := s.SaveMessage(ctx, Message{Role: RoleAssistant, Content: fmt.Sprintf("a%d", i)}); err != nil {
					t.Fatal(err)
				}
			}

			c, err := s.GetContext(ctx, "")
			if err != nil {
				t.Fatalf("GetContext: %v", err)
			}
			want := min(2*turns, window)
			if len(c.RecentMessages) != want {
				t.Fatalf("expected %d messages, got %d", want, len(c.RecentMessages))
			}
			last := c.RecentMessages[len(c.RecentMessages)-1]
			if last.Role != RoleAssistant || last.Content != fmt.Sprintf("a%d", turns-1) {
				t.Errorf("expected newest message last, got %+v", last)
			}
			for i := 1; i < len(c.RecentMessages); i++ {
				if c.RecentMessages[i].Timestamp.Before(c.RecentMessages[i-1].Timestamp) {
					t.Errorf("messages not chronological at %d", i)
				}
			}
		})
	}
}

func TestSQLiteStore_MessageCount(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})
	for i := 0; i < 3; i++ {
		_ = s.SaveMessage(ctx, Message{Role: RoleUser, Content: "x"})
	}
	n, err := s.MessageCount(ctx)
	if err != nil || n != 3 {
		t.Fatalf("MessageCount = %d, %v", n, err)
	}
}

func TestSQLiteStore_FactDedup(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})

	added, err := s.SaveFact(ctx, "The bench supply is a Rigol DP832")
	if err != nil || !added {
		t.Fatalf("first save: added=%v err=%v", added, err)
	}
	added, err = s.SaveFact(ctx, "  The bench supply is a Rigol DP832 ")
	if err != nil || added {
		t.Fatalf("duplicate save: added=%v err=%v", added, err)
	}
	if _, err := s.SaveFact(ctx, "   "); err == nil {
		t.Error("expected error for empty fact")
	}

	facts, err := s.RecentFacts(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(facts))
	}
}

func TestSQLiteStore_SearchFacts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})
	for _, f := range []string{
		"Living room lights are light.living_room",
		"The oscilloscope is a Siglent SDS1104",
		"Preferred solder is 63/37 leaded",
	} {
		if _, err := s.SaveFact(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	facts, err := s.SearchFacts(ctx, "which oscilloscope do I have?", 10)
	if err != nil {
		t.Fatalf("SearchFacts: %v", err)
	}
	if len(facts) != 1 || facts[0].Content != "The oscilloscope is a Siglent SDS1104" {
		t.Errorf("unexpected facts %+v", facts)
	}

	// Punctuation and FTS operators in user text must not break the query.
	if _, err := s.SearchFacts(ctx, `"NEAR(" AND * OR -`, 10); err != nil {
		t.Errorf("expected sanitized query, got %v", err)
	}
}

func TestSQLiteStore_ContextFallsBackToRecentFacts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{FactLimit: 2})
	for _, f := range []string{"first fact", "second fact", "third fact"} {
		if _, err := s.SaveFact(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	c, err := s.GetContext(ctx, "zzz unrelated")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.RelevantFacts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(c.RelevantFacts))
	}
	if c.RelevantFacts[0].Content != "third fact" {
		t.Errorf("expected newest fact first, got %q", c.RelevantFacts[0].Content)
	}
}

func TestSQLiteStore_DeleteFact(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, Options{})
	if _, err := s.SaveFact(ctx, "temporary"); err != nil {
		t.Fatal(err)
	}
	facts, _ := s.RecentFacts(ctx, 1)
	if err := s.DeleteFact(ctx, facts[0].ID); err != nil {
		t.Fatalf("DeleteFact: %v", err)
	}
	if err := s.DeleteFact(ctx, facts[0].ID); err == nil {
		t.Error("expected error deleting missing fact")
	}
}

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a ? !", ""},
		{"Kitchen lights", `"kitchen" OR "lights"`},
		{"lights, lights!", `"lights"`},
		{`say "hi"`, `"say" OR "hi"`},
	}
	for _, tt := range tests {
		if got := ftsQuery(tt.in); got != tt.want {
			t.Errorf("ftsQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
