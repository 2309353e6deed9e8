package conversation

import (
	"sync"
	"testing"

	"github.com/diogo/optchat/internal/models"
)

func TestNew_Seeded(t *testing.T) {
	greeting := models.NewAssistantMessage("welcome", []string{"a", "b"}, models.LayoutHorizontal)
	s := New(greeting)

	if s.Len() != 1 {
		t.Fatalf("expected 1 message, got %d", s.Len())
	}
	last, ok := s.Last()
	if !ok {
		t.Fatal("expected a last message")
	}
	if last.Content != "welcome" {
		t.Errorf("unexpected content %q", last.Content)
	}
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	s := New()
	for _, c := range []string{"one", "two", "three"} {
		s.Append(models.NewUserMessage(c))
	}

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []string{"one", "two", "three"} {
		if msgs[i].Content != want {
			t.Errorf("message %d = %q, want %q", i, msgs[i].Content, want)
		}
	}
}

func TestStore_ReplaceLast(t *testing.T) {
	s := New()
	s.Append(models.NewUserMessage("question"))
	s.Append(models.NewPlaceholderMessage("generating..."))

	if s.PlaceholderCount() != 1 {
		t.Fatalf("expected 1 placeholder, got %d", s.PlaceholderCount())
	}

	s.ReplaceLast(models.NewAssistantMessage("answer", nil, ""))

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "question" {
		t.Errorf("first message changed: %q", msgs[0].Content)
	}
	if msgs[1].Content != "answer" || msgs[1].Placeholder {
		t.Errorf("placeholder not replaced: %+v", msgs[1])
	}
	if s.PlaceholderCount() != 0 {
		t.Errorf("expected no placeholders, got %d", s.PlaceholderCount())
	}
}

func TestStore_ReplaceLastOnEmpty(t *testing.T) {
	s := New()
	s.ReplaceLast(models.NewUserMessage("x"))
	if s.Len() != 1 {
		t.Errorf("expected 1 message, got %d", s.Len())
	}
}

func TestStore_SnapshotIsReadOnly(t *testing.T) {
	s := New(models.NewAssistantMessage("hi", []string{"a"}, models.LayoutVertical))

	snap := s.Messages()
	snap[0].Content = "mutated"
	snap[0].Options[0] = "mutated"

	again := s.Messages()
	if again[0].Content != "hi" {
		t.Errorf("snapshot mutation leaked into store: %q", again[0].Content)
	}
	if again[0].Options[0] != "a" {
		t.Errorf("snapshot options leaked into store: %v", again[0].Options)
	}
}

func TestStore_LastEmpty(t *testing.T) {
	if _, ok := New().Last(); ok {
		t.Error("Last on empty store should report false")
	}
}

func TestStore_LatestOptions(t *testing.T) {
	s := New(models.NewAssistantMessage("menu", []string{"a", "b"}, models.LayoutHorizontal))
	s.Append(models.NewUserMessage("a"))
	s.Append(models.NewAssistantMessage("no options", nil, ""))

	opts, ok := s.LatestOptions()
	if !ok {
		t.Fatal("expected options")
	}
	if len(opts) != 2 || opts[0] != "a" {
		t.Errorf("unexpected options %v", opts)
	}

	s.Append(models.NewAssistantMessage("sub", []string{"x"}, models.LayoutVertical))
	opts, _ = s.LatestOptions()
	if len(opts) != 1 || opts[0] != "x" {
		t.Errorf("expected latest option set, got %v", opts)
	}

	if _, ok := New().LatestOptions(); ok {
		t.Error("empty store should have no options")
	}
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(models.NewUserMessage("x"))
			_ = s.Messages()
		}()
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Errorf("expected 50 messages, got %d", s.Len())
	}
}
