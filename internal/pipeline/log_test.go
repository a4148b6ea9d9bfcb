package pipeline

import (
	"testing"

	"github.com/podscribe/podscribe/internal/model"
)

func TestLog_AppendOrder(t *testing.T) {
	l := NewLog()
	l.Append(model.RoleUser, "first")
	l.Append(model.RoleTranscriber, "second")
	l.Append(model.RoleChatbot, "third")

	entries := l.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"first", "second", "third"}
	for i, e := range entries {
		if e.Content != want[i] {
			t.Errorf("entry %d content = %q, want %q", i, e.Content, want[i])
		}
		if e.ID == "" {
			t.Errorf("entry %d has empty id", i)
		}
	}
	if entries[0].ID == entries[1].ID {
		t.Error("entry ids not unique")
	}
}

func TestLog_EntriesReturnsCopy(t *testing.T) {
	l := NewLog()
	l.Append(model.RoleUser, "original")

	entries := l.Entries()
	entries[0].Content = "mutated"

	if l.Entries()[0].Content != "original" {
		t.Error("log entry mutated through the returned slice")
	}
}
