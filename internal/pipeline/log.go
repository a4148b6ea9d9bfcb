package pipeline

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/podscribe/podscribe/internal/model"
)

// Log is the append-only interaction record of one pipeline run. Each
// stage and chat exchange appends exactly one entry; entries are never
// mutated or removed. The orchestrator executes stages sequentially, so
// the log has a single writer.
type Log struct {
	entries []model.Entry
	entropy *rand.Rand
}

// NewLog creates an empty interaction log.
func NewLog() *Log {
	return &Log{
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Append records a new entry and returns it.
func (l *Log) Append(role model.Role, content string) model.Entry {
	now := time.Now().UTC()
	e := model.Entry{
		ID:      ulid.MustNew(ulid.Timestamp(now), l.entropy).String(),
		Role:    role,
		Content: content,
		At:      now,
	}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns a copy of the log in append order.
func (l *Log) Entries() []model.Entry {
	out := make([]model.Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
