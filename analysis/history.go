package analysis

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Operation kinds recorded in history.
const (
	OpAnalyzeContent  = "analyze_content"
	OpAnalyzeQuestion = "analyze_question"
	OpGenerateAnswer  = "generate_answer"
	OpExtractPersonal = "extract_personal"
)

// HistoryEntry records one pipeline operation.
type HistoryEntry struct {
	ID         string        `json:"id"`
	Operation  string        `json:"operation"`
	UserID     string        `json:"user_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Confidence float64       `json:"confidence,omitempty"`
	Degraded   bool          `json:"degraded,omitempty"`
	CacheHit   bool          `json:"cache_hit,omitempty"`
}

// History is a bounded, mutex-guarded ring of recent operations. When full,
// the oldest entry is overwritten.
type History struct {
	mu      sync.Mutex
	entries []HistoryEntry
	next    int
	filled  bool
}

// NewHistory creates a history bounded to capacity entries. A capacity of
// zero or less falls back to 256.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 256
	}
	return &History{entries: make([]HistoryEntry, capacity)}
}

// Record appends an entry, assigning it an id, and returns the id.
func (h *History) Record(entry HistoryEntry) string {
	entry.ID = uuid.NewString()
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.next] = entry
	h.next++
	if h.next == len(h.entries) {
		h.next = 0
		h.filled = true
	}
	return entry.ID
}

// Recent returns up to n entries, newest first.
func (h *History) Recent(n int) []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	size := h.next
	if h.filled {
		size = len(h.entries)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]HistoryEntry, 0, n)
	for i := 0; i < n; i++ {
		idx := h.next - 1 - i
		if idx < 0 {
			idx += len(h.entries)
		}
		out = append(out, h.entries[idx])
	}
	return out
}

// Stats summarizes the retained entries.
type Stats struct {
	Total     int            `json:"total"`
	Degraded  int            `json:"degraded"`
	CacheHits int            `json:"cache_hits"`
	ByOp      map[string]int `json:"by_operation"`
}

// Stats computes aggregates over everything still in the ring.
func (h *History) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	size := h.next
	if h.filled {
		size = len(h.entries)
	}

	s := Stats{ByOp: make(map[string]int)}
	for i := 0; i < size; i++ {
		e := h.entries[i]
		s.Total++
		if e.Degraded {
			s.Degraded++
		}
		if e.CacheHit {
			s.CacheHits++
		}
		s.ByOp[e.Operation]++
	}
	return s
}
