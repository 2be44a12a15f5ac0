package analysis

import (
	"fmt"
	"testing"
)

func TestHistory_RecordAssignsIDs(t *testing.T) {
	h := NewHistory(4)
	id1 := h.Record(HistoryEntry{Operation: OpAnalyzeContent})
	id2 := h.Record(HistoryEntry{Operation: OpAnalyzeContent})
	if id1 == "" || id1 == id2 {
		t.Error("Each entry should get a unique id")
	}
}

func TestHistory_RecentNewestFirst(t *testing.T) {
	h := NewHistory(8)
	for i := 0; i < 3; i++ {
		h.Record(HistoryEntry{Operation: fmt.Sprintf("op-%d", i)})
	}

	got := h.Recent(0)
	if len(got) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(got))
	}
	if got[0].Operation != "op-2" || got[2].Operation != "op-0" {
		t.Errorf("Entries should be newest first: %v", got)
	}
}

func TestHistory_RingOverwritesOldest(t *testing.T) {
	h := NewHistory(2)
	for i := 0; i < 5; i++ {
		h.Record(HistoryEntry{Operation: fmt.Sprintf("op-%d", i)})
	}

	got := h.Recent(0)
	if len(got) != 2 {
		t.Fatalf("Ring should retain capacity entries, got %d", len(got))
	}
	if got[0].Operation != "op-4" || got[1].Operation != "op-3" {
		t.Errorf("Ring should keep the newest entries: %v", got)
	}
}

func TestHistory_Stats(t *testing.T) {
	h := NewHistory(8)
	h.Record(HistoryEntry{Operation: OpAnalyzeContent, Degraded: true})
	h.Record(HistoryEntry{Operation: OpAnalyzeQuestion, CacheHit: true})
	h.Record(HistoryEntry{Operation: OpAnalyzeQuestion})

	s := h.Stats()
	if s.Total != 3 || s.Degraded != 1 || s.CacheHits != 1 {
		t.Errorf("Unexpected stats: %+v", s)
	}
	if s.ByOp[OpAnalyzeQuestion] != 2 {
		t.Errorf("Expected 2 question operations, got %d", s.ByOp[OpAnalyzeQuestion])
	}
}
