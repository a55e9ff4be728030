package memstore

import (
	"errors"
	"testing"
	"time"

	"textsum/internal/domain"
	"textsum/internal/port"
)

var _ port.HistoryStore = (*MemoryStore)(nil)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()

	id, err := s.Put(domain.SummaryRecord{Source: "a.txt", Summary: "short."})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Summary != "short." {
		t.Errorf("expected summary short., got %s", got.Summary)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		if _, err := s.Put(domain.SummaryRecord{Source: name, CreatedAt: base.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Source != "third" || got[1].Source != "second" {
		t.Errorf("expected third, second; got %s, %s", got[0].Source, got[1].Source)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	id, _ := s.Put(domain.SummaryRecord{Source: "a.txt"})

	if err := s.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(id); !errors.Is(err, port.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
	if err := s.Delete(id); !errors.Is(err, port.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound on second delete, got %v", err)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	s := NewMemoryStore()
	s.Put(domain.SummaryRecord{Source: "a.txt"})
	s.Put(domain.SummaryRecord{Source: "b.txt"})

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	records, _ := s.List(0)
	if len(records) != 0 {
		t.Errorf("expected empty store after clear, got %d", len(records))
	}
	if _, err := s.Put(domain.SummaryRecord{Source: "c.txt"}); err != nil {
		t.Errorf("expected store to stay usable after clear, got %v", err)
	}
}
