package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"textsum/internal/domain"
	"textsum/internal/port"
)

// MemoryStore is a port.HistoryStore that keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.SummaryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.SummaryRecord),
	}
}

func (s *MemoryStore) Put(rec domain.SummaryRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	return rec.ID, nil
}

func (s *MemoryStore) Get(id string) (domain.SummaryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.SummaryRecord{}, fmt.Errorf("%w: %s", port.ErrRecordNotFound, id)
	}
	return rec, nil
}

func (s *MemoryStore) List(limit int) ([]domain.SummaryRecord, error) {
	s.mu.RLock()
	records := make([]domain.SummaryRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", port.ErrRecordNotFound, id)
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.SummaryRecord)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
