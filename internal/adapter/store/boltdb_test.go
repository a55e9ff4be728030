package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"

	"textsum/config"
	"textsum/internal/domain"
	"textsum/internal/port"
)

var _ port.HistoryStore = (*BoltStore)(nil)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func record(source string, at time.Time) domain.SummaryRecord {
	return domain.SummaryRecord{
		Source:    source,
		CreatedAt: at,
		ModelKey:  domain.ModelKey{ModelID: "m", Language: "en"},
		Strategy:  domain.StrategyDirect,
		Summary:   "summary of " + source,
	}
}

func TestPutAssignsID(t *testing.T) {
	s := openTestStore(t)

	id, err := s.Put(record("a.txt", time.Time{}))
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected generated ID")
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != "a.txt" {
		t.Errorf("expected source a.txt, got %s", got.Source)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Get("nope"); !errors.Is(err, port.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
	if err := s.Delete("nope"); !errors.Is(err, port.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		if _, err := s.Put(record(name, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].Source != "third" || all[2].Source != "first" {
		t.Errorf("expected newest first, got %s..%s", all[0].Source, all[2].Source)
	}

	limited, err := s.List(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 records, got %d", len(limited))
	}
}

func TestPutOverwriteKeepsOneIndexEntry(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rec := record("a.txt", base)
	rec.ID = "fixed"
	if _, err := s.Put(rec); err != nil {
		t.Fatal(err)
	}
	rec.CreatedAt = base.Add(time.Hour)
	rec.Summary = "updated"
	if _, err := s.Put(rec); err != nil {
		t.Fatal(err)
	}

	all, err := s.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 record, got %d", len(all))
	}
	if all[0].Summary != "updated" {
		t.Errorf("expected updated summary, got %s", all[0].Summary)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	id, err := s.Put(record("a.txt", time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(id); err != nil {
		t.Fatal(err)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected empty store, got %d", n)
	}
	all, _ := s.List(0)
	if len(all) != 0 {
		t.Errorf("expected empty list, got %d", len(all))
	}
}

func TestMigrate_FreshStore(t *testing.T) {
	s := openTestStore(t)
	cfg := config.DefaultConfig()

	result, err := s.CheckMigration(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !result.NeedsMigration {
		t.Error("expected fresh store to need migration")
	}

	if err := s.Migrate(cfg); err != nil {
		t.Fatal(err)
	}

	info, err := s.GetSchemaInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.Version != CurrentSchemaVersion {
		t.Errorf("expected version %d, got %d", CurrentSchemaVersion, info.Version)
	}

	result, err = s.CheckMigration(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.NeedsMigration || result.ConfigChanged {
		t.Errorf("expected up-to-date store, got %+v", result)
	}
}

func TestMigrate_ConfigChanged(t *testing.T) {
	s := openTestStore(t)
	cfg := config.DefaultConfig()
	if err := s.Migrate(cfg); err != nil {
		t.Fatal(err)
	}

	cfg.Summarize.ChunkChars = 2000
	result, err := s.CheckMigration(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !result.ConfigChanged {
		t.Error("expected config change to be reported")
	}
}

func TestMigrate_NewerVersion(t *testing.T) {
	s := openTestStore(t)
	if err := s.SetSchemaInfo(&SchemaInfo{Version: CurrentSchemaVersion + 1}); err != nil {
		t.Fatal(err)
	}

	result, err := s.CheckMigration(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Unreadable {
		t.Error("expected newer schema to be unreadable")
	}
	if err := s.Migrate(config.DefaultConfig()); err == nil {
		t.Error("expected Migrate to refuse a newer schema")
	}
}

func TestMigrate_V1BuildsTimeIndex(t *testing.T) {
	s := openTestStore(t)

	rec := record("legacy.txt", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	rec.ID = "legacy"
	err := s.DB().Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketHistory).Put([]byte(rec.ID), data)
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetSchemaInfo(&SchemaInfo{Version: 1}); err != nil {
		t.Fatal(err)
	}

	if all, _ := s.List(0); len(all) != 0 {
		t.Fatalf("expected unindexed record to be invisible, got %d", len(all))
	}

	if err := s.Migrate(config.DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	all, err := s.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != "legacy" {
		t.Errorf("expected migrated record, got %v", all)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	cfg := config.DefaultConfig()
	if err := s.Migrate(cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(record("a.txt", time.Now())); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}

	n, _ := s.Count()
	if n != 0 {
		t.Errorf("expected 0 records after clear, got %d", n)
	}
	info, _ := s.GetSchemaInfo()
	if info.Version != CurrentSchemaVersion {
		t.Errorf("expected schema info to survive clear, got %d", info.Version)
	}
}
