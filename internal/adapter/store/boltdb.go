package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"textsum/internal/domain"
	"textsum/internal/port"
)

var (
	bucketHistory = []byte("history")
	bucketByTime  = []byte("history_by_time")
	bucketMeta    = []byte("meta")
)

// BoltStore is a port.HistoryStore backed by a single bbolt file.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketHistory, bucketByTime, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

// Put stores rec, assigning an ID and creation time when missing.
func (s *BoltStore) Put(rec domain.SummaryRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		history := tx.Bucket(bucketHistory)
		byTime := tx.Bucket(bucketByTime)

		if old := history.Get([]byte(rec.ID)); old != nil {
			var prev domain.SummaryRecord
			if err := json.Unmarshal(old, &prev); err == nil {
				if err := byTime.Delete(timeKey(prev.CreatedAt, prev.ID)); err != nil {
					return err
				}
			}
		}

		if err := history.Put([]byte(rec.ID), data); err != nil {
			return err
		}
		return byTime.Put(timeKey(rec.CreatedAt, rec.ID), []byte(rec.ID))
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (s *BoltStore) Get(id string) (domain.SummaryRecord, error) {
	var rec domain.SummaryRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketHistory).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", port.ErrRecordNotFound, id)
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

// List walks the time index backwards so the newest records come first.
func (s *BoltStore) List(limit int) ([]domain.SummaryRecord, error) {
	var records []domain.SummaryRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		history := tx.Bucket(bucketHistory)
		c := tx.Bucket(bucketByTime).Cursor()
		for k, id := c.Last(); k != nil; k, id = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			data := history.Get(id)
			if data == nil {
				continue
			}
			var rec domain.SummaryRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}

func (s *BoltStore) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		history := tx.Bucket(bucketHistory)
		data := history.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", port.ErrRecordNotFound, id)
		}
		var rec domain.SummaryRecord
		if err := json.Unmarshal(data, &rec); err == nil {
			if err := tx.Bucket(bucketByTime).Delete(timeKey(rec.CreatedAt, rec.ID)); err != nil {
				return err
			}
		}
		return history.Delete([]byte(id))
	})
}

// Count returns the number of stored records.
func (s *BoltStore) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketHistory).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// timeKey orders records by creation time, then ID.
func timeKey(t time.Time, id string) []byte {
	key := make([]byte, 8, 8+len(id))
	binary.BigEndian.PutUint64(key, uint64(t.UnixNano()))
	return append(key, id...)
}
