package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"textsum/config"
	"textsum/internal/domain"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 2

var (
	keySchemaVersion = []byte("schema_version")
	keyConfigHash    = []byte("config_hash")
)

// SchemaInfo stores schema version and the hash of the settings that shaped
// the stored summaries.
type SchemaInfo struct {
	Version    int    `json:"version"`
	ConfigHash string `json:"config_hash"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (s *BoltStore) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}

		if versionData := b.Get(keySchemaVersion); versionData != nil {
			if err := json.Unmarshal(versionData, &info.Version); err != nil {
				info.Version = 1
			}
		}
		if hashData := b.Get(keyConfigHash); hashData != nil {
			info.ConfigHash = string(hashData)
		}
		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (s *BoltStore) SetSchemaInfo(info *SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)

		versionData, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, versionData); err != nil {
			return err
		}
		return b.Put(keyConfigHash, []byte(info.ConfigHash))
	})
}

// ComputeConfigHash hashes the settings that change what a summary looks like.
func ComputeConfigHash(cfg *config.Config) string {
	relevant := struct {
		Model                string  `json:"model"`
		Strategy             string  `json:"strategy"`
		Template             string  `json:"template"`
		LongTextThreshold    int     `json:"long_text_threshold"`
		ChunkChars           int     `json:"chunk_chars"`
		ResummarizeThreshold int     `json:"resummarize_threshold"`
		Similarity           float64 `json:"similarity"`
		Provider             string  `json:"provider"`
	}{
		Model:                cfg.Summarize.DefaultModel,
		Strategy:             cfg.Summarize.Strategy,
		Template:             cfg.Summarize.PromptTemplate,
		LongTextThreshold:    cfg.Summarize.LongTextThreshold,
		ChunkChars:           cfg.Summarize.ChunkChars,
		ResummarizeThreshold: cfg.Summarize.ResummarizeThreshold,
		Similarity:           cfg.Postprocess.SimilarityThreshold,
		Provider:             cfg.Inference.Provider,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsMigration bool
	// Unreadable is set when the file was written by a newer version.
	Unreadable bool
	// ConfigChanged is set when stored summaries came from other settings.
	ConfigChanged bool
	OldVersion    int
	NewVersion    int
	Reason        string
}

// CheckMigration checks if a schema migration is needed.
func (s *BoltStore) CheckMigration(cfg *config.Config) (*MigrationResult, error) {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}

	switch {
	case info.Version == 0:
		result.NeedsMigration = true
		result.Reason = "initializing schema version"
	case info.Version < CurrentSchemaVersion:
		result.NeedsMigration = true
		result.Reason = fmt.Sprintf("schema upgrade from v%d to v%d", info.Version, CurrentSchemaVersion)
	case info.Version > CurrentSchemaVersion:
		result.Unreadable = true
		result.Reason = fmt.Sprintf("database created by newer version (v%d > v%d)", info.Version, CurrentSchemaVersion)
		return result, nil
	}

	if info.ConfigHash != "" && info.ConfigHash != ComputeConfigHash(cfg) {
		result.ConfigChanged = true
		if result.Reason == "" {
			result.Reason = "summarize configuration changed"
		}
	}

	return result, nil
}

// Migrate performs any necessary schema migrations.
func (s *BoltStore) Migrate(cfg *config.Config) error {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return err
	}
	if info.Version > CurrentSchemaVersion {
		return fmt.Errorf("database created by newer version (v%d > v%d)", info.Version, CurrentSchemaVersion)
	}

	for v := info.Version; v < CurrentSchemaVersion; v++ {
		if err := s.runMigration(v, v+1); err != nil {
			return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
		}
	}

	return s.SetSchemaInfo(&SchemaInfo{
		Version:    CurrentSchemaVersion,
		ConfigHash: ComputeConfigHash(cfg),
	})
}

// runMigration runs a specific version migration.
func (s *BoltStore) runMigration(from, to int) error {
	switch {
	case from == 1 && to == 2:
		// v1 files only had the history bucket; build the time index from it.
		return s.db.Update(func(tx *bbolt.Tx) error {
			byTime, err := tx.CreateBucketIfNotExists(bucketByTime)
			if err != nil {
				return err
			}
			return tx.Bucket(bucketHistory).ForEach(func(k, v []byte) error {
				var rec domain.SummaryRecord
				if err := json.Unmarshal(v, &rec); err != nil {
					return err
				}
				return byTime.Put(timeKey(rec.CreatedAt, rec.ID), k)
			})
		})
	default:
		return nil
	}
}

// Clear removes every record, keeping schema info.
func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketHistory, bucketByTime} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}
