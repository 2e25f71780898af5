// Package backupsink persists every accepted MockRuleDescriptor to an
// embedded bbolt database, keyed by fingerprint, as an optional append-only
// audit trail independent of the mock server's own state. It is grounded on
// the teacher's bboltCache (internal/anonymizer/cache.go): same
// open-or-create-with-bucket pattern, same bbolt.Update/View usage — but
// repurposed from a value-cache (overwrite semantics, used for Ollama
// lookups) into a write-once record store (a fingerprint is written once;
// later writes to the same key are ignored without error instead of
// replacing history), since the backup sink's job is audit, not caching.
package backupsink

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/meshcap/sanitizer-pipeline/internal/logger"
)

const bucketName = "installed_descriptors"

// Sink is a bbolt-backed append-only store. Nil is a valid *Sink (the
// backup sink is optional per spec.md §6); all methods are no-ops on a nil
// receiver.
type Sink struct {
	db  *bolt.DB
	log *logger.Logger
}

// Open opens (or creates) the bbolt database at path and ensures its bucket
// exists. If path is empty, Open returns (nil, nil): the backup sink is
// disabled, and callers should treat a nil *Sink as "no backup configured".
func Open(path string, log *logger.Logger) (*Sink, error) {
	if path == "" {
		return nil, nil
	}
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("backupsink: open %q: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("backupsink: create bucket: %w", err)
	}
	return &Sink{db: db, log: log}, nil
}

// Append stores raw under fingerprint if it is not already present. A
// repeated fingerprint is a no-op (write-once), consistent with the Queue's
// at-least-once redelivery not being double-counted in the audit trail.
func (s *Sink) Append(fingerprint string, raw []byte) error {
	if s == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b.Get([]byte(fingerprint)) != nil {
			return nil
		}
		return b.Put([]byte(fingerprint), raw)
	})
}

// Get returns the raw bytes stored under fingerprint, if any.
func (s *Sink) Get(fingerprint string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		v := b.Get([]byte(fingerprint))
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		if s.log != nil {
			s.log.Warnf("get", "backupsink read error: %v", err)
		}
		return nil, false
	}
	return out, out != nil
}

// Close closes the underlying bbolt database.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
