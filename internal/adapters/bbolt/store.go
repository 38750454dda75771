// Package bbolt implements the ports.RefreshLog interface using bbolt (embedded B+ tree).
// Records live in a single "refreshes" bucket keyed by a big-endian sequence
// number, so cursor order is insertion order. Values are JSON-serialized
// ports.RefreshRecord. Writes are transactional: a crash mid-write cannot
// corrupt previously committed records.
//
// The database is opened per operation and closed right after, so the bbolt
// file lock is held for one transaction only. A long-running `watch` and a
// one-shot `status` or `refresh` in another process share the same log.
// Reads take the shared lock; writes take the exclusive one.
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corey/ctxwin/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var bucketRefreshes = []byte("refreshes")

// maxRecords bounds the log; older records are pruned on write.
const maxRecords = 500

// lockTimeout is how long an operation waits for another holder of the file lock.
const lockTimeout = 5 * time.Second

// Store implements ports.RefreshLog backed by bbolt.
type Store struct {
	path string
	mu   sync.Mutex // serializes opens within this process
}

var _ ports.RefreshLog = (*Store)(nil)

// NewStore prepares a bbolt database at the given path, creating the parent
// directory and the file if needed. The file is not kept open.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	s := &Store{path: path}
	if err := s.update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRefreshes)
		return err
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// Close is a no-op: the database is never held open between operations.
func (s *Store) Close() error {
	return nil
}

// update runs fn in a write transaction on a freshly opened database.
func (s *Store) update(fn func(*bolt.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		return fmt.Errorf("bbolt open: %w", err)
	}
	if err := db.Update(fn); err != nil {
		db.Close()
		return err
	}
	return db.Close()
}

// view runs fn in a read-only transaction under the shared file lock.
// A database that does not exist yet reads as empty.
func (s *Store) view(fn func(*bolt.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: lockTimeout, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("bbolt open: %w", err)
	}
	defer db.Close()
	return db.View(fn)
}

// seqKey encodes a sequence number so byte order matches numeric order.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// Record appends one refresh attempt.
func (s *Store) Record(rec ports.RefreshRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal refresh record: %w", err)
	}

	return s.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketRefreshes)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(seqKey(seq), data); err != nil {
			return err
		}
		return prune(b, seq)
	})
}

// prune deletes records more than maxRecords sequence numbers behind newest.
func prune(b *bolt.Bucket, newest uint64) error {
	if newest <= maxRecords {
		return nil
	}
	cutoff := newest - maxRecords

	var stale [][]byte
	c := b.Cursor()
	for k, _ := c.First(); k != nil && binary.BigEndian.Uint64(k) <= cutoff; k, _ = c.Next() {
		stale = append(stale, append([]byte(nil), k...))
	}
	for _, k := range stale {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Last returns the most recent record.
// Returns nil, nil if nothing has been recorded yet.
func (s *Store) Last() (*ports.RefreshRecord, error) {
	recs, err := s.List(1)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

// List returns up to limit records, newest first. limit <= 0 means all.
func (s *Store) List(limit int) ([]ports.RefreshRecord, error) {
	var raw [][]byte

	err := s.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRefreshes)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			// Copy bytes out of the transaction (bbolt slices are only valid within tx)
			buf := make([]byte, len(v))
			copy(buf, v)
			raw = append(raw, buf)
			if limit > 0 && len(raw) == limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recs := make([]ports.RefreshRecord, 0, len(raw))
	for _, data := range raw {
		var rec ports.RefreshRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal refresh record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
