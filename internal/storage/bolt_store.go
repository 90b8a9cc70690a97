package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	launchBucket     = "launches"
	expiryValueBytes = 8
)

// boltStore implements Store on a single BoltDB bucket of id -> expiry (unix seconds).
type boltStore struct {
	db              *bolt.DB
	now             func() time.Time
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	launchTTL       time.Duration
	cleanupInterval time.Duration
}

func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(launchBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		now:             time.Now,
		launchTTL:       opts.LaunchTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// UseLaunch marks id and reports whether it was already live, in one transaction.
func (b *boltStore) UseLaunch(id string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}
	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var seen bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := launches(tx)
		if err != nil {
			return err
		}
		key := []byte(id)
		if seen, err = liveEntry(bucket, key, now); err != nil {
			return err
		}
		if seen {
			return nil
		}
		return bucket.Put(key, encodeExpiry(now.Add(b.launchTTL)))
	})
	return seen, err
}

func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := launches(tx)
		if err != nil {
			return err
		}
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if expiry, ok := decodeExpiry(v); !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func launches(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(launchBucket))
	if bucket == nil {
		return nil, fmt.Errorf("launch bucket missing")
	}
	return bucket, nil
}

// liveEntry must run inside a writable transaction: stale keys are removed.
func liveEntry(bucket *bolt.Bucket, key []byte, now time.Time) (bool, error) {
	value := bucket.Get(key)
	if value == nil {
		return false, nil
	}
	expiry, ok := decodeExpiry(value)
	if !ok || !expiry.After(now) {
		return false, bucket.Delete(key)
	}
	return true, nil
}

func encodeExpiry(t time.Time) []byte {
	buf := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(buf, uint64(t.Unix()))
	return buf
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
