// Package store wraps the persisted ordered key-value store the Writer
// fills and the Resolver reads from. It is a thin layer over
// github.com/cockroachdb/pebble, tuned per the recommended hints in the
// index design: a multi-gigabyte block cache, bloom filters over the
// geohash-prefix keys, and a large write buffer during build.
package store

import (
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"
	"github.com/pkg/errors"
)

const (
	blockCacheSize  = 3 << 30 // ~3 GiB, per the recommended tuning hints
	writeBufferSize = 1 << 30 // ~1 GiB
	bloomBitsPerKey = 10
)

// Store is a single open handle onto the persisted index, either in
// build (read-write) or serve (read-only) mode.
type Store struct {
	db *pebble.DB
}

// OpenForBuild opens path in read-write mode, creating it if it does not
// already exist. The build command is the only writer during index
// construction; concurrent build+serve against the same path is
// unsupported.
func OpenForBuild(path string) (*Store, error) {
	db, err := pebble.Open(path, buildOptions())
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open store %s for writing", path)
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens path in read-only mode for the serve command.
func OpenReadOnly(path string) (*Store, error) {
	opts := buildOptions()
	opts.ReadOnly = true
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open store %s for reading", path)
	}
	return &Store{db: db}, nil
}

func buildOptions() *pebble.Options {
	opts := &pebble.Options{
		Cache:        pebble.NewCache(blockCacheSize),
		MemTableSize: writeBufferSize,
	}
	opts.Levels = make([]pebble.LevelOptions, 1)
	opts.Levels[0].FilterPolicy = bloom.FilterPolicy(bloomBitsPerKey)
	opts.EnsureDefaults()
	return opts
}

// Set writes a single encoded value at key. Used only during build.
func (s *Store) Set(key string, value []byte) error {
	return errors.Wrap(s.db.Set([]byte(key), value, pebble.NoSync), "store write failed")
}

// Flush forces all buffered writes to stable storage before process exit.
func (s *Store) Flush() error {
	return errors.Wrap(s.db.Flush(), "store flush failed")
}

// Get fetches the raw encoded value for key, reporting found=false rather
// than an error when the key is absent.
func (s *Store) Get(key string) (value []byte, found bool, err error) {
	raw, closer, err := s.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "store read failed for key %q", key)
	}
	defer closer.Close()

	// Copy out: raw is only valid until closer.Close().
	value = make([]byte, len(raw))
	copy(value, raw)
	return value, true, nil
}

// MultiGet fetches every key in keys in order, reporting found=false for
// keys in turn where no value is stored. Used by the batch lookup endpoint
// to perform a single round of reads for all points in a request.
func (s *Store) MultiGet(keys []string) ([][]byte, []bool, error) {
	values := make([][]byte, len(keys))
	found := make([]bool, len(keys))

	for i, key := range keys {
		value, ok, err := s.Get(key)
		if err != nil {
			return nil, nil, err
		}
		values[i] = value
		found[i] = ok
	}

	return values, found, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "error closing store")
}
