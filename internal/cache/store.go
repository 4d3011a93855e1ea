package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

var (
	ErrNotFound   = errors.New("cache: key not found")
	ErrNotStarted = errors.New("cache: store not started")
)

// Config configures one store.
type Config struct {
	Name string
	// Dir holds the Badger files. Ignored when InMemory is set.
	Dir      string
	InMemory bool
	// TTL expires entries after the given duration. Zero keeps them.
	TTL         time.Duration
	GCInterval  time.Duration
	GCThreshold float64
}

// DefaultConfig returns an in-memory configuration named name.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		InMemory:    true,
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
	}
}

// Stats is a point-in-time view of store activity.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Stores  uint64 `json:"stores"`
	Removes uint64 `json:"removes"`
}

// Store is a Badger-backed cache. It implements msc.Service.
type Store struct {
	cfg Config
	log logger.Logger

	mu     sync.RWMutex
	db     *badger.DB
	stopCh chan struct{}
	doneCh chan struct{}

	hits    atomic.Uint64
	misses  atomic.Uint64
	stores  atomic.Uint64
	removes atomic.Uint64
}

// New creates a store. It is opened by Start.
func New(cfg Config, log logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}
	if cfg.GCThreshold <= 0 || cfg.GCThreshold >= 1 {
		cfg.GCThreshold = 0.5
	}
	return &Store{cfg: cfg, log: log.With("cache", cfg.Name)}
}

// Name returns the cache name.
func (s *Store) Name() string { return s.cfg.Name }

// Config returns the store configuration.
func (s *Store) Config() Config { return s.cfg }

// Start opens the database.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}

	var opts badger.Options
	if s.cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if s.cfg.Dir == "" {
			return fmt.Errorf("cache %s: dir is required", s.cfg.Name)
		}
		opts = badger.DefaultOptions(s.cfg.Dir)
	}
	opts.Logger = &badgerLogger{log: s.log}

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("cache %s: open: %w", s.cfg.Name, err)
	}
	s.db = db
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.gcLoop(db, s.stopCh, s.doneCh)

	s.log.Info("cache started", "in_memory", s.cfg.InMemory, "dir", s.cfg.Dir)
	return nil
}

// Stop closes the database.
func (s *Store) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}

	close(s.stopCh)
	select {
	case <-s.doneCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("cache %s: close: %w", s.cfg.Name, err)
	}
	s.log.Info("cache stopped")
	return nil
}

// view runs fn against the open database under the read lock.
func (s *Store) view(fn func(db *badger.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrNotStarted
	}
	return fn(s.db)
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var value []byte
	err := s.view(func(db *badger.DB) error {
		return db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return ErrNotFound
				}
				return err
			}
			value, err = item.ValueCopy(nil)
			return err
		})
	})
	switch {
	case err == nil:
		s.hits.Add(1)
	case errors.Is(err, ErrNotFound):
		s.misses.Add(1)
	}
	return value, err
}

// Put stores value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.view(func(db *badger.DB) error {
		return db.Update(func(txn *badger.Txn) error {
			e := badger.NewEntry([]byte(key), value)
			if s.cfg.TTL > 0 {
				e = e.WithTTL(s.cfg.TTL)
			}
			return txn.SetEntry(e)
		})
	})
	if err == nil {
		s.stores.Add(1)
	}
	return err
}

// Delete removes key. It reports whether the key was present.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var found bool
	err := s.view(func(db *badger.DB) error {
		return db.Update(func(txn *badger.Txn) error {
			if _, err := txn.Get([]byte(key)); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return nil
				}
				return err
			}
			found = true
			return txn.Delete([]byte(key))
		})
	})
	if err == nil && found {
		s.removes.Add(1)
	}
	return found, err
}

// Len counts the live entries whose key starts with prefix.
func (s *Store) Len(ctx context.Context, prefix string) (int, error) {
	n := 0
	err := s.view(func(db *badger.DB) error {
		return db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = []byte(prefix)
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if n%256 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				n++
			}
			return nil
		})
	})
	return n, err
}

// Size returns the on-disk size in bytes of the LSM tree and value log.
func (s *Store) Size() (int64, error) {
	var size int64
	err := s.view(func(db *badger.DB) error {
		lsm, vlog := db.Size()
		size = lsm + vlog
		return nil
	})
	return size, err
}

// Stats returns the activity counters.
func (s *Store) Stats() Stats {
	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Stores:  s.stores.Load(),
		Removes: s.removes.Load(),
	}
}

// gcLoop runs value log GC until stopCh is closed. In-memory stores have no
// value log, so the loop only waits.
func (s *Store) gcLoop(db *badger.DB, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.cfg.InMemory {
				continue
			}
			runs := 0
			for {
				err := db.RunValueLogGC(s.cfg.GCThreshold)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						s.log.Error("value log gc failed", "error", err)
					}
					break
				}
				runs++
			}
			if runs > 0 {
				s.log.Debug("value log gc completed", "rewrites", runs)
			}
		case <-stopCh:
			return
		}
	}
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
type badgerLogger struct {
	log logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
