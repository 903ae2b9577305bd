package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned when no receiver is stored under a MAC.
var ErrNotFound = errors.New("inventory: receiver not found")

// Receiver is one known device: its discovery identity plus the last
// custom names learned from it. The MAC is the stable key; hosts move
// with DHCP.
type Receiver struct {
	MAC      string            `msgpack:"mac"`
	Model    string            `msgpack:"model"`
	Host     string            `msgpack:"host"`
	Port     int               `msgpack:"port"`
	Region   string            `msgpack:"region"`
	LastSeen time.Time         `msgpack:"last_seen"`
	Names    map[string]string `msgpack:"names,omitempty"` // input code -> custom name
}

// Options configures the store.
type Options struct {
	// Dir is the directory for data files. Required unless InMemory.
	Dir string

	// InMemory runs the store without disk persistence. Useful for
	// testing with the real engine.
	InMemory bool

	// Logger receives badger's warnings and errors. Default is
	// slog.Default(). Info and debug chatter is dropped either way.
	Logger *slog.Logger
}

// Store is a persistent receiver inventory backed by BadgerDB, with
// msgpack-encoded records under "rcvr:<mac>" keys.
type Store struct {
	db *badger.DB
}

// Open opens or creates the inventory.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("inventory: Options.Dir is required for on-disk mode")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{log: opts.Logger})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("inventory: open: %w", err)
	}
	return &Store{db: db}, nil
}

func receiverKey(mac string) []byte {
	return []byte("rcvr:" + strings.ToUpper(strings.TrimSpace(mac)))
}

// Put upserts a receiver by MAC. A zero LastSeen is stamped with the
// current time.
func (s *Store) Put(_ context.Context, rec Receiver) error {
	if strings.TrimSpace(rec.MAC) == "" {
		return errors.New("inventory: receiver has no MAC")
	}
	rec.MAC = strings.ToUpper(strings.TrimSpace(rec.MAC))
	if rec.LastSeen.IsZero() {
		rec.LastSeen = time.Now()
	}

	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("inventory: encode %s: %w", rec.MAC, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(receiverKey(rec.MAC), data)
	})
}

// Get returns the receiver stored under a MAC.
func (s *Store) Get(_ context.Context, mac string) (Receiver, error) {
	var rec Receiver
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(receiverKey(mac))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Receiver{}, ErrNotFound
	}
	if err != nil {
		return Receiver{}, fmt.Errorf("inventory: get %s: %w", mac, err)
	}
	return rec, nil
}

// List returns every stored receiver in MAC order.
func (s *Store) List(_ context.Context) ([]Receiver, error) {
	prefix := []byte("rcvr:")
	var out []Receiver

	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Receiver
			err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].MAC < out[j].MAC })
	return out, nil
}

// SetNames replaces the stored custom names of a receiver with a fresh
// query result and bumps LastSeen.
func (s *Store) SetNames(_ context.Context, mac string, names map[string]string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(receiverKey(mac))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var rec Receiver
		if err := item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}

		rec.Names = names
		rec.LastSeen = time.Now()

		data, err := msgpack.Marshal(&rec)
		if err != nil {
			return err
		}
		return txn.Set(receiverKey(mac), data)
	})
}

// Delete removes a receiver. Deleting an absent MAC is not an error.
func (s *Store) Delete(_ context.Context, mac string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(receiverKey(mac))
	})
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's complaints into slog and drops the rest.
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{}) {
	l.log.Error("inventory: badger: " + strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (l badgerLogger) Warningf(f string, v ...interface{}) {
	l.log.Warn("inventory: badger: " + strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (l badgerLogger) Infof(string, ...interface{})  {}
func (l badgerLogger) Debugf(string, ...interface{}) {}
