package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ssargent/embedis/pkg/codec"
	"github.com/ssargent/embedis/pkg/medium"
)

// KeyValueStore keeps string key/value pairs inside [begin, end) of a medium.
// Entries grow from end toward begin; every lookup rescans from end.
//
// KeyValueStore is not safe for concurrent use.
type KeyValueStore struct {
	source medium.Medium
	begin  int
	end    int
	logger *slog.Logger
}

// New creates a store over [begin, end) of source. The region is used as is:
// an erased (0xFF) or zeroed region reads as empty.
func New(source medium.Medium, begin, end int, opts ...Option) (*KeyValueStore, error) {
	if begin < 0 || end > source.Size() || end-begin < codec.HeaderSize {
		return nil, fmt.Errorf("%w: [%d, %d) of %d bytes", ErrInvalidRegion, begin, end, source.Size())
	}

	kv := &KeyValueStore{
		source: source,
		begin:  begin,
		end:    end,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(kv)
	}

	return kv, nil
}

// Get returns a copy of the value stored for key.
func (kv *KeyValueStore) Get(key string) (string, bool) {
	entry, found := kv.find(key)
	if !found {
		return "", false
	}
	return entry.Value.Read(kv.source), true
}

// Has reports whether key is stored, without reading its value.
func (kv *KeyValueStore) Has(key string) bool {
	_, found := kv.find(key)
	return found
}

// Set stores value under key. When the entry does not fit the region is left
// untouched and ErrNoSpace is returned. When the final commit fails the new
// entry is already in the medium but may not be durable; the error is returned
// all the same.
func (kv *KeyValueStore) Set(key, value string) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}
	if len(key) > codec.MaxLength || len(value) > codec.MaxLength {
		return ErrValueTooLarge
	}

	var (
		existing codec.Entry
		found    bool
	)
	free := kv.scan(func(entry codec.Entry) bool {
		if !found && entry.Key.Equal(kv.source, key) {
			existing, found = entry, true
		}
		return true
	})

	if found && existing.Value.Len() == len(value) {
		if existing.Value.Equal(kv.source, value) {
			kv.trace("store: value unchanged", slog.String("key", key))
			return nil
		}
		existing.Value.Overwrite(kv.source, value)
		kv.trace("store: value replaced in place", slog.String("key", key), slog.Int("at", existing.Value.Begin))
		return kv.commit()
	}

	available := free - kv.begin
	if found {
		available += existing.Size()
	}

	need := kv.Estimate(key, value)
	kv.trace("store: set", slog.String("key", key), slog.Int("need", need), slog.Int("available", available))
	if need > available {
		return fmt.Errorf("%w: need %d bytes, %d available", ErrNoSpace, need, available)
	}

	if found {
		free = kv.erase(existing, free)
	}

	w := codec.NewWriter(kv.source, kv.begin, free)
	w.WriteEntry(key, value)
	// stale bytes below the new entry must not read as entries
	if w.Remaining() >= codec.HeaderSize {
		w.WriteTerminator()
	}

	return kv.commit()
}

// Delete removes key. It reports false when key was not stored, and false with
// the error when the commit of an erased entry fails.
func (kv *KeyValueStore) Delete(key string) (bool, error) {
	if len(key) == 0 {
		return false, nil
	}

	var (
		existing codec.Entry
		found    bool
	)
	free := kv.scan(func(entry codec.Entry) bool {
		if !found && entry.Key.Equal(kv.source, key) {
			existing, found = entry, true
		}
		return true
	})
	if !found {
		return false, nil
	}

	kv.erase(existing, free)
	if err := kv.commit(); err != nil {
		return false, err
	}
	return true, nil
}

// Foreach calls fn for every entry, newest-written last. fn may read the
// store but must not modify it.
func (kv *KeyValueStore) Foreach(fn func(key, value string)) {
	kv.scan(func(entry codec.Entry) bool {
		fn(entry.Key.Read(kv.source), entry.Value.Read(kv.source))
		return true
	})
}

// Keys returns every stored key in scan order.
func (kv *KeyValueStore) Keys() []string {
	var keys []string
	kv.scan(func(entry codec.Entry) bool {
		keys = append(keys, entry.Key.Read(kv.source))
		return true
	})
	return keys
}

// Count returns the number of entries.
func (kv *KeyValueStore) Count() int {
	count := 0
	kv.scan(func(codec.Entry) bool {
		count++
		return true
	})
	return count
}

// Available returns the free bytes between begin and the lowest entry.
func (kv *KeyValueStore) Available() int {
	free := kv.scan(func(codec.Entry) bool { return true })
	return free - kv.begin
}

// Size returns the capacity of the region.
func (kv *KeyValueStore) Size() int {
	return kv.end - kv.begin
}

// Used returns the bytes taken by entries.
func (kv *KeyValueStore) Used() int {
	return kv.Size() - kv.Available()
}

// Estimate returns the bytes Set(key, value) needs, or 0 for an empty key.
// An empty value reserves two extra bytes so the terminator always fits below
// its zero-length record.
func (kv *KeyValueStore) Estimate(key, value string) int {
	if len(key) == 0 {
		return 0
	}
	if len(value) == 0 {
		return codec.EntrySize(key, value) + codec.HeaderSize
	}
	return codec.EntrySize(key, value)
}

// Stats returns usage figures from a single scan.
func (kv *KeyValueStore) Stats() Stats {
	keys := 0
	free := kv.scan(func(codec.Entry) bool {
		keys++
		return true
	})
	return Stats{
		Keys:      keys,
		Size:      kv.Size(),
		Available: free - kv.begin,
		Used:      kv.end - free,
	}
}

// Region returns the [begin, end) bounds of the store.
func (kv *KeyValueStore) Region() (int, int) {
	return kv.begin, kv.end
}

// Medium returns the backing medium.
func (kv *KeyValueStore) Medium() medium.Medium {
	return kv.source
}

func (kv *KeyValueStore) find(key string) (codec.Entry, bool) {
	var (
		existing codec.Entry
		found    bool
	)
	if len(key) == 0 {
		return existing, false
	}
	kv.scan(func(entry codec.Entry) bool {
		if entry.Key.Equal(kv.source, key) {
			existing, found = entry, true
			return false
		}
		return true
	})
	return existing, found
}

// scan walks entries from end until fn returns false or the entries run out.
// It returns the lowest address of the last entry visited.
func (kv *KeyValueStore) scan(fn func(codec.Entry) bool) int {
	reader := codec.NewReader(kv.source, kv.begin, kv.end)

	free := kv.end
	for {
		entry, ok := reader.NextEntry()
		if !ok {
			return free
		}
		free = entry.Begin()
		if !fn(entry) {
			return free
		}
	}
}

func (kv *KeyValueStore) commit() error {
	if err := kv.source.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}

func (kv *KeyValueStore) trace(msg string, attrs ...slog.Attr) {
	kv.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
}
