package badger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/humidorapp/humidor-server/internal/store"
)

// Entity encodes one record type under a key prefix. All methods run inside
// a caller-owned transaction so several entities can change atomically.
type Entity[T any] struct {
	prefix string
}

// NewEntity creates an Entity whose keys start with prefix + ":".
func NewEntity[T any](prefix string) Entity[T] {
	return Entity[T]{prefix: prefix + ":"}
}

// Key joins parts under the entity prefix. Every part but the last is
// written as {len}.{part}, so an owner id containing ':' cannot reach into
// another owner's range. Key(owner, "") is the scan prefix for owner.
func (e Entity[T]) Key(parts ...string) []byte {
	k := e.prefix
	for i, p := range parts {
		if i == len(parts)-1 {
			k += p
			break
		}
		k += strconv.Itoa(len(p)) + "." + p + ":"
	}
	return []byte(k)
}

// Get decodes the value at key, returning store.ErrNotFound if absent.
func (e Entity[T]) Get(txn *badger.Txn, key []byte) (*T, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	var v T
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &v)
	}); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

// Exists reports whether key is present.
func (e Entity[T]) Exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	return true, nil
}

// Set encodes v at key.
func (e Entity[T]) Set(txn *badger.Txn, key []byte, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := txn.Set(key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Any reports whether at least one key starts with prefix.
func (e Entity[T]) Any(txn *badger.Txn, prefix []byte) bool {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()
	it.Rewind()
	return it.Valid()
}

// Scan decodes every value whose key starts with prefix, in key order.
func (e Entity[T]) Scan(txn *badger.Txn, prefix []byte) ([]T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	out := []T{}
	for it.Rewind(); it.Valid(); it.Next() {
		var v T
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		}); err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		out = append(out, v)
	}
	return out, nil
}
