// Package kvstore provides named durable slots: each key holds one opaque
// value that is replaced as a whole on every Put.
package kvstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("slot not found")
	ErrInvalidKey = errors.New("invalid slot key")
)

// Store is a key-value store whose Put is atomic per key: a reader sees
// either the previous value or the new one, never a partial write.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Close() error
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
