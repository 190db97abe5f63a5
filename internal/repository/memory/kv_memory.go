package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"tableside/internal/repository"
)

// ErrQuotaExceeded signals that a Set would push the store past its byte
// quota, mirroring a full storage backend.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KV is an in-process backend with an optional byte quota. It doubles as
// the test stand-in for a quota-limited persistent store; quota <= 0
// means unlimited.
type KV struct {
	mu    sync.Mutex
	m     map[string]string
	quota int
	used  int
}

func NewKV(quota int) *KV {
	return &KV{m: make(map[string]string), quota: quota}
}

var _ repository.KV = (*KV)(nil)

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	next := k.used - len(k.m[key]) + len(value)
	if k.quota > 0 && next > k.quota {
		return ErrQuotaExceeded
	}
	k.m[key] = value
	k.used = next
	return nil
}

func (k *KV) Del(ctx context.Context, keys ...string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		k.used -= len(k.m[key])
		delete(k.m, key)
	}
	return nil
}

func (k *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	var out []string
	for key := range k.m {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out, nil
}

// Len reports the number of stored entries.
func (k *KV) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.m)
}
