package objectstore

import (
	"context"
	"iter"
	"slices"
	"strconv"
	"strings"
	"sync"
)

type memObject struct {
	data []byte
	etag string
}

// Memory is a Bucket held in process memory. It is used for tests and local development.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
	version uint64
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Get(ctx context.Context, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.objects[key]
	if !ok {
		return nil, ErrNotExist
	}
	return &Object{Key: key, Data: slices.Clone(o.data), ETag: o.etag}, nil
}

func (m *Memory) Create(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; ok {
		return "", ErrPreconditionFailed
	}
	return m.put(key, data), nil
}

func (m *Memory) Replace(ctx context.Context, key string, data []byte, etag string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.objects[key]
	if !ok {
		return "", ErrNotExist
	}
	if o.etag != etag {
		return "", ErrPreconditionFailed
	}
	return m.put(key, data), nil
}

func (m *Memory) Delete(ctx context.Context, key, etag string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.objects[key]
	if !ok {
		return ErrNotExist
	}
	if o.etag != etag {
		return ErrPreconditionFailed
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) Keys(ctx context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		m.mu.RLock()
		keys := make([]string, 0, len(m.objects))
		for k := range m.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		m.mu.RUnlock()
		slices.Sort(keys)

		for _, k := range keys {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(k, nil) {
				return
			}
		}
	}
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len reports the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// put must be called with mu held.
func (m *Memory) put(key string, data []byte) string {
	m.version++
	etag := strconv.FormatUint(m.version, 10)
	m.objects[key] = memObject{data: slices.Clone(data), etag: etag}
	return etag
}
