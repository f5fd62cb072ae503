package session

import (
	"context"
	"errors"
	"path"
	"sync"

	"github.com/shashiranjanraj/kuman/pkg/cache"
	"github.com/shashiranjanraj/kuman/pkg/crypt"
	"github.com/shashiranjanraj/kuman/pkg/storage"
)

// Store persists session key/value pairs between runs.
type Store interface {
	// Get returns the value under key; ok is false when nothing is stored.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ------------------- memory -------------------

// MemoryStore keeps values for the lifetime of the process.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// ------------------- disk -------------------

// DiskStore writes each key as one encrypted file under dir.
type DiskStore struct {
	disk storage.Disk
	dir  string
	box  *crypt.Box
}

func NewDiskStore(disk storage.Disk, dir string, box *crypt.Box) *DiskStore {
	return &DiskStore{disk: disk, dir: dir, box: box}
}

func (s *DiskStore) file(key string) string { return path.Join(s.dir, key) }

func (s *DiskStore) Get(_ context.Context, key string) (string, bool, error) {
	raw, err := s.disk.Get(s.file(key))
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	plain, err := s.box.Decrypt(string(raw))
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}

func (s *DiskStore) Set(_ context.Context, key, value string) error {
	sealed, err := s.box.Encrypt(value)
	if err != nil {
		return err
	}
	return s.disk.Put(s.file(key), []byte(sealed))
}

func (s *DiskStore) Delete(_ context.Context, key string) error {
	return s.disk.Delete(s.file(key))
}

// ------------------- redis -------------------

// RedisStore keeps values in Redis so several console processes share one
// login.
type RedisStore struct {
	c *cache.Redis
}

func NewRedisStore(c *cache.Redis) *RedisStore { return &RedisStore{c: c} }

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.c.Get(ctx, "session:"+key)
	if errors.Is(err, cache.ErrMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.c.Set(ctx, "session:"+key, value, 0)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.c.Del(ctx, "session:"+key)
}
