package session

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore keeps encoded sessions in a TTL cache. Reads extend the TTL.
type MemoryStore struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewMemoryStore starts the cache janitor; call Close to stop it.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	cache := ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](ttl),
	)
	go cache.Start()
	return &MemoryStore{cache: cache}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	item := m.cache.Get(id)
	if item == nil {
		return Session{}, ErrNotFound
	}
	return decode(id, item.Value())
}

func (m *MemoryStore) Save(ctx context.Context, s Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(s)
	if err != nil {
		return err
	}
	m.cache.Set(s.ID, data, ttlcache.DefaultTTL)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Delete(id)
	return nil
}

// Len reports the number of live sessions.
func (m *MemoryStore) Len() int { return m.cache.Len() }

// Close stops the janitor.
func (m *MemoryStore) Close() error {
	m.cache.Stop()
	return nil
}
