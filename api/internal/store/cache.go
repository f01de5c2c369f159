package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// SettingsBackend is the persistent side of CachedSettings.
type SettingsBackend interface {
	Get(ctx context.Context, chatID int64) (Settings, error)
	Upsert(ctx context.Context, s Settings) error
	Delete(ctx context.Context, chatID int64) error
}

// CachedSettings is a read-through cache of chat settings. Writes go to the
// backend first and only then replace the cached copy.
type CachedSettings struct {
	backend SettingsBackend
	c       *cache.Cache
	locks   sync.Map // chatID -> *sync.Mutex
}

func NewCachedSettings(backend SettingsBackend, ttl time.Duration) *CachedSettings {
	return &CachedSettings{
		backend: backend,
		c:       cache.New(ttl, 2*ttl),
	}
}

func key(chatID int64) string { return strconv.FormatInt(chatID, 10) }

func (c *CachedSettings) Get(ctx context.Context, chatID int64) (Settings, error) {
	if v, ok := c.c.Get(key(chatID)); ok {
		return v.(Settings), nil
	}
	s, err := c.backend.Get(ctx, chatID)
	if err != nil {
		return Settings{}, err
	}
	c.c.SetDefault(key(chatID), s)
	return s, nil
}

func (c *CachedSettings) Upsert(ctx context.Context, s Settings) error {
	if err := c.backend.Upsert(ctx, s); err != nil {
		c.c.Delete(key(s.ChatID))
		return err
	}
	s.UpdatedAt = time.Now()
	c.c.SetDefault(key(s.ChatID), s)
	return nil
}

func (c *CachedSettings) Delete(ctx context.Context, chatID int64) error {
	c.c.Delete(key(chatID))
	return c.backend.Delete(ctx, chatID)
}

func (c *CachedSettings) lock(chatID int64) *sync.Mutex {
	mu, _ := c.locks.LoadOrStore(chatID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Update loads, mutates and stores the settings of one chat. Updates of the
// same chat run one at a time.
func (c *CachedSettings) Update(ctx context.Context, chatID int64, fn func(*Settings)) (Settings, error) {
	mu := c.lock(chatID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.Get(ctx, chatID)
	if err != nil {
		return Settings{}, err
	}
	fn(&s)
	s.ChatID = chatID
	if err := c.Upsert(ctx, s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// UserKey implements keys.UserKeys.
func (c *CachedSettings) UserKey(ctx context.Context, chatID int64) (string, error) {
	s, err := c.Get(ctx, chatID)
	if err != nil {
		return "", err
	}
	return s.APIKey, nil
}
