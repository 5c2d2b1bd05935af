package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"voicenote/internal/app/model"
	"voicenote/internal/app/repository"
)

type memoryStore struct {
	mu       sync.Mutex
	users    map[string]model.User
	accounts map[string]string
	sessions map[string]model.Session
	getCalls int
	// beforeDelete runs inside DeleteSession while the row still exists.
	beforeDelete func(token string)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[string]model.User),
		accounts: make(map[string]string),
		sessions: make(map[string]model.Session),
	}
}

func (m *memoryStore) UpsertOAuthUser(_ context.Context, user model.User, account model.Account) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := account.Provider + "/" + account.ProviderAccountID
	id, ok := m.accounts[key]
	if !ok {
		id = uuid.NewString()
		m.accounts[key] = id
	}
	user.ID = id
	m.users[id] = user
	return &user, nil
}

func (m *memoryStore) GetUser(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memoryStore) CreateSession(_ context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionToken] = s
	return nil
}

func (m *memoryStore) GetSession(_ context.Context, token string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	s, ok := m.sessions[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *memoryStore) DeleteSession(_ context.Context, token string) error {
	if m.beforeDelete != nil {
		m.beforeDelete(token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (c *memoryCache) Get(_ context.Context, token string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[token]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, token, userID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = userID
	c.ttls[token] = ttl
	return nil
}

func (c *memoryCache) Delete(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
	return nil
}
