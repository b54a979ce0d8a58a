package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
)

// MemoryStore is a thread-safe in-memory user and log store for tests and
// local development. Callers always receive copies.
type MemoryStore struct {
	mu sync.RWMutex

	users      map[string]*models.User
	nextUserID int64

	logs []models.LogEntry

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.User),
		now:   time.Now,
	}
}

func (m *MemoryStore) CreateUser(_ context.Context, username, passwordHash string, role models.Role) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[username]; exists {
		return nil, ErrUserExists
	}
	m.nextUserID++
	u := &models.User{
		ID:           m.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    m.now().UTC(),
	}
	m.users[username] = u

	cp := *u
	return &cp, nil
}

func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// DeleteUser removes a user. The API never deletes users; this exists so
// tests can model an account removed by an operator.
func (m *MemoryStore) DeleteUser(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, username)
}

func (m *MemoryStore) InsertLog(_ context.Context, e *models.LogEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = strconv.Itoa(len(m.logs) + 1)
	e.Timestamp = m.now().UTC()
	m.logs = append(m.logs, *e)
	return e.ID, nil
}

func (m *MemoryStore) ListLogs(_ context.Context) ([]models.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.LogEntry, len(m.logs))
	copy(out, m.logs)
	return out, nil
}
