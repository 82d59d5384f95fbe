package presence

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Source for development and tests, where no
// Redis is available.
type MemoryStore struct {
	mu     sync.RWMutex
	status map[string]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{status: make(map[string]Status)}
}

func (s *MemoryStore) SetOnline(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[userID] = Status{UserID: userID, IsOnline: true, LastSeen: time.Now()}
	return nil
}

func (s *MemoryStore) SetOffline(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[userID] = Status{UserID: userID, IsOnline: false, LastSeen: time.Now()}
	return nil
}

func (s *MemoryStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[userID].IsOnline, nil
}

func (s *MemoryStore) GetPresence(ctx context.Context, userID string) (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.status[userID]; ok {
		return st, nil
	}
	return Status{UserID: userID, IsOnline: false}, nil
}

func (s *MemoryStore) OnlineUsers(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var online []string
	for id, st := range s.status {
		if st.IsOnline {
			online = append(online, id)
		}
	}
	sort.Strings(online)
	return online, nil
}
