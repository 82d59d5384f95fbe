package directory

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/harshitjain593/workree-chat/internal/domain"
	chaterrors "github.com/harshitjain593/workree-chat/pkg/errors"
)

// Directory is the user-lookup collaborator backing "start new conversation"
// search. It mirrors the marketplace profile service: an index of users the
// chat service reads but does not own.
type Directory struct {
	mu    sync.RWMutex
	users map[string]domain.Participant
}

func New() *Directory {
	return &Directory{users: make(map[string]domain.Participant)}
}

// Seed replaces the index contents.
func (d *Directory) Seed(users []domain.Participant) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = make(map[string]domain.Participant, len(users))
	for _, u := range users {
		d.users[u.ID] = u
	}
}

// LoadSeedFile seeds the directory from a JSON array of participants.
func (d *Directory) LoadSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var users []domain.Participant
	if err := json.Unmarshal(data, &users); err != nil {
		return err
	}
	d.Seed(users)
	return nil
}

// GetByID returns the user with the given id.
func (d *Directory) GetByID(ctx context.Context, id string) (domain.Participant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return domain.Participant{}, chaterrors.ErrNotFound
	}
	return u, nil
}

// Search matches query case-insensitively against user names and emails.
// An empty query matches nobody.
func (d *Directory) Search(ctx context.Context, query string) ([]domain.Participant, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	var matches []domain.Participant
	for _, u := range d.users {
		if strings.Contains(strings.ToLower(u.Name), query) ||
			strings.Contains(strings.ToLower(u.Email), query) {
			matches = append(matches, u)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches, nil
}

// Len returns the number of indexed users.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}
