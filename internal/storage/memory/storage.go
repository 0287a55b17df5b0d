package memorystorage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/daybook-io/daybook/internal/storage"
)

type Storage struct {
	mu          sync.RWMutex
	users       map[int64]storage.User
	usersByMail map[string]int64
	events      map[int64]storage.Event
	userIDSeq   int64
	eventIDSeq  int64
}

func New() *Storage {
	return &Storage{
		users:       make(map[int64]storage.User),
		usersByMail: make(map[string]int64),
		events:      make(map[int64]storage.Event),
	}
}

func (s *Storage) Connect(_ context.Context) error {
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) CreateUser(_ context.Context, u *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByMail[u.Email]; ok {
		return fmt.Errorf("duplicate email %q: %w", u.Email, storage.ErrDuplicateEmail)
	}
	s.userIDSeq++
	u.ID = s.userIDSeq
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = *u
	s.usersByMail[u.Email] = u.ID
	return nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByMail[email]
	if !ok {
		return storage.User{}, fmt.Errorf("no user with email %q: %w", email, storage.ErrNotFoundUser)
	}
	return s.users[id], nil
}

func (s *Storage) GetUserByID(_ context.Context, id int64) (storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return storage.User{}, fmt.Errorf("no user with id %d: %w", id, storage.ErrNotFoundUser)
	}
	return u, nil
}

func (s *Storage) UpdateUserPassword(_ context.Context, email string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usersByMail[email]
	if !ok {
		return fmt.Errorf("no user with email %q: %w", email, storage.ErrNotFoundUser)
	}
	u := s.users[id]
	u.PasswordHash = passwordHash
	s.users[id] = u
	return nil
}

func (s *Storage) AddEvent(_ context.Context, e *storage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventIDSeq++
	e.ID = s.eventIDSeq
	s.events[e.ID] = *e
	return nil
}

func (s *Storage) UpdateEvent(_ context.Context, id int64, upd storage.EventUpdate) (storage.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return storage.Event{}, fmt.Errorf("failed to update event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	e = upd.Apply(e)
	s.events[id] = e
	return e, nil
}

func (s *Storage) RemoveEvent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return fmt.Errorf("failed to remove event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	delete(s.events, id)
	return nil
}

func (s *Storage) ListEvents(_ context.Context) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]storage.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (s *Storage) GetEventsForDay(_ context.Context, date time.Time) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]storage.Event, 0)
	for _, e := range s.events {
		if e.MatchesDay(date) {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

// Select in range [from:to).
func (s *Storage) GetEventsStartingBetween(_ context.Context, from time.Time, to time.Time) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]storage.Event, 0)
	for _, e := range s.events {
		if !e.StartDate.Before(from) && e.StartDate.Before(to) {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (s *Storage) PurgeEndedBefore(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.events {
		if e.EndDate.Before(t) {
			delete(s.events, id)
		}
	}
	return nil
}
