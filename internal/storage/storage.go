package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateEmail = errors.New("user with same email exists")
	ErrNotFoundUser   = errors.New("user not found")
	ErrNotFoundEvent  = errors.New("event not found")
)

type Storage interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error

	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	UpdateUserPassword(ctx context.Context, email string, passwordHash string) error

	AddEvent(ctx context.Context, e *Event) error
	UpdateEvent(ctx context.Context, id int64, upd EventUpdate) (Event, error)
	RemoveEvent(ctx context.Context, id int64) error
	ListEvents(ctx context.Context) ([]Event, error)
	GetEventsForDay(ctx context.Context, date time.Time) ([]Event, error)
	GetEventsStartingBetween(ctx context.Context, from time.Time, to time.Time) ([]Event, error)
	PurgeEndedBefore(ctx context.Context, t time.Time) error
}
