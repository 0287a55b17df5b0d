package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daybook-io/daybook/internal/auth"
	"github.com/daybook-io/daybook/internal/storage"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login failures do not reveal whether an account exists.
	ErrInvalidCredentials = errors.New("wrong email or password")
	ErrIncorrectDate      = errors.New("incorrect date")
	ErrEmptyTitle         = errors.New("title is required")
)

// EventPatch is a partial event payload with dates still in wire form.
// Nil fields are left untouched.
type EventPatch struct {
	Title     *string
	StartDate *string
	EndDate   *string
}

type App struct {
	storage storage.Storage
	tokens  *auth.TokenManager
}

func New(storage storage.Storage, tokens *auth.TokenManager) *App {
	return &App{storage: storage, tokens: tokens}
}

func (a *App) Register(ctx context.Context, email, password, firstName, lastName string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u := storage.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := a.storage.CreateUser(ctx, &u); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (a *App) Login(ctx context.Context, email, password string) (string, error) {
	u, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFoundUser) {
			log.Debugf("login attempt for unknown email %q", email)
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		log.Debugf("invalid password for user %q", email)
		return "", ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

func (a *App) ResetPassword(ctx context.Context, email, oldPassword, newPassword string) error {
	u, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(oldPassword, u.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return a.storage.UpdateUserPassword(ctx, email, hash)
}

func (a *App) GetProfile(ctx context.Context, userID int64) (storage.Profile, error) {
	u, err := a.storage.GetUserByID(ctx, userID)
	if err != nil {
		return storage.Profile{}, err
	}
	return u.Profile(), nil
}

func (a *App) VerifyToken(token string) (auth.Claims, error) {
	return a.tokens.Verify(token)
}

func (a *App) ListEvents(ctx context.Context) ([]storage.Event, error) {
	return a.storage.ListEvents(ctx)
}

func (a *App) CreateEvent(ctx context.Context, title, startDate, endDate string) (storage.Event, error) {
	if title == "" {
		return storage.Event{}, ErrEmptyTitle
	}
	start, err := parseDate(startDate)
	if err != nil {
		return storage.Event{}, err
	}
	end, err := parseDate(endDate)
	if err != nil {
		return storage.Event{}, err
	}

	e := storage.Event{Title: title, StartDate: start, EndDate: end}
	if err := a.storage.AddEvent(ctx, &e); err != nil {
		return storage.Event{}, err
	}
	return e, nil
}

func (a *App) UpdateEvent(ctx context.Context, id int64, patch EventPatch) (storage.Event, error) {
	upd := storage.EventUpdate{Title: patch.Title}
	if patch.StartDate != nil {
		start, err := parseDate(*patch.StartDate)
		if err != nil {
			return storage.Event{}, err
		}
		upd.StartDate = &start
	}
	if patch.EndDate != nil {
		end, err := parseDate(*patch.EndDate)
		if err != nil {
			return storage.Event{}, err
		}
		upd.EndDate = &end
	}
	return a.storage.UpdateEvent(ctx, id, upd)
}

func (a *App) RemoveEvent(ctx context.Context, id int64) error {
	return a.storage.RemoveEvent(ctx, id)
}

func (a *App) GetEventsForDay(ctx context.Context, date time.Time) ([]storage.Event, error) {
	return a.storage.GetEventsForDay(ctx, date)
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", value, ErrIncorrectDate)
	}
	return t, nil
}
