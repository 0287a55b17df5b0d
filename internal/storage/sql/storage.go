package sqlstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daybook-io/daybook/internal/storage"
	"github.com/daybook-io/daybook/internal/storage/sql/migrations"
	"github.com/daybook-io/daybook/internal/util"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

var ErrConnectionFailed = errors.New("failed to connect")

const dbErrUniqueViolation = "23505"

type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type Storage struct {
	host     string
	port     int
	database string
	username string
	password string
	db       *sqlx.DB
}

func New(config Config) *Storage {
	return &Storage{
		host:     config.Host,
		port:     config.Port,
		database: config.Database,
		username: config.Username,
		password: config.Password,
	}
}

func (s *Storage) Connect(ctx context.Context) error {
	db, err := sqlx.ConnectContext(
		ctx,
		"postgres",
		fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			s.host, s.port, s.database, s.username, s.password),
	)
	if err != nil {
		log.Errorf("failed to connect: %v", err)
		return ErrConnectionFailed
	}
	s.db = db

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) CreateUser(ctx context.Context, u *storage.User) error {
	err := s.db.GetContext(
		ctx,
		&u.ID,
		"INSERT INTO users(email, password_hash, first_name, last_name) "+
			"VALUES($1, $2, $3, $4) RETURNING id",
		u.Email, u.PasswordHash, u.FirstName, u.LastName)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == dbErrUniqueViolation {
		return fmt.Errorf("duplicate email %q: %w", u.Email, storage.ErrDuplicateEmail)
	}
	return err
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (storage.User, error) {
	var u storage.User
	err := s.db.GetContext(
		ctx,
		&u,
		"SELECT id, email, password_hash, first_name, last_name, created_at FROM users WHERE email=$1",
		email)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, fmt.Errorf("no user with email %q: %w", email, storage.ErrNotFoundUser)
	}
	return u, err
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (storage.User, error) {
	var u storage.User
	err := s.db.GetContext(
		ctx,
		&u,
		"SELECT id, email, password_hash, first_name, last_name, created_at FROM users WHERE id=$1",
		id)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, fmt.Errorf("no user with id %d: %w", id, storage.ErrNotFoundUser)
	}
	return u, err
}

func (s *Storage) UpdateUserPassword(ctx context.Context, email string, passwordHash string) error {
	var found bool
	err := s.db.GetContext(
		ctx,
		&found,
		"UPDATE users SET password_hash=$2 WHERE email=$1 RETURNING TRUE",
		email, passwordHash)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !found) {
		return fmt.Errorf("no user with email %q: %w", email, storage.ErrNotFoundUser)
	}
	return err
}

func (s *Storage) AddEvent(ctx context.Context, e *storage.Event) error {
	return s.db.GetContext(
		ctx,
		&e.ID,
		"INSERT INTO events(title, start_date, end_date) VALUES($1, $2, $3) RETURNING id",
		e.Title, e.StartDate.UTC(), e.EndDate.UTC())
}

func (s *Storage) UpdateEvent(ctx context.Context, id int64, upd storage.EventUpdate) (storage.Event, error) {
	var e storage.Event
	err := s.db.GetContext(
		ctx,
		&e,
		"UPDATE events SET title=COALESCE($2, title), start_date=COALESCE($3, start_date), "+
			"end_date=COALESCE($4, end_date) WHERE id=$1 RETURNING id, title, start_date, end_date",
		id, upd.Title, toUTC(upd.StartDate), toUTC(upd.EndDate))
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Event{}, fmt.Errorf("failed to update event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	return e, err
}

func (s *Storage) RemoveEvent(ctx context.Context, id int64) error {
	var found bool
	err := s.db.GetContext(ctx, &found, "DELETE FROM events WHERE id=$1 RETURNING TRUE", id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !found) {
		return fmt.Errorf("failed to remove event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	return err
}

func (s *Storage) ListEvents(ctx context.Context) ([]storage.Event, error) {
	var events []storage.Event
	err := s.db.SelectContext(
		ctx,
		&events,
		"SELECT id, title, start_date, end_date FROM events ORDER BY id")
	return events, err
}

func (s *Storage) GetEventsForDay(ctx context.Context, date time.Time) ([]storage.Event, error) {
	dayStart := util.TruncateToDay(date)
	dayEnd := dayStart.Add(24 * time.Hour)
	var events []storage.Event
	err := s.db.SelectContext(
		ctx,
		&events,
		"SELECT id, title, start_date, end_date FROM events "+
			"WHERE start_date<$2 AND end_date>=$1 ORDER BY id",
		dayStart, dayEnd)
	return events, err
}

// Select in range [from:to).
func (s *Storage) GetEventsStartingBetween(ctx context.Context, from time.Time, to time.Time) ([]storage.Event, error) {
	var events []storage.Event
	err := s.db.SelectContext(
		ctx,
		&events,
		"SELECT id, title, start_date, end_date FROM events "+
			"WHERE start_date>=$1 AND start_date<$2 ORDER BY id",
		from, to)
	return events, err
}

func (s *Storage) PurgeEndedBefore(ctx context.Context, t time.Time) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE end_date < $1", t)
	return err
}

func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
