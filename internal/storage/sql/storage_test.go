//go:build sql

package sqlstorage_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/daybook-io/daybook/internal/storage"
	sqlstorage "github.com/daybook-io/daybook/internal/storage/sql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var (
	host     = "127.0.0.1"
	port     = 5532
	database = "testing"
	username = "postgres"
	password = "pas"
)

func TestMain(m *testing.M) {
	pgHost := os.Getenv("POSTGRES_HOST")
	pgPort := os.Getenv("POSTGRES_PORT")
	if pgHost != "" {
		host = pgHost
	}
	if pgPort != "" {
		port, _ = strconv.Atoi(pgPort)
	}

	code := m.Run()
	os.Exit(code)
}

func TestUsers(t *testing.T) {
	t.Run("create and lookup", func(t *testing.T) {
		s := createStorage(t)
		u := storage.User{Email: "ana@example.com", PasswordHash: "hash", FirstName: "Ana", LastName: "Petrova"}

		require.NoError(t, s.CreateUser(context.Background(), &u))
		require.NotZero(t, u.ID)

		byMail, err := s.GetUserByEmail(context.Background(), u.Email)
		require.NoError(t, err)
		require.Equal(t, u.ID, byMail.ID)
		require.Equal(t, "hash", byMail.PasswordHash)

		byID, err := s.GetUserByID(context.Background(), u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, byID.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		s := createStorage(t)
		u := storage.User{Email: "ana@example.com", PasswordHash: "hash"}
		require.NoError(t, s.CreateUser(context.Background(), &u))

		dup := storage.User{Email: "ana@example.com", PasswordHash: "other"}
		require.ErrorIs(t, s.CreateUser(context.Background(), &dup), storage.ErrDuplicateEmail)
	})

	t.Run("unknown user", func(t *testing.T) {
		s := createStorage(t)
		_, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
		require.ErrorIs(t, err, storage.ErrNotFoundUser)
		_, err = s.GetUserByID(context.Background(), 404)
		require.ErrorIs(t, err, storage.ErrNotFoundUser)
	})

	t.Run("update password", func(t *testing.T) {
		s := createStorage(t)
		u := storage.User{Email: "ana@example.com", PasswordHash: "old"}
		require.NoError(t, s.CreateUser(context.Background(), &u))

		require.NoError(t, s.UpdateUserPassword(context.Background(), u.Email, "new"))
		updated, err := s.GetUserByEmail(context.Background(), u.Email)
		require.NoError(t, err)
		require.Equal(t, "new", updated.PasswordHash)

		require.ErrorIs(t,
			s.UpdateUserPassword(context.Background(), "nobody@example.com", "x"),
			storage.ErrNotFoundUser)
	})
}

func TestEvents(t *testing.T) {
	initDate := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("add and list", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Title: "Standup", StartDate: initDate, EndDate: initDate.Add(30 * time.Minute)}

		require.NoError(t, s.AddEvent(context.Background(), &e))
		require.NotZero(t, e.ID)

		events, err := s.ListEvents(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, len(events))
		compareEvents(t, e, events[0])
	})

	t.Run("partial update", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Title: "Standup", StartDate: initDate, EndDate: initDate.Add(30 * time.Minute)}
		require.NoError(t, s.AddEvent(context.Background(), &e))

		title := "Planning"
		updated, err := s.UpdateEvent(context.Background(), e.ID, storage.EventUpdate{Title: &title})
		require.NoError(t, err)
		require.Equal(t, "Planning", updated.Title)
		require.True(t, e.StartDate.Equal(updated.StartDate))
		require.True(t, e.EndDate.Equal(updated.EndDate))

		unchanged, err := s.UpdateEvent(context.Background(), e.ID, storage.EventUpdate{})
		require.NoError(t, err)
		compareEvents(t, updated, unchanged)
	})

	t.Run("update not exist event", func(t *testing.T) {
		s := createStorage(t)
		_, err := s.UpdateEvent(context.Background(), 404, storage.EventUpdate{})
		require.ErrorIs(t, err, storage.ErrNotFoundEvent)
	})

	t.Run("delete event", func(t *testing.T) {
		s := createStorage(t)
		e := storage.Event{Title: "Standup", StartDate: initDate, EndDate: initDate.Add(time.Hour)}
		require.NoError(t, s.AddEvent(context.Background(), &e))

		require.NoError(t, s.RemoveEvent(context.Background(), e.ID))
		require.ErrorIs(t, s.RemoveEvent(context.Background(), e.ID), storage.ErrNotFoundEvent)
	})

	t.Run("events for day includes multi-day spans", func(t *testing.T) {
		s := createStorage(t)
		short := storage.Event{Title: "short", StartDate: initDate, EndDate: initDate.Add(30 * time.Minute)}
		long := storage.Event{
			Title:     "long",
			StartDate: initDate.AddDate(0, 0, -1),
			EndDate:   initDate.AddDate(0, 0, 2),
		}
		require.NoError(t, s.AddEvent(context.Background(), &short))
		require.NoError(t, s.AddEvent(context.Background(), &long))

		events, err := s.GetEventsForDay(context.Background(), time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Equal(t, 2, len(events))

		events, err = s.GetEventsForDay(context.Background(), time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Equal(t, 1, len(events))
		require.Equal(t, "long", events[0].Title)
	})

	t.Run("starting between", func(t *testing.T) {
		s := createStorage(t)
		for i := 0; i < 4; i++ {
			e := storage.Event{
				Title:     "e",
				StartDate: initDate.Add(time.Duration(i) * time.Hour),
				EndDate:   initDate.Add(time.Duration(i+1) * time.Hour),
			}
			require.NoError(t, s.AddEvent(context.Background(), &e))
		}

		events, err := s.GetEventsStartingBetween(
			context.Background(), initDate.Add(time.Hour), initDate.Add(3*time.Hour))
		require.NoError(t, err)
		require.Equal(t, 2, len(events))
	})

	t.Run("purge ended before", func(t *testing.T) {
		s := createStorage(t)
		old := storage.Event{Title: "old", StartDate: initDate.AddDate(-2, 0, 0), EndDate: initDate.AddDate(-2, 0, 1)}
		fresh := storage.Event{Title: "fresh", StartDate: initDate, EndDate: initDate.Add(time.Hour)}
		require.NoError(t, s.AddEvent(context.Background(), &old))
		require.NoError(t, s.AddEvent(context.Background(), &fresh))

		require.NoError(t, s.PurgeEndedBefore(context.Background(), initDate.AddDate(-1, 0, 0)))

		events, err := s.ListEvents(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, len(events))
		require.Equal(t, "fresh", events[0].Title)
	})
}

func cleanupDb() error {
	db, err := sqlx.Connect(
		"postgres",
		fmt.Sprintf("sslmode=disable host=%s port=%d dbname=%s user=%s password=%s", host, port, database, username, password),
	)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("TRUNCATE TABLE events, users RESTART IDENTITY")
	return err
}

func compareEvents(t *testing.T, expected storage.Event, actual storage.Event) {
	t.Helper()
	require.True(t, expected.StartDate.Equal(actual.StartDate), "start date is not equal %q != %q", expected.StartDate, actual.StartDate)
	require.True(t, expected.EndDate.Equal(actual.EndDate), "end date is not equal %q != %q", expected.EndDate, actual.EndDate)
	expected.StartDate = actual.StartDate
	expected.EndDate = actual.EndDate
	require.Equal(t, expected, actual)
}

func createStorage(t *testing.T) *sqlstorage.Storage {
	t.Helper()
	s := sqlstorage.New(sqlstorage.Config{
		Host:     host,
		Port:     port,
		Database: database,
		Username: username,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, cleanupDb())
	t.Cleanup(func() {
		cleanupDb()
		s.Close(ctx)
	})
	return s
}
