package storage

import (
	"time"

	"github.com/daybook-io/daybook/internal/util"
)

type Event struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	StartDate time.Time `json:"startDate" db:"start_date"`
	EndDate   time.Time `json:"endDate" db:"end_date"`
}

// EventUpdate is a partial change set for an event. Nil fields keep
// their stored values.
type EventUpdate struct {
	Title     *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Apply returns a copy of e with the non-nil fields of upd applied.
func (upd EventUpdate) Apply(e Event) Event {
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.StartDate != nil {
		e.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		e.EndDate = *upd.EndDate
	}
	return e
}

// MatchesDay reports whether the event is visible on the calendar day of
// date: the day equals the event's start day, its end day, or lies strictly
// between them. Days are compared in date's location.
func (e Event) MatchesDay(date time.Time) bool {
	day := util.TruncateToDay(date)
	start := util.TruncateToDay(e.StartDate.In(date.Location()))
	end := util.TruncateToDay(e.EndDate.In(date.Location()))
	return day.Equal(start) || day.Equal(end) || (day.After(start) && day.Before(end))
}
