package service

import (
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/pkg/format"
)

// Calendar resolves business dates in the shop's timezone.
type Calendar struct {
	Location *time.Location
	Now      func() time.Time
}

func NewCalendar(loc *time.Location) Calendar {
	return Calendar{Location: loc, Now: time.Now}
}

func (c Calendar) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Today is the current calendar day.
func (c Calendar) Today() model.Date {
	return model.Date(format.Today(c.now(), c.loc()))
}

// DaysAgo is the calendar day n days before today.
func (c Calendar) DaysAgo(n int) model.Date {
	return model.Date(format.DaysAgo(c.now(), c.loc(), n))
}
