package engine

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// Bucket groups the names celebrated on one weekday.
type Bucket struct {
	Weekday string
	Names   []string
}

// Upcoming is the weekday-bucketed view of the next birthdays.
// Buckets are ordered by the first time their weekday was produced.
type Upcoming []Bucket

// Weekdays returns the bucket keys in order.
func (u Upcoming) Weekdays() []string {
	days := make([]string, 0, len(u))
	for _, b := range u {
		days = append(days, b.Weekday)
	}
	return days
}

// Names returns the names of a weekday, or nil when the weekday has no bucket.
func (u Upcoming) Names(weekday string) []string {
	for _, b := range u {
		if b.Weekday == weekday {
			return b.Names
		}
	}
	return nil
}

// Len returns the total number of names across all buckets.
func (u Upcoming) Len() int {
	n := 0
	for _, b := range u {
		n += len(b.Names)
	}
	return n
}

// String renders one "<Weekday>: name1, name2" line per bucket.
func (u Upcoming) String() string {
	var sb strings.Builder
	for _, b := range u {
		fmt.Fprintf(&sb, config.FormatBucket, b.Weekday, strings.Join(b.Names, config.SeparatorNames))
	}
	return sb.String()
}

func (u Upcoming) add(weekday, name string) Upcoming {
	for i := range u {
		if u[i].Weekday == weekday {
			u[i].Names = append(u[i].Names, name)
			return u
		}
	}
	return append(u, Bucket{Weekday: weekday, Names: []string{name}})
}

// ComputeUpcoming groups contacts by the weekday of their next birthday within the
// 7 days following the window start. Birthdays falling on a weekend are moved to Monday.
// Contacts without a birthday are skipped. The input is only read.
func ComputeUpcoming[C Contact](today time.Time, contacts iter.Seq[C]) Upcoming {
	start := windowStart(today)
	upcoming := Upcoming{}

	for c := range contacts {
		birthDate, ok := c.BirthDate()
		if !ok {
			continue
		}

		next := anchorDate(start.Year(), birthDate.Month(), birthDate.Day())
		if next.Before(start) {
			next = anchorDate(start.Year()+1, birthDate.Month(), birthDate.Day())
		}

		delta := daysBetween(start, next)
		if delta >= config.UpcomingWindowDays {
			continue
		}

		idx := weekdayIndex(start.AddDate(0, 0, delta))
		if idx >= saturdayIndex {
			idx = mondayIndex
		}
		upcoming = upcoming.add(weekdayName(idx), c.Name())
	}

	return upcoming
}
