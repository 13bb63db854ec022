package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-addressbook/internal/config"
)

// CalendarOptions tunes the iCalendar rendering.
type CalendarOptions struct {
	// ReminderTrigger is an ISO8601 duration (e.g. "-P1D"). Empty disables alarms.
	ReminderTrigger string

	// FormatSummary lets the command layer inject localized event titles.
	FormatSummary func(name string, age int, yearKnown bool) string
}

// BuildCalendar renders the birthdays of contacts as an iCalendar document with events
// for the previous, current and next year. It also returns how many birthdays fall on now.
func BuildCalendar[C Contact](now time.Time, contacts iter.Seq[C], opts CalendarOptions) ([]byte, int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint for subscribed feeds.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := civilDate(now)
	stats := struct{ withBday, today int }{}

	for c := range contacts {
		birthDate, ok := c.BirthDate()
		if !ok {
			continue
		}
		stats.withBday++

		name := c.Name()
		yearKnown := birthYearKnown(c)

		input := fmt.Sprintf(config.FormatHashInput, name, birthDate.Format(time.RFC3339), config.UIDSalt)
		hash := sha256.Sum256([]byte(input))
		uidBase := fmt.Sprintf("%x", hash[:config.UIDHashLength])

		events, isToday := createEvents(name, birthDate, yearKnown, today, uidBase, opts)
		if isToday {
			stats.today++
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyDOB, birthDate.Format(config.DateFormatFullDash))
		}

		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	logCalendar(stats.withBday, stats.today)

	// An empty VCALENDAR is rejected by the encoder, clients still expect a valid feed.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), stats.today, nil
}

func logCalendar(found, today int) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyFound, found),
			slog.Int(config.LogKeyToday, today),
		),
	)
}

// createEvents builds the all-day events for today's year and its neighbours.
// No event is created for a year before the person was born.
func createEvents(name string, birthDate time.Time, yearKnown bool, today time.Time, uidBase string, opts CalendarOptions) ([]*ical.Event, bool) {
	currentYear := today.Year()
	var events []*ical.Event
	isToday := false

	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if yearKnown && y < birthDate.Year() {
			continue
		}

		age := 0
		if yearKnown {
			age = y - birthDate.Year()
		}

		summary := fmt.Sprintf(config.FallbackSummary, name)
		if opts.FormatSummary != nil {
			summary = opts.FormatSummary(name, age, yearKnown)
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)

		eventDate := anchorDate(y, birthDate.Month(), birthDate.Day())
		if eventDate.Equal(today) {
			isToday = true
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if opts.ReminderTrigger != "" {
			addAlarm(event, opts.ReminderTrigger, summary)
		}

		events = append(events, event)
	}
	return events, isToday
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Raw value, SetText would add VALUE=TEXT.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
