package addressbook

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tartampluch/go-addressbook/internal/config"
)

var validate = validator.New()

// parseBirthday returns the date and whether the text carried a year.
// Both DD.MM.YYYY and DD.MM must be real calendar dates; year-less values are
// anchored on a leap year so that 29.02 is accepted.
func parseBirthday(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(config.BirthdayLayout, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(config.BirthdayLayoutNoYear, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
}
