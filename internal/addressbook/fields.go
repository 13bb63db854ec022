package addressbook

import (
	"strings"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// Phone is a validated 10-digit phone number.
type Phone string

// NewPhone validates raw and returns it as a Phone.
func NewPhone(raw string) (Phone, error) {
	raw = strings.TrimSpace(raw)
	if err := validate.Var(raw, config.ValidatePhoneTag); err != nil {
		return "", ErrInvalidPhoneFormat
	}
	return Phone(raw), nil
}

func (p Phone) String() string {
	return string(p)
}

// Birthday is an immutable, validated birth date.
// The text typed by the user is kept verbatim for display.
type Birthday struct {
	raw       string
	date      time.Time
	yearKnown bool
}

// NewBirthday parses DD.MM.YYYY (or DD.MM when the year is unknown).
func NewBirthday(raw string) (Birthday, error) {
	raw = strings.TrimSpace(raw)
	date, yearKnown, err := parseBirthday(raw)
	if err != nil {
		return Birthday{}, ErrInvalidDateFormat
	}
	return Birthday{raw: raw, date: date, yearKnown: yearKnown}, nil
}

// Date returns the parsed date. Without a known year the year is config.DefaultLeapYear.
func (b Birthday) Date() time.Time { return b.date }

// YearKnown reports whether the birthday was given with a year.
func (b Birthday) YearKnown() bool { return b.yearKnown }

func (b Birthday) String() string { return b.raw }
