package addressbook

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// Record is a named contact with its phones and an optional birthday.
type Record struct {
	name     string
	phones   []Phone
	birthday *Birthday
}

// NewRecord creates an empty record. The name is trimmed and must not be blank.
func NewRecord(name string) (*Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return &Record{name: name}, nil
}

// Name returns the unique name of the contact.
func (r *Record) Name() string { return r.name }

// Phones returns a copy of the phone list.
func (r *Record) Phones() []Phone {
	return slices.Clone(r.phones)
}

// AddPhone validates and appends a phone number.
func (r *Record) AddPhone(raw string) error {
	p, err := NewPhone(raw)
	if err != nil {
		return err
	}
	r.phones = append(r.phones, p)
	return nil
}

// RemovePhone deletes every occurrence of the number.
func (r *Record) RemovePhone(raw string) error {
	before := len(r.phones)
	r.phones = slices.DeleteFunc(r.phones, func(p Phone) bool { return string(p) == raw })
	if len(r.phones) == before {
		return ErrPhoneNotFound
	}
	return nil
}

// EditPhone replaces oldNumber with a validated newNumber, in place.
func (r *Record) EditPhone(oldNumber, newNumber string) error {
	i := slices.Index(r.phones, Phone(oldNumber))
	if i < 0 {
		return ErrPhoneNotFound
	}
	p, err := NewPhone(newNumber)
	if err != nil {
		return err
	}
	r.phones[i] = p
	return nil
}

// FindPhone reports whether the number belongs to the contact.
func (r *Record) FindPhone(raw string) (Phone, bool) {
	if i := slices.Index(r.phones, Phone(raw)); i >= 0 {
		return r.phones[i], true
	}
	return "", false
}

// SetBirthday sets the birthday once. A second call fails with ErrBirthdayAlreadySet.
func (r *Record) SetBirthday(raw string) error {
	if r.birthday != nil {
		return ErrBirthdayAlreadySet
	}
	b, err := NewBirthday(raw)
	if err != nil {
		return err
	}
	r.birthday = &b
	return nil
}

// Birthday returns the birthday and whether one is set.
func (r *Record) Birthday() (Birthday, bool) {
	if r.birthday == nil {
		return Birthday{}, false
	}
	return *r.birthday, true
}

// BirthDate implements engine.Contact.
func (r *Record) BirthDate() (time.Time, bool) {
	if r.birthday == nil {
		return time.Time{}, false
	}
	return r.birthday.date, true
}

// BirthYearKnown lets the calendar skip ages for year-less birthdays.
func (r *Record) BirthYearKnown() bool {
	return r.birthday == nil || r.birthday.yearKnown
}

func (r *Record) String() string {
	phones := make([]string, len(r.phones))
	for i, p := range r.phones {
		phones[i] = p.String()
	}
	s := fmt.Sprintf(config.FormatRecord, r.name, strings.Join(phones, config.SeparatorPhones))
	if r.birthday != nil {
		s += fmt.Sprintf(config.FormatRecordBday, r.birthday.raw)
	}
	return s
}
