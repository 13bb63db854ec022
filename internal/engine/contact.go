package engine

import "time"

// Contact is the read-only view of a stored contact consumed by the scheduler
// and the calendar builder.
type Contact interface {
	// Name is the unique display name of the contact.
	Name() string

	// BirthDate returns the birthday and whether one is set.
	// Only month and day are relevant for recurrence.
	BirthDate() (time.Time, bool)
}

// yearAware is implemented by contacts whose birthday may lack a year.
// Contacts that do not implement it are assumed to know their birth year.
type yearAware interface {
	BirthYearKnown() bool
}

func birthYearKnown(c Contact) bool {
	if ya, ok := c.(yearAware); ok {
		return ya.BirthYearKnown()
	}
	return true
}

// Card represents a contact decoded from a vCard stream.
// It decouples the command layer from the vCard parsing logic.
type Card struct {
	// Name is the display name (Formatted Name or Structured Name).
	Name string

	// Phones holds the TEL values reduced to their digits.
	Phones []string

	// Birthday is the BDAY rendered as DD.MM.YYYY, or DD.MM when the year is unknown.
	// Empty when the card has no usable birthday.
	Birthday string

	// YearKnown indicates if the vCard contained a year or just --MM-DD.
	YearKnown bool
}
