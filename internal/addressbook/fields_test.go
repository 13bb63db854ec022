package addressbook_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/addressbook"
)

func TestNewPhone(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"Ten digits", "0123456789", true},
		{"Surrounding spaces are trimmed", " 0123456789 ", true},
		{"Too short", "012345678", false},
		{"Too long", "01234567890", false},
		{"Letters", "01234abcde", false},
		{"Leading plus", "+123456789", false},
		{"Decimal point", "01234.6789", false},
		{"Non-ASCII digits", "٠١٢٣٤٥٦٧٨٩", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := addressbook.NewPhone(tt.raw)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, "0123456789", p.String())
				return
			}
			assert.ErrorIs(t, err, addressbook.ErrInvalidPhoneFormat)
		})
	}
}

func TestNewBirthday(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      time.Time
		yearKnown bool
	}{
		{"Zero padded", "05.03.1990", time.Date(1990, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"Single digits", "5.3.1990", time.Date(1990, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"Leap day in leap year", "29.02.2000", time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), true},
		{"Without year", "14.07", time.Date(2000, 7, 14, 0, 0, 0, 0, time.UTC), false},
		{"Leap day without year", "29.02", time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := addressbook.NewBirthday(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Date())
			assert.Equal(t, tt.yearKnown, b.YearKnown())
			assert.Equal(t, tt.raw, b.String(), "raw text is kept")
		})
	}
}

func TestNewBirthday_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"1990-03-05",
		"31.02.1990",
		"29.02.2001",
		"00.01.1990",
		"12.13.1990",
		"12/03/1990",
		"birthday",
		"05.03.90",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := addressbook.NewBirthday(raw)
			assert.ErrorIs(t, err, addressbook.ErrInvalidDateFormat)
		})
	}
}
