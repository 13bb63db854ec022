package addressbook

import (
	"errors"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// Validation and lookup failures reported by the address book.
var (
	ErrInvalidPhoneFormat = errors.New(config.ErrInvalidPhone)
	ErrInvalidDateFormat  = errors.New(config.ErrInvalidDate)
	ErrBirthdayAlreadySet = errors.New(config.ErrBirthdayExists)
	ErrContactNotFound    = errors.New(config.ErrContactNotFound)
	ErrPhoneNotFound      = errors.New(config.ErrPhoneNotFound)
	ErrNameRequired       = errors.New(config.ErrNameRequired)
)
