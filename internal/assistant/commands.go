package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tartampluch/go-addressbook/internal/addressbook"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
)

// command describes one assistant command and the argument count it accepts.
type command struct {
	run     func(ctx context.Context, args []string) (string, error)
	minArgs int
	maxArgs int // -1 means unbounded
	usage   string
}

// commandTable binds command words to handlers. close and exit are handled by Execute.
func (a *Assistant) commandTable() map[string]command {
	// Commands without arguments ignore any extra words.
	return map[string]command{
		config.CmdHello:        {run: a.hello, maxArgs: -1},
		config.CmdAdd:          {run: a.add, minArgs: 1, maxArgs: 2, usage: config.TKeyUsageAdd},
		config.CmdChange:       {run: a.change, minArgs: 2, maxArgs: 3, usage: config.TKeyUsageChange},
		config.CmdPhone:        {run: a.phone, minArgs: 1, maxArgs: 1, usage: config.TKeyUsagePhone},
		config.CmdRemovePhone:  {run: a.removePhone, minArgs: 2, maxArgs: 2, usage: config.TKeyUsageRemovePhone},
		config.CmdDelete:       {run: a.deleteContact, minArgs: 1, maxArgs: 1, usage: config.TKeyUsageDelete},
		config.CmdAll:          {run: a.all, maxArgs: -1},
		config.CmdAddBirthday:  {run: a.addBirthday, minArgs: 2, maxArgs: 2, usage: config.TKeyUsageAddBirthday},
		config.CmdShowBirthday: {run: a.showBirthday, minArgs: 1, maxArgs: 1, usage: config.TKeyUsageShowBirthday},
		config.CmdBirthdays:    {run: a.birthdays, maxArgs: -1},
		config.CmdImport:       {run: a.importContacts, minArgs: 1, maxArgs: 2, usage: config.TKeyUsageImport},
		config.CmdExport:       {run: a.export, minArgs: 1, maxArgs: 1, usage: config.TKeyUsageExport},
		config.CmdHelp:         {run: a.help, maxArgs: -1},
	}
}

// opError carries a failure that is reported with its own message key.
type opError struct {
	key string
	err error
}

func (e *opError) Error() string { return e.err.Error() }
func (e *opError) Unwrap() error { return e.err }

// describe turns a handler error into the message shown to the user.
func (a *Assistant) describe(err error, args []string) string {
	var op *opError
	// opError first: it may wrap a sentinel that would otherwise match below.
	switch {
	case errors.As(err, &op):
		return a.msg(op.key, map[string]any{"Error": op.err.Error()})
	case errors.Is(err, addressbook.ErrContactNotFound):
		return a.msg(config.TKeyErrNotFound, nil)
	case errors.Is(err, addressbook.ErrInvalidPhoneFormat):
		return a.msg(config.TKeyErrInvalidPhone, nil)
	case errors.Is(err, addressbook.ErrInvalidDateFormat):
		return a.msg(config.TKeyErrInvalidDate, nil)
	case errors.Is(err, addressbook.ErrBirthdayAlreadySet):
		return a.msg(config.TKeyErrBirthdaySet, nil)
	case errors.Is(err, addressbook.ErrPhoneNotFound):
		return a.msg(config.TKeyErrPhoneNotFound, map[string]any{"Name": args[0]})
	case errors.Is(err, addressbook.ErrNameRequired):
		return a.msg(config.TKeyErrNameRequired, nil)
	default:
		return err.Error()
	}
}

// find looks a contact up, failing with ErrContactNotFound.
func (a *Assistant) find(name string) (*addressbook.Record, error) {
	rec, ok := a.book.Find(name)
	if !ok {
		return nil, addressbook.ErrContactNotFound
	}
	return rec, nil
}

// hello greets the user.
func (a *Assistant) hello(context.Context, []string) (string, error) {
	return a.msg(config.TKeyHello, nil), nil
}

// help lists the commands.
func (a *Assistant) help(context.Context, []string) (string, error) {
	return a.msg(config.TKeyHelp, nil), nil
}

// add creates the contact, or appends the phone when it already exists.
// An invalid phone leaves the book untouched.
func (a *Assistant) add(_ context.Context, args []string) (string, error) {
	rec, exists := a.book.Find(args[0])
	if !exists {
		var err error
		if rec, err = addressbook.NewRecord(args[0]); err != nil {
			return "", err
		}
	}
	// Validate the phone before a new record becomes visible in the book.
	if len(args) == 2 {
		if err := rec.AddPhone(args[1]); err != nil {
			return "", err
		}
	}
	if exists {
		return a.msg(config.TKeyContactUpdated, nil), nil
	}
	a.book.Add(rec)
	return a.msg(config.TKeyContactAdded, nil), nil
}

// change edits a phone (name old new) or appends one (name phone).
func (a *Assistant) change(_ context.Context, args []string) (string, error) {
	rec, err := a.find(args[0])
	if err != nil {
		return "", err
	}
	if len(args) == 3 {
		err = rec.EditPhone(args[1], args[2])
	} else {
		err = rec.AddPhone(args[1])
	}
	if err != nil {
		return "", err
	}
	return a.msg(config.TKeyPhoneUpdated, map[string]any{"Name": rec.Name()}), nil
}

// phone lists the numbers of a contact in insertion order.
func (a *Assistant) phone(_ context.Context, args []string) (string, error) {
	rec, err := a.find(args[0])
	if err != nil {
		return "", err
	}
	phones := rec.Phones()
	if len(phones) == 0 {
		return a.msg(config.TKeyNoPhones, map[string]any{"Name": rec.Name()}), nil
	}
	list := make([]string, len(phones))
	for i, p := range phones {
		list[i] = p.String()
	}
	return a.msg(config.TKeyPhoneList, map[string]any{
		"Name":   rec.Name(),
		"Phones": strings.Join(list, config.SeparatorPhones),
	}), nil
}

// removePhone deletes one number from a contact.
func (a *Assistant) removePhone(_ context.Context, args []string) (string, error) {
	rec, err := a.find(args[0])
	if err != nil {
		return "", err
	}
	if err := rec.RemovePhone(args[1]); err != nil {
		return "", err
	}
	return a.msg(config.TKeyPhoneRemoved, map[string]any{"Name": rec.Name()}), nil
}

// deleteContact removes a contact and its data from the book.
func (a *Assistant) deleteContact(_ context.Context, args []string) (string, error) {
	if err := a.book.Delete(args[0]); err != nil {
		return "", err
	}
	return a.msg(config.TKeyContactDeleted, nil), nil
}

// all prints every record, one per line, in insertion order.
func (a *Assistant) all(context.Context, []string) (string, error) {
	if a.book.Len() == 0 {
		return a.msg(config.TKeyBookEmpty, nil), nil
	}
	lines := make([]string, 0, a.book.Len())
	for rec := range a.book.All() {
		lines = append(lines, rec.String())
	}
	return strings.Join(lines, "\n"), nil
}

// addBirthday sets the birthday of a contact. It can only be set once.
func (a *Assistant) addBirthday(_ context.Context, args []string) (string, error) {
	rec, err := a.find(args[0])
	if err != nil {
		return "", err
	}
	if err := rec.SetBirthday(args[1]); err != nil {
		return "", err
	}
	return a.msg(config.TKeyBirthdayAdded, map[string]any{"Name": rec.Name()}), nil
}

// showBirthday prints the birthday as it was typed.
func (a *Assistant) showBirthday(_ context.Context, args []string) (string, error) {
	rec, err := a.find(args[0])
	if err != nil {
		return "", err
	}
	b, ok := rec.Birthday()
	if !ok {
		return a.msg(config.TKeyBirthdayMissing, map[string]any{"Name": rec.Name()}), nil
	}
	return a.msg(config.TKeyBirthdayShow, map[string]any{"Name": rec.Name(), "Birthday": b.String()}), nil
}

// birthdays prints the weekday buckets of the upcoming week.
func (a *Assistant) birthdays(context.Context, []string) (string, error) {
	upcoming := a.Upcoming()
	if upcoming.Len() == 0 {
		return a.msg(config.TKeyNoUpcoming, nil), nil
	}
	return strings.TrimSuffix(upcoming.String(), "\n"), nil
}

// importContacts handles "import <path|url> [user]".
func (a *Assistant) importContacts(ctx context.Context, args []string) (string, error) {
	user := ""
	if len(args) == 2 {
		user = args[1]
	}
	merged, err := a.Import(ctx, engine.SourceFromLocation(args[0], user))
	if err != nil {
		return "", &opError{key: config.TKeyErrImport, err: err}
	}
	return a.msgN(config.TKeyImportDone, merged, nil), nil
}

// Upcoming computes the birthday buckets of the book for the session clock.
func (a *Assistant) Upcoming() engine.Upcoming {
	upcoming := engine.ComputeUpcoming(a.clock.Now(), a.book.All())
	slog.Debug(config.MsgUpcomingDone,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyBuckets, len(upcoming),
		config.LogKeyCount, upcoming.Len(),
	)
	return upcoming
}

// Import merges the cards of src into the book and returns how many were merged.
// Phones already known are not duplicated and an existing birthday is kept.
// A web source with a user but no password takes it from the password store.
func (a *Assistant) Import(ctx context.Context, src engine.Source) (int, error) {
	if src.Mode == config.SourceModeWeb && src.User != "" && src.Password == "" && a.passwords != nil {
		pass, err := a.passwords.Get(src.User)
		if err != nil {
			slog.Debug(config.MsgPassFail,
				config.LogKeyComponent, config.CompAssistant,
				config.LogKeyUser, src.User,
				config.LogKeyError, err,
			)
		}
		src.Password = pass
	}

	cards, err := a.importer.Import(ctx, src)
	if err != nil {
		return 0, err
	}

	// Cards arrive in file order, which becomes the book's order for new contacts.
	merged := 0
	for _, card := range cards {
		if a.mergeCard(card) {
			merged++
		}
	}
	return merged, nil
}

// mergeCard adds a decoded card to the book. Invalid phones and dates are
// skipped individually; only a card without a usable name is rejected.
func (a *Assistant) mergeCard(card engine.Card) bool {
	log := slog.With(config.LogKeyComponent, config.CompAssistant, config.LogKeyName, card.Name)

	rec, exists := a.book.Find(card.Name)
	if !exists {
		var err error
		if rec, err = addressbook.NewRecord(card.Name); err != nil {
			log.Debug(config.MsgSkippedCard, config.LogKeyError, err)
			return false
		}
	}

	// Re-importing the same file must not duplicate numbers.
	for _, raw := range card.Phones {
		if _, dup := rec.FindPhone(raw); dup {
			continue
		}
		if err := rec.AddPhone(raw); err != nil {
			log.Debug(config.MsgSkippedPhone, config.LogKeyValue, raw)
		}
	}
	if _, has := rec.Birthday(); !has && card.Birthday != "" {
		if err := rec.SetBirthday(card.Birthday); err != nil {
			log.Debug(config.MsgSkippedDate, config.LogKeyValue, card.Birthday)
		}
	}

	if !exists {
		a.book.Add(rec)
	}
	return true
}

// Calendar renders the birthdays of the book as an iCalendar document.
func (a *Assistant) Calendar() ([]byte, error) {
	data, _, err := engine.BuildCalendar(a.clock.Now(), a.book.All(), engine.CalendarOptions{
		ReminderTrigger: a.reminder,
		FormatSummary:   a.summaryFormatter(),
	})
	return data, err
}

// export writes the birthdays of the book as an .ics file.
func (a *Assistant) export(_ context.Context, args []string) (string, error) {
	path := args[0]
	data, err := a.Calendar()
	if err != nil {
		return "", &opError{key: config.TKeyErrExport, err: err}
	}
	if err := os.WriteFile(path, data, config.FilePermUserRW); err != nil {
		return "", &opError{key: config.TKeyErrExport, err: fmt.Errorf("%s: %w", config.ErrWriteFile, err)}
	}

	// Contacts without a birthday produce no event.
	count := 0
	for rec := range a.book.All() {
		if _, ok := rec.Birthday(); ok {
			count++
		}
	}
	return a.msgN(config.TKeyExportDone, count, map[string]any{"Path": path}), nil
}
