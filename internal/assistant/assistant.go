// Package assistant implements the interactive command loop of the address book.
package assistant

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-addressbook/internal/addressbook"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
)

// Options configures a new Assistant. Zero values fall back to sensible defaults.
type Options struct {
	Language        string
	Book            *addressbook.AddressBook
	Clock           engine.Clock
	Importer        *engine.Importer
	Passwords       PasswordStore
	ReminderTrigger string
	Out             io.Writer
}

// Assistant owns the address book of a session and answers commands.
type Assistant struct {
	book      *addressbook.AddressBook
	clock     engine.Clock
	importer  *engine.Importer
	passwords PasswordStore
	reminder  string
	out       io.Writer

	lang      string
	localizer *i18n.Localizer
	commands  map[string]command
}

// New builds an Assistant. It fails only when the language is not shipped.
func New(opts Options) (*Assistant, error) {
	bundle, available := loadBundle()
	lang, err := normalizeLanguage(opts.Language, available)
	if err != nil {
		return nil, err
	}

	a := &Assistant{
		book:      opts.Book,
		clock:     opts.Clock,
		importer:  opts.Importer,
		passwords: opts.Passwords,
		reminder:  opts.ReminderTrigger,
		out:       opts.Out,
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang, config.DefaultLanguage),
	}
	if a.book == nil {
		a.book = addressbook.New()
	}
	if a.clock == nil {
		a.clock = engine.RealClock{}
	}
	if a.importer == nil {
		a.importer = &engine.Importer{Fetcher: engine.NewHTTPFetcher()}
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	a.commands = a.commandTable()
	return a, nil
}

// Book exposes the session's address book.
func (a *Assistant) Book() *addressbook.AddressBook { return a.book }

// Language returns the active language code.
func (a *Assistant) Language() string { return a.lang }

// Run reads commands line by line until close/exit, end of input or ctx cancellation.
func (a *Assistant) Run(ctx context.Context, in io.Reader) error {
	log := slog.With(config.LogKeyComponent, config.CompAssistant)
	log.Info(config.MsgSessionStarted, config.LogKeyLang, a.lang)
	defer log.Info(config.MsgSessionEnded)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines, readErr := readLines(ctx, in)

	fmt.Fprintln(a.out, a.msg(config.TKeyWelcome, nil))
	for {
		fmt.Fprint(a.out, a.msg(config.TKeyPrompt, nil))

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(a.out)
			if err := <-readErr; err != nil {
				return fmt.Errorf("%s: %w", config.ErrReadInput, err)
			}
			return nil
		}

		reply, quit := a.Execute(ctx, line)
		if reply != "" {
			fmt.Fprintln(a.out, reply)
		}
		if quit {
			return nil
		}
	}
}

// readLines feeds the scanner's lines into a channel so that Run can also watch ctx.
// The error channel receives exactly one value once the lines channel is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// Execute handles a single input line. quit reports a close or exit command.
func (a *Assistant) Execute(ctx context.Context, line string) (reply string, quit bool) {
	name, args := parseInput(line)
	if name == "" {
		return a.msg(config.TKeyInvalidCommand, nil), false
	}

	slog.Debug(config.MsgCommand,
		config.LogKeyComponent, config.CompAssistant,
		config.LogKeyCommand, name,
		config.LogKeyArgs, len(args),
	)

	if name == config.CmdClose || name == config.CmdExit {
		return a.msg(config.TKeyGoodbye, nil), true
	}

	cmd, ok := a.commands[name]
	if !ok {
		return a.msg(config.TKeyInvalidCommand, nil), false
	}
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return a.msg(cmd.usage, nil), false
	}

	out, err := cmd.run(ctx, args)
	if err != nil {
		return a.describe(err, args), false
	}
	return out, false
}
