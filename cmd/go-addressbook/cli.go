package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-addressbook/internal/addressbook"
	"github.com/tartampluch/go-addressbook/internal/assistant"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
	"github.com/tartampluch/go-addressbook/internal/server"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// cli holds the flag values and the dependencies shared by every subcommand.
type cli struct {
	debug      bool
	configPath string
	lang       string
	today      string

	source   string
	user     string
	port     string
	interval int

	stdin  io.Reader
	stdout io.Writer

	settings  config.Settings
	clock     engine.Clock
	passwords assistant.PasswordStore
	fetcher   engine.VCardFetcher

	initLogging func(debug bool) io.Closer
	logCloser   io.Closer
}

// newCLI wires the production dependencies. Tests replace fields before building the tree.
func newCLI(stdin io.Reader, stdout io.Writer) *cli {
	return &cli{
		stdin:       stdin,
		stdout:      stdout,
		clock:       engine.RealClock{},
		passwords:   assistant.NewKeyringStore(),
		fetcher:     engine.NewHTTPFetcher(),
		initLogging: setupLogging,
	}
}

// close releases the log file opened by prepare, if any.
func (c *cli) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

// rootCommand builds the command tree. Without a subcommand it starts the interactive assistant.
func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               config.BinaryName,
		Short:             config.CmdShortRoot,
		SilenceUsage:      true,
		PersistentPreRunE: c.prepare,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.newAssistant(nil)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context(), c.stdin)
		},
	}
	root.SetOut(c.stdout)

	// Global flags, shared by every subcommand.
	pf := root.PersistentFlags()
	pf.BoolVar(&c.debug, config.FlagDebug, false, config.FlagDescDebug)
	pf.StringVar(&c.configPath, config.FlagConfig, "", config.FlagDescConfig)
	pf.StringVar(&c.lang, config.FlagLang, "", config.FlagDescLang)
	pf.StringVar(&c.today, config.FlagToday, "", config.FlagDescToday)

	root.AddCommand(c.birthdaysCommand(), c.serveCommand(), c.loginCommand(), c.versionCommand())
	return root
}

// prepare starts logging, loads the settings file and applies the global flags on top.
func (c *cli) prepare(cmd *cobra.Command, _ []string) error {
	// -------------------------------------------------------------------------
	// 1. Logging
	// -------------------------------------------------------------------------
	if c.initLogging != nil {
		c.logCloser = c.initLogging(c.debug)
	}
	logStartupInfo()

	// -------------------------------------------------------------------------
	// 2. Settings file, then flag overrides
	// -------------------------------------------------------------------------
	settings, err := config.LoadSettings(c.configPath)
	if err != nil {
		return err
	}
	if c.lang != "" {
		settings.Language = c.lang
	}
	c.settings = settings

	// -------------------------------------------------------------------------
	// 3. Clock
	// -------------------------------------------------------------------------
	// A fixed day makes "birthdays" reproducible; the time of day is irrelevant.
	if c.today != "" {
		day, err := time.ParseInLocation(config.DateFormatISO, c.today, time.Local)
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrTodayFlag, err)
		}
		c.clock = engine.FixedClock{Time: day}
	}
	return nil
}

// newAssistant builds a session around book, or around an empty book when nil.
func (c *cli) newAssistant(book *addressbook.AddressBook) (*assistant.Assistant, error) {
	return assistant.New(assistant.Options{
		Language:        c.settings.Language,
		Book:            book,
		Clock:           c.clock,
		Importer:        &engine.Importer{Fetcher: c.fetcher},
		Passwords:       c.passwords,
		ReminderTrigger: c.settings.ReminderTrigger(),
		Out:             c.stdout,
	})
}

// resolveSource prefers --source/--user over the settings file.
func (c *cli) resolveSource() (engine.Source, error) {
	if c.source != "" {
		return engine.SourceFromLocation(c.source, c.user), nil
	}

	s := c.settings.Source
	src := engine.Source{Mode: s.Mode, LocalPath: s.LocalPath, URL: s.URL, User: s.User}
	if c.user != "" {
		src.User = c.user
	}
	// The default settings carry a mode but no location.
	if (src.Mode == config.SourceModeLocal && src.LocalPath == "") ||
		(src.Mode == config.SourceModeWeb && src.URL == "") || src.Mode == "" {
		return engine.Source{}, errors.New(config.ErrSourceRequired)
	}
	return src, nil
}

// addSourceFlags registers --source and --user on commands that import vCards.
func (c *cli) addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.source, config.FlagSource, "", config.FlagDescSource)
	cmd.Flags().StringVar(&c.user, config.FlagUser, "", config.FlagDescUser)
}

// birthdaysCommand imports a source once and prints the upcoming week, as the
// assistant's "birthdays" command would.
func (c *cli) birthdaysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdBirthdays,
		Short: config.CmdShortBirthdays,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := c.resolveSource()
			if err != nil {
				return err
			}
			a, err := c.newAssistant(nil)
			if err != nil {
				return err
			}
			if _, err := a.Import(cmd.Context(), src); err != nil {
				return err
			}
			reply, _ := a.Execute(cmd.Context(), config.CmdBirthdays)
			_, err = fmt.Fprintln(c.stdout, reply)
			return err
		},
	}
	c.addSourceFlags(cmd)
	return cmd
}

// serveCommand publishes the source as feeds and refreshes them until interrupted.
func (c *cli) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: config.CmdShortServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Explicit flags win over the settings file, defaults do not.
			if cmd.Flags().Changed(config.FlagPort) {
				c.settings.ServerPort = c.port
			}
			if cmd.Flags().Changed(config.FlagInterval) {
				c.settings.RefreshIntervalMin = c.interval
			}
			if err := config.ValidatePort(c.settings.ServerPort); err != nil {
				return err
			}
			src, err := c.resolveSource()
			if err != nil {
				return err
			}

			srv := server.NewFeedServer(c.settings.ServerPort)
			w := &feedWorker{
				server:   srv,
				source:   src,
				interval: time.Duration(c.settings.RefreshIntervalMin) * time.Minute,
				session:  func() (*assistant.Assistant, error) { return c.newAssistant(nil) },
			}

			// A server failure cancels the worker and vice versa.
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.Start(ctx) })
			g.Go(func() error { w.run(ctx); return nil })
			return g.Wait()
		},
	}
	c.addSourceFlags(cmd)
	cmd.Flags().StringVar(&c.port, config.FlagPort, config.DefaultPort, config.FlagDescPort)
	cmd.Flags().IntVar(&c.interval, config.FlagInterval, config.DefaultRefreshMin, config.FlagDescInterval)
	return cmd
}

// loginCommand stores the password of a vCard server user in the OS keyring,
// where import and serve look it up.
func (c *cli) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <user>",
		Short: config.CmdShortLogin,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user := args[0]
			fmt.Fprintf(c.stdout, config.MsgPasswordAsk, user)
			password, err := c.readPassword()
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrReadInput, err)
			}
			if err := c.passwords.Set(user, password); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, config.MsgPasswordSaved, user)
			return nil
		},
	}
}

// readPassword reads without echo from a terminal, or one line from any other input.
func (c *cli) readPassword() (string, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		// ReadPassword swallows the user's newline.
		fmt.Fprintln(c.stdout)
		return string(b), err
	}
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// versionCommand prints the build information injected via -ldflags.
func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: config.CmdShortVersion,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(c.stdout, config.MsgVersionOutput,
				config.AppName,
				config.Version,
				config.Commit,
				runtime.GOOS,
				runtime.GOARCH,
			)
			return err
		},
	}
}
