package assistant_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/assistant"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
	"github.com/zalando/go-keyring"
	"go.uber.org/goleak"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, src engine.Source) (io.ReadCloser, error) {
	args := m.Called(ctx, src)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPasswords struct {
	mock.Mock
}

func (m *MockPasswords) Get(user string) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockPasswords) Set(user, password string) error {
	return m.Called(user, password).Error(0)
}

// Monday 15 January 2024.
var monday = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)

const sampleVCF = `BEGIN:VCARD
VERSION:3.0
FN:Alice Smith
TEL;TYPE=CELL:06 12 34 56 78
BDAY:1990-01-17
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Bob
TEL:0123456789
TEL:+1 (555) 0100
END:VCARD
`

func newAssistant(t *testing.T, opts assistant.Options) *assistant.Assistant {
	t.Helper()
	if opts.Clock == nil {
		opts.Clock = engine.FixedClock{Time: monday}
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	a, err := assistant.New(opts)
	require.NoError(t, err)
	return a
}

type step struct {
	line string
	want string
}

func runSteps(t *testing.T, a *assistant.Assistant, steps []step) {
	t.Helper()
	for _, s := range steps {
		got, quit := a.Execute(context.Background(), s.line)
		assert.False(t, quit, s.line)
		assert.Equal(t, s.want, got, s.line)
	}
}

// -----------------------------------------------------------------------------
// Commands
// -----------------------------------------------------------------------------

func TestExecute_ContactLifecycle(t *testing.T) {
	a := newAssistant(t, assistant.Options{})

	runSteps(t, a, []step{
		{"hello", "How can I help you?"},
		{"all", "The address book is empty."},
		{"add Bob 0123456789", "Contact added."},
		{"add Bob 1112223333", "Contact updated."},
		{"phone Bob", "Bob: 0123456789; 1112223333"},
		{"change Bob 1112223333 5555555555", "Phone number updated for Bob"},
		{"change Bob 9999999999", "Phone number updated for Bob"},
		{"phone bob", "No such contact found."},
		{"remove-phone Bob 0123456789", "Phone number removed for Bob"},
		{"remove-phone Bob 0123456789", "No such phone number for Bob."},
		{"add-birthday Bob 20.01.1985", "Birthday added for Bob"},
		{"add-birthday Bob 21.01.1985", "Birthday already exists for this contact"},
		{"show-birthday Bob", "Bob's birthday: 20.01.1985"},
		{`add "Mary Ann"`, "Contact added."},
		{`phone "Mary Ann"`, "Mary Ann has no phone numbers."},
		{`show-birthday "Mary Ann"`, "Mary Ann doesn't have a birthday set."},
		{"all", "Contact name: Bob, phones: 5555555555; 9999999999, Birthday: 20.01.1985\n" +
			"Contact name: Mary Ann, phones: "},
		{"delete Bob", "Contact deleted."},
		{"delete Bob", "No such contact found."},
		{"all", "Contact name: Mary Ann, phones: "},
	})
}

func TestExecute_ValidationErrors(t *testing.T) {
	a := newAssistant(t, assistant.Options{})

	runSteps(t, a, []step{
		{"add Bob 12345", "Invalid phone number format"},
		{"all", "The address book is empty."},
		{"add Bob 0123456789", "Contact added."},
		{"add Bob 01234567ab", "Invalid phone number format"},
		{"change Bob 0123456789 123", "Invalid phone number format"},
		{"phone Bob", "Bob: 0123456789"},
		{"add-birthday Bob 1990-01-20", "Invalid date format"},
		{"add-birthday Bob 31.02.1990", "Invalid date format"},
		{"add-birthday Ghost 01.01.1990", "No such contact found."},
		{`add "  "`, "Contact name is required."},
	})
}

func TestExecute_UsageAndUnknown(t *testing.T) {
	a := newAssistant(t, assistant.Options{})

	runSteps(t, a, []step{
		{"", "Invalid command."},
		{"jump", "Invalid command."},
		{"add", "Usage: add <name> [phone]"},
		{"add a b c", "Usage: add <name> [phone]"},
		{"change Bob", "Usage: change <name> <old phone> <new phone>"},
		{"phone", "Usage: phone <name>"},
		{"remove-phone Bob", "Usage: remove-phone <name> <phone>"},
		{"delete", "Usage: delete <name>"},
		{"add-birthday Bob", "Usage: add-birthday <name> <DD.MM.YYYY>"},
		{"show-birthday", "Usage: show-birthday <name>"},
		{"import", "Usage: import <file.vcf|url> [user]"},
		{"export", "Usage: export <file.ics>"},
		{"HELLO", "How can I help you?"},
	})

	help, _ := a.Execute(context.Background(), "help")
	assert.Contains(t, help, "add-birthday <name> <DD.MM.YYYY>")
}

func TestExecute_CloseAndExit(t *testing.T) {
	a := newAssistant(t, assistant.Options{})

	for _, line := range []string{"close", "exit", "EXIT"} {
		reply, quit := a.Execute(context.Background(), line)
		assert.True(t, quit, line)
		assert.Equal(t, "Goodbye!", reply)
	}
}

func TestExecute_Birthdays(t *testing.T) {
	a := newAssistant(t, assistant.Options{})

	runSteps(t, a, []step{
		{"birthdays", "No birthdays in the upcoming week."},
		{"add Alice", "Contact added."},
		{"add-birthday Alice 17.01.1990", "Birthday added for Alice"},
		{"add Bob", "Contact added."},
		{"add-birthday Bob 20.01.1985", "Birthday added for Bob"},
		{"add Carol", "Contact added."},
		{"add-birthday Carol 15.01.2000", "Birthday added for Carol"},
		{"add Dave", "Contact added."},
		{"add-birthday Dave 22.01.1970", "Birthday added for Dave"},
		{"add Eve", "Contact added."},
		{"add-birthday Eve 29.02", "Birthday added for Eve"},
	})

	// The window runs Monday 15 to Sunday 21: Bob's Saturday moves to Monday,
	// Dave falls one day past the window.
	reply, _ := a.Execute(context.Background(), "birthdays")
	assert.Equal(t, "Wednesday: Alice\nMonday: Bob, Carol", reply)
}

func TestNew_Languages(t *testing.T) {
	a := newAssistant(t, assistant.Options{Language: "fr-CA"})
	assert.Equal(t, "fr", a.Language())

	reply, _ := a.Execute(context.Background(), "hello")
	assert.Equal(t, "Comment puis-je vous aider ?", reply)

	reply, _ = a.Execute(context.Background(), "phone Nobody")
	assert.Equal(t, "Contact introuvable.", reply)

	_, err := assistant.New(assistant.Options{Language: "de"})
	assert.ErrorContains(t, err, config.ErrLanguage)
}

// -----------------------------------------------------------------------------
// Import / Export
// -----------------------------------------------------------------------------

func TestImport_LocalFileMergesContacts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(sampleVCF), 0o600))

	a := newAssistant(t, assistant.Options{})
	runSteps(t, a, []step{
		{"add Bob 0123456789", "Contact added."},
		{"import " + path, "Imported 2 contacts."},
		{`phone "Alice Smith"`, "Alice Smith: 0612345678"},
		{"phone Bob", "Bob: 0123456789"},
		{"import " + path, "Imported 2 contacts."},
		{`phone "Alice Smith"`, "Alice Smith: 0612345678"},
		{"birthdays", "Wednesday: Alice Smith"},
	})
	assert.Equal(t, 2, a.Book().Len())
}

func TestImport_MissingFile(t *testing.T) {
	a := newAssistant(t, assistant.Options{})

	reply, quit := a.Execute(context.Background(), "import "+filepath.Join(t.TempDir(), "nope.vcf"))
	assert.False(t, quit)
	assert.True(t, strings.HasPrefix(reply, "Import failed: "), reply)
	assert.Equal(t, 0, a.Book().Len())
}

func TestImport_WebUsesStoredPassword(t *testing.T) {
	fetcher := new(MockFetcher)
	passwords := new(MockPasswords)
	url := "https://dav.example.com/contacts.vcf"

	passwords.On("Get", "alice").Return("secret", nil)
	fetcher.On("Fetch", mock.Anything, engine.Source{
		Mode:     config.SourceModeWeb,
		URL:      url,
		User:     "alice",
		Password: "secret",
	}).Return(io.NopCloser(strings.NewReader(sampleVCF)), nil)

	a := newAssistant(t, assistant.Options{
		Importer:  &engine.Importer{Fetcher: fetcher},
		Passwords: passwords,
	})

	reply, _ := a.Execute(context.Background(), "import "+url+" alice")
	assert.Equal(t, "Imported 2 contacts.", reply)
	fetcher.AssertExpectations(t)
	passwords.AssertExpectations(t)
}

func TestImport_WebWithoutStoredPassword(t *testing.T) {
	fetcher := new(MockFetcher)
	passwords := new(MockPasswords)
	url := "https://dav.example.com/contacts.vcf"

	passwords.On("Get", "bob").Return("", errors.New("not found"))
	fetcher.On("Fetch", mock.Anything, mock.MatchedBy(func(src engine.Source) bool {
		return src.User == "bob" && src.Password == ""
	})).Return(nil, errors.New("401 Unauthorized"))

	a := newAssistant(t, assistant.Options{
		Importer:  &engine.Importer{Fetcher: fetcher},
		Passwords: passwords,
	})

	reply, _ := a.Execute(context.Background(), "import "+url+" bob")
	assert.Contains(t, reply, "Import failed: ")
	assert.Contains(t, reply, "401 Unauthorized")
	fetcher.AssertExpectations(t)
}

func TestExport_WritesCalendar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "birthdays.ics")
	a := newAssistant(t, assistant.Options{ReminderTrigger: "-P1D"})

	runSteps(t, a, []step{
		{"add Alice", "Contact added."},
		{"add-birthday Alice 17.01.1990", "Birthday added for Alice"},
		{"add Bob 0123456789", "Contact added."},
		{"export " + path, "Exported 1 birthday to " + path + "."},
	})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "BEGIN:VCALENDAR")
	assert.Contains(t, content, "Birthday: Alice (34)")
	assert.Contains(t, content, "TRIGGER:-P1D")
	assert.NotContains(t, content, "Bob")
}

func TestExport_BadPath(t *testing.T) {
	a := newAssistant(t, assistant.Options{})

	reply, _ := a.Execute(context.Background(), "export "+filepath.Join(t.TempDir(), "missing", "out.ics"))
	assert.Contains(t, reply, "Export failed: ")
}

// -----------------------------------------------------------------------------
// Session loop
// -----------------------------------------------------------------------------

func TestRun_Session(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out bytes.Buffer
	a := newAssistant(t, assistant.Options{Out: &out})

	in := strings.NewReader("hello\nadd Bob 0123456789\nall\nexit\nadd Carol\n")
	require.NoError(t, a.Run(context.Background(), in))

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "Welcome to the assistant bot!\nEnter a command: "))
	assert.Contains(t, got, "How can I help you?\n")
	assert.Contains(t, got, "Contact added.\n")
	assert.Contains(t, got, "Contact name: Bob, phones: 0123456789\n")
	assert.True(t, strings.HasSuffix(got, "Goodbye!\n"))
	assert.Equal(t, 1, a.Book().Len(), "lines after exit are not processed")
}

func TestRun_EndOfInput(t *testing.T) {
	var out bytes.Buffer
	a := newAssistant(t, assistant.Options{Out: &out})

	require.NoError(t, a.Run(context.Background(), strings.NewReader("add Bob\n")))
	assert.Equal(t, 1, a.Book().Len())
	assert.NotContains(t, out.String(), "Goodbye!")
}

func TestRun_ContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	a := newAssistant(t, assistant.Options{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, pr) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestRun_ReadError(t *testing.T) {
	a := newAssistant(t, assistant.Options{})

	err := a.Run(context.Background(), failingReader{})
	assert.ErrorContains(t, err, config.ErrReadInput)
}

// -----------------------------------------------------------------------------
// Keyring
// -----------------------------------------------------------------------------

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	store := assistant.NewKeyringStore()

	_, err := store.Get("alice")
	assert.ErrorContains(t, err, config.ErrKeyring)

	require.NoError(t, store.Set("alice", "secret"))
	pass, err := store.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "secret", pass)
}
