package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-addressbook/internal/config"
)

// Source describes where vCards are read from.
type Source struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string // Path to the .vcf file
	URL       string // CardDAV or WebDAV URL
	User      string // HTTP Basic Auth Username
	Password  string // HTTP Basic Auth Password
}

// SourceFromLocation builds a Source from a path or an http(s) URL.
func SourceFromLocation(location, user string) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, config.SchemeHTTP+"://") || strings.HasPrefix(lower, config.SchemeHTTPS+"://") {
		return Source{Mode: config.SourceModeWeb, URL: location, User: user}
	}
	return Source{Mode: config.SourceModeLocal, LocalPath: location}
}

// Importer reads contacts out of vCard streams.
type Importer struct {
	Fetcher VCardFetcher // Used for config.SourceModeWeb.
}

// Import opens the source and decodes every card it contains.
// Malformed cards and unusable birthdays are skipped, never fatal.
func (im *Importer) Import(ctx context.Context, src Source) ([]Card, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, src.Mode,
	)
	log.InfoContext(ctx, config.MsgImportStarted)

	reader, err := im.acquireStream(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cards, err := decodeCards(ctx, reader)
	if err == nil {
		log.Debug(config.MsgImportDone,
			config.LogKeyCount, len(cards),
			config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return cards, err
}

// acquireStream opens the appropriate data source based on configuration.
func (im *Importer) acquireStream(ctx context.Context, src Source) (io.ReadCloser, error) {
	switch src.Mode {
	case config.SourceModeLocal:
		if src.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.LocalPath)
	case config.SourceModeWeb:
		if src.URL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return im.Fetcher.Fetch(ctx, src)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}

// decodeCards walks the vCard stream and converts each card.
// A failing reader ends the import; only malformed cards are skipped.
func decodeCards(ctx context.Context, r io.Reader) ([]Card, error) {
	src := &stickyReader{r: r}
	decoder := vcard.NewDecoder(src)
	stats := struct{ processed, withBday int }{}
	cards := []Card{}

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		vc, err := decoder.Decode()
		if src.err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, src.err)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A broken card does not invalidate the rest of the stream.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}
		stats.processed++

		card := Card{
			Name:   cardName(vc),
			Phones: cardPhones(vc),
		}

		if bday := vc.Get(config.VCardBDAY); bday != nil && bday.Value != "" {
			birthDate, yearKnown, err := parseDate(bday.Value)
			if err != nil {
				slog.Debug(config.MsgSkippedDate,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyName, card.Name,
					config.LogKeyValue, bday.Value)
			} else {
				stats.withBday++
				card.YearKnown = yearKnown
				card.Birthday = birthDate.Format(config.BirthdayFormat)
				if !yearKnown {
					card.Birthday = birthDate.Format(config.BirthdayFormatNoYear)
				}
			}
		}

		cards = append(cards, card)
	}

	slog.Info(config.MsgImportDone,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withBday),
		),
	)
	return cards, nil
}

// stickyReader records the first non-EOF read error of the underlying stream.
type stickyReader struct {
	r   io.Reader
	err error
}

func (s *stickyReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}

// cardName applies the strategy FN (Formatted) > N (Structured) > Fallback.
func cardName(vc vcard.Card) string {
	if fn := vc.Get(config.VCardFN); fn != nil && strings.TrimSpace(fn.Value) != "" {
		return strings.TrimSpace(fn.Value)
	}
	if n := vc.Name(); n != nil {
		full := strings.TrimSpace(strings.Join(strings.Fields(n.GivenName+" "+n.FamilyName), " "))
		if full != "" {
			return full
		}
	}
	return config.FallbackName
}

// cardPhones keeps only the digits of every TEL value.
func cardPhones(vc vcard.Card) []string {
	var phones []string
	for _, v := range vc.Values(config.VCardTEL) {
		digits := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return r
			}
			return -1
		}, v)
		if digits != "" {
			phones = append(phones, digits)
		}
	}
	return phones
}

// parseDate handles various vCard date formats.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates (Year unknown) are validated against a leap year so --02-29 survives.
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			safeDate := time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return safeDate, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
