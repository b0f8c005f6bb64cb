// Package journal appends timestamped entries to daily markdown journals
// under memory/. Appends go through the workspace's atomic write so a
// crashed append never leaves a torn entry.
package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/kitfox/den/internal/models"
	"github.com/kitfox/den/internal/parser"
	"github.com/kitfox/den/internal/workspace"
)

// Service writes and reads daily journals.
type Service struct {
	ws     workspace.Provider
	logger *slog.Logger
	now    func() time.Time
}

func New(ws workspace.Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ws:     ws,
		logger: logger.With(slog.String("subsystem", "journal")),
		now:    time.Now,
	}
}

// header returns the frontmatter written when a day's journal is created.
func header(day time.Time) []byte {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: Journal %s\n", day.Format("2006-01-02"))
	fmt.Fprintf(&b, "date: %s\n", day.Format("2006-01-02"))
	b.WriteString("tags: [journal]\n")
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", day.Format("Monday, January 2, 2006"))
	return []byte(b.String())
}

// Append adds an entry to today's journal, creating the file with its
// frontmatter header on first write of the day. The written entry is
// returned with its timestamp filled in.
func (s *Service) Append(kind, body string) (*models.JournalEntry, error) {
	err := validation.Errors{
		"kind": validation.Validate(kind, validation.Required, validation.Length(1, 64)),
		"body": validation.Validate(body, validation.Length(0, 1<<16)),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}

	now := s.now()
	entry := models.JournalEntry{At: now, Kind: kind, Body: body}
	path := parser.JournalPath(now)
	if err := s.ws.Append(path, header(now), []byte(parser.FormatEntry(entry))); err != nil {
		return nil, fmt.Errorf("journal: append: %w", err)
	}
	s.logger.Debug("journal entry appended",
		slog.String("path", path),
		slog.String("kind", kind))
	return &entry, nil
}

// Entries returns the parsed entries of the given day's journal. A missing
// journal is an empty day, not an error.
func (s *Service) Entries(day time.Time) ([]models.JournalEntry, error) {
	data, err := s.ws.Read(parser.JournalPath(day))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("journal: read: %w", err)
	}
	entries, err := parser.ParseJournal(data, day)
	if err != nil {
		return nil, fmt.Errorf("journal: parse: %w", err)
	}
	return entries, nil
}
