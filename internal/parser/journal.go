package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kitfox/den/internal/models"
)

// Journal entry headers look like "## 09:15 — heartbeat" or "## 09:15 build".
// The em-dash separator is what den writes; older hand-written journals used
// plain spaces, so the kind is simply the remainder of the line.
var entryHeaderRe = regexp.MustCompile(`^## (\d{1,2}:\d{2})(?:\s*[—-]\s*|\s+)(.*)$`)

// JournalPath returns the daily journal path for the given day.
func JournalPath(day time.Time) string {
	return fmt.Sprintf("memory/%s.md", day.Format("2006-01-02"))
}

// ParseJournal splits a daily journal file into its timestamped entries.
// day anchors the HH:MM headers to a calendar date; entries with malformed
// headers are folded into the preceding entry's body.
func ParseJournal(data []byte, day time.Time) ([]models.JournalEntry, error) {
	res, err := Parse(data)
	if err != nil {
		return nil, err
	}

	var out []models.JournalEntry
	var cur *models.JournalEntry

	flush := func() {
		if cur != nil {
			cur.Body = strings.TrimSpace(cur.Body)
			out = append(out, *cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(res.Body, "\n") {
		m := entryHeaderRe.FindStringSubmatch(line)
		if m == nil {
			if cur != nil {
				cur.Body += line + "\n"
			}
			continue
		}
		flush()
		at, err := anchorClock(m[1], day)
		if err != nil {
			// Unparseable clock, keep the text but mark the entry with the
			// day itself.
			at = day
		}
		cur = &models.JournalEntry{At: at, Kind: strings.TrimSpace(m[2])}
	}
	flush()

	return out, nil
}

// anchorClock combines an HH:MM string with a calendar day.
func anchorClock(clock string, day time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// FormatEntry renders a journal entry block the way den appends it.
func FormatEntry(e models.JournalEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s — %s\n", e.At.Format("15:04"), e.Kind)
	body := strings.TrimSpace(e.Body)
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
