package bot

import (
	"fmt"
	"strings"

	"github.com/mkarpov/notibot/internal/store"
)

const helpText = `Hi! I keep your notes and send a daily horoscope.

Notes:
  /note_add <text>
  /note_list [N]
  /note_find <substring>
  /note_edit <id> <text>
  /note_del <id>
  /note_count
  /note_export
  /note_stats [days]

Daily push:
  /sign <zodiac sign>
  /hour <0-23>
  /subscribe — /unsubscribe

Chat:
  /ask <question>
  /ask_random <question>
  /models — /model <id>
  /personas — /persona <id>`

func formatNotes(rows []store.Note) string {
	if len(rows) == 0 {
		return "You have no notes yet."
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%d: %s", r.ID, r.Text)
	}
	return strings.Join(lines, "\n")
}

// bar renders the histogram strip, capped at 30 dots so long days do
// not stretch the message.
func bar(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 30 {
		n = 30
	}
	return strings.Repeat("·", n)
}

func formatStats(rows []store.DateCount) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%s: %s %d", r.Date, bar(r.Total), r.Total)
	}
	return strings.Join(lines, "\n")
}

func formatModels(models []store.Model) string {
	lines := make([]string, len(models))
	for i, m := range models {
		marker := "  "
		if m.Active {
			marker = "* "
		}
		lines[i] = fmt.Sprintf("%s%d. %s", marker, m.ID, m.Label)
	}
	return strings.Join(lines, "\n")
}

func formatCharacters(chars []store.Character, currentID int64) string {
	lines := make([]string, len(chars))
	for i, c := range chars {
		marker := "  "
		if c.ID == currentID {
			marker = "* "
		}
		lines[i] = fmt.Sprintf("%s%d. %s", marker, c.ID, c.Name)
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
