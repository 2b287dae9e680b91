package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mkarpov/notibot/internal/metrics"
	"github.com/mkarpov/notibot/internal/store"
	"github.com/mkarpov/notibot/pkg/openrouter"
)

func (b *Bot) cmdNoteAdd(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		b.reply(msg, "Usage: /note_add <note text>")
		return
	}

	id, err := b.db.AddNote(ctx, msg.From.ID, text)
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	if id == 0 {
		// Empty after trimming, too long, or a duplicate of an existing note.
		b.reply(msg, "Couldn't add that note. It may already exist, or the text is empty or too long.")
		return
	}
	metrics.NotesCreated.Inc()
	b.reply(msg, fmt.Sprintf("Note #%d added.", id))
}

func (b *Bot) cmdNoteList(ctx context.Context, msg *tgbotapi.Message) {
	limit := 10
	if n, ok := parseInt(msg.CommandArguments()); ok {
		limit = n
	}

	rows, err := b.db.ListNotes(ctx, msg.From.ID, limit)
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	b.reply(msg, formatNotes(rows))
}

func (b *Bot) cmdNoteFind(ctx context.Context, msg *tgbotapi.Message) {
	needle := strings.TrimSpace(msg.CommandArguments())
	if needle == "" {
		b.reply(msg, "Usage: /note_find <substring>")
		return
	}

	rows, err := b.db.SearchNotes(ctx, msg.From.ID, needle, 10)
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	if len(rows) == 0 {
		b.reply(msg, "Nothing found.")
		return
	}
	b.reply(msg, formatNotes(rows))
}

func (b *Bot) cmdNoteEdit(ctx context.Context, msg *tgbotapi.Message) {
	parts := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 2)
	if len(parts) < 2 {
		b.reply(msg, "Usage: /note_edit <id> <new text>")
		return
	}
	noteID, ok := parseInt(parts[0])
	newText := strings.TrimSpace(parts[1])
	if !ok || newText == "" {
		b.reply(msg, "Usage: /note_edit <id> <new text>")
		return
	}

	changed, err := b.db.UpdateNote(ctx, msg.From.ID, int64(noteID), newText)
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	if changed {
		b.reply(msg, "Done.")
	} else {
		b.reply(msg, "Not found (check the id).")
	}
}

func (b *Bot) cmdNoteDel(ctx context.Context, msg *tgbotapi.Message) {
	noteID, ok := parseInt(msg.CommandArguments())
	if !ok {
		b.reply(msg, "Usage: /note_del <id>")
		return
	}

	deleted, err := b.db.DeleteNote(ctx, msg.From.ID, int64(noteID))
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	if deleted {
		b.reply(msg, "Deleted.")
	} else {
		b.reply(msg, "Not found (check the id).")
	}
}

func (b *Bot) cmdNoteCount(ctx context.Context, msg *tgbotapi.Message) {
	total, err := b.db.CountNotes(ctx, msg.From.ID)
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	b.reply(msg, fmt.Sprintf("You have %d notes.", total))
}

func (b *Bot) cmdNoteExport(ctx context.Context, msg *tgbotapi.Message) {
	rows, err := b.db.AllNotes(ctx, msg.From.ID)
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	if len(rows) == 0 {
		b.reply(msg, "Nothing to export — no notes yet.")
		return
	}

	var buf bytes.Buffer
	for _, r := range rows {
		fmt.Fprintf(&buf, "%d\t%s\n", r.ID, r.Text)
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("notes_%d.txt", msg.From.ID),
		Bytes: buf.Bytes(),
	})
	if _, err := b.api.Send(doc); err != nil {
		b.log.Warn("send export failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg, "Couldn't send the export file, try again later.")
	}
}

func (b *Bot) cmdNoteStats(ctx context.Context, msg *tgbotapi.Message) {
	days := 7
	if n, ok := parseInt(msg.CommandArguments()); ok && n > 0 {
		days = n
	}

	rows, err := b.db.NoteStatsByDate(ctx, msg.From.ID, days)
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	if len(rows) == 0 {
		b.reply(msg, "No data yet.")
		return
	}
	b.reply(msg, "Last days:\n"+formatStats(rows))
}

func (b *Bot) cmdSign(ctx context.Context, msg *tgbotapi.Message) {
	sign := strings.TrimSpace(msg.CommandArguments())
	if sign == "" {
		b.reply(msg, "Usage: /sign <your zodiac sign>")
		return
	}

	if err := b.db.SetSign(ctx, msg.From.ID, sign); err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	b.reply(msg, fmt.Sprintf("Saved. Your sign: %s.", sign))
}

func (b *Bot) cmdHour(ctx context.Context, msg *tgbotapi.Message) {
	hour, ok := parseInt(msg.CommandArguments())
	if !ok {
		b.reply(msg, "Usage: /hour <0-23>")
		return
	}

	if err := b.db.SetNotifyHour(ctx, msg.From.ID, hour); err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	if hour < 0 {
		hour = 0
	} else if hour > 23 {
		hour = 23
	}
	b.reply(msg, fmt.Sprintf("Daily push hour set to %02d:00.", hour))
}

func (b *Bot) cmdSubscribe(ctx context.Context, msg *tgbotapi.Message, on bool) {
	if err := b.db.SetSubscribed(ctx, msg.From.ID, on); err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	if on {
		b.reply(msg, "Daily push enabled. Set your sign with /sign and the hour with /hour.")
	} else {
		b.reply(msg, "Daily push disabled.")
	}
}

func (b *Bot) cmdModels(ctx context.Context, msg *tgbotapi.Message) {
	models, err := b.db.ListModels(ctx)
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	if len(models) == 0 {
		b.reply(msg, "The model registry is empty.")
		return
	}
	b.reply(msg, "Models (* = active):\n"+formatModels(models)+"\nSwitch with /model <id>.")
}

func (b *Bot) cmdModelSet(ctx context.Context, msg *tgbotapi.Message) {
	id, ok := parseInt(msg.CommandArguments())
	if !ok {
		b.reply(msg, "Usage: /model <id> — see /models for the list.")
		return
	}

	m, err := b.db.SetActiveModel(ctx, int64(id))
	if errors.Is(err, store.ErrUnknownModel) {
		b.reply(msg, "Unknown model id. See /models for the list.")
		return
	}
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	metrics.ModelSwitches.Inc()
	b.reply(msg, fmt.Sprintf("Active model: %s.", m.Label))
}

func (b *Bot) cmdPersonas(ctx context.Context, msg *tgbotapi.Message) {
	chars, err := b.db.ListCharacters(ctx)
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	if len(chars) == 0 {
		b.reply(msg, "No personas configured.")
		return
	}

	current, err := b.db.CharacterForUser(ctx, msg.From.ID)
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	b.reply(msg, "Personas (* = yours):\n"+formatCharacters(chars, current.ID)+"\nPick one with /persona <id>.")
}

func (b *Bot) cmdPersonaSet(ctx context.Context, msg *tgbotapi.Message) {
	id, ok := parseInt(msg.CommandArguments())
	if !ok {
		b.reply(msg, "Usage: /persona <id> — see /personas for the list.")
		return
	}

	c, err := b.db.SetCharacterForUser(ctx, msg.From.ID, int64(id))
	if errors.Is(err, store.ErrUnknownCharacter) {
		b.reply(msg, "Unknown persona id. See /personas for the list.")
		return
	}
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}
	b.reply(msg, fmt.Sprintf("Your persona is now %s.", c.Name))
}

func (b *Bot) cmdAsk(ctx context.Context, msg *tgbotapi.Message, random bool) {
	question := strings.TrimSpace(msg.CommandArguments())
	if question == "" {
		if random {
			b.reply(msg, "Usage: /ask_random <question>")
		} else {
			b.reply(msg, "Usage: /ask <question>")
		}
		return
	}
	if b.llm == nil {
		b.reply(msg, "Chat is not configured: set OPENROUTER_API_KEY.")
		return
	}

	model, err := b.db.ActiveModel(ctx)
	if errors.Is(err, store.ErrEmptyRegistry) {
		b.reply(msg, "The model registry is empty.")
		return
	}
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}

	var char *store.Character
	if random {
		char, err = b.db.RandomCharacter(ctx)
	} else {
		char, err = b.db.CharacterForUser(ctx, msg.From.ID)
	}
	if errors.Is(err, store.ErrEmptyCatalog) {
		b.reply(msg, "No personas configured.")
		return
	}
	if err != nil {
		b.storeError(ctx, msg, err)
		return
	}

	res, err := b.llm.Complete(ctx, model.Key, char.Prompt, question)

	errText := ""
	if err != nil {
		errText = err.Error()
	}
	b.db.RecordServiceCall(ctx, store.ServiceCall{
		Service:    "openrouter",
		Request:    model.Key + ": " + truncate(question, 200),
		Response:   truncate(res.Text, 500),
		StatusCode: res.StatusCode,
		Duration:   res.Duration,
		Err:        errText,
	})
	metrics.ObserveProviderCall(res.StatusCode, res.Duration)

	if err != nil {
		b.log.Warn("provider call failed",
			zap.Int64("user_id", msg.From.ID),
			zap.Int("status", res.StatusCode),
			zap.Error(err))
		b.db.RecordError(ctx, store.ErrorEntry{
			Level:   "warn",
			Source:  "bot",
			Message: "provider call failed",
			UserID:  msg.From.ID,
			Command: msg.Command(),
			Details: err.Error(),
		})
		b.reply(msg, openrouter.Friendly(res.StatusCode))
		return
	}

	answer := res.Text
	if random {
		answer = char.Name + ":\n" + answer
	}
	b.reply(msg, answer)
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

func errorIsBusy(err error) bool {
	return errors.Is(err, store.ErrStoreBusy)
}
