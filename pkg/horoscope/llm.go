package horoscope

import (
	"context"
	"fmt"

	"github.com/mkarpov/notibot/internal/metrics"
	"github.com/mkarpov/notibot/internal/store"
	"github.com/mkarpov/notibot/pkg/openrouter"
)

const astroSystem = `You are a seasoned astrologer writing short daily horoscopes. Warm tone, a little mystical, never doom-laden. Do not mention that you are an AI.`

const dailyPrompt = `Write today's horoscope for the zodiac sign %s. Four to six sentences covering general mood, love, work, and one piece of practical advice.`

// LLMSource asks the active registry model for the daily text. Every
// call is audited through the store's service-call log.
type LLMSource struct {
	client *openrouter.Client
	db     store.Store
}

// NewLLM creates an LLM-backed horoscope source.
func NewLLM(client *openrouter.Client, db store.Store) *LLMSource {
	return &LLMSource{client: client, db: db}
}

func (s *LLMSource) Name() string { return "llm" }

func (s *LLMSource) Daily(ctx context.Context, sign string) (string, error) {
	model, err := s.db.ActiveModel(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve active model: %w", err)
	}

	prompt := fmt.Sprintf(dailyPrompt, sign)
	res, err := s.client.Complete(ctx, model.Key, astroSystem, prompt)

	errText := ""
	if err != nil {
		errText = err.Error()
	}
	s.db.RecordServiceCall(ctx, store.ServiceCall{
		Service:    "openrouter",
		Request:    model.Key + ": " + prompt,
		Response:   truncate(res.Text, 500),
		StatusCode: res.StatusCode,
		Duration:   res.Duration,
		Err:        errText,
	})
	metrics.ObserveProviderCall(res.StatusCode, res.Duration)

	if err != nil {
		return "", err
	}
	return res.Text, nil
}
