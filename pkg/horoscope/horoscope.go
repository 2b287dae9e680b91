// Package horoscope produces the daily per-sign text for the push
// scheduler. Two sources exist: the configured LLM with the active
// model from the registry, and a plain RSS horoscope feed used when no
// provider key is configured.
package horoscope

import "context"

// Source produces one daily horoscope for a zodiac sign.
type Source interface {
	Name() string
	Daily(ctx context.Context, sign string) (string, error)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
