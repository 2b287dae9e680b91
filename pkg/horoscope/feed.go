package horoscope

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/k3a/html2text"
	"github.com/mmcdole/gofeed"
)

// FeedSource pulls the daily text from a per-sign RSS/Atom feed. The
// URL template gets the lower-cased sign substituted in.
type FeedSource struct {
	client      *http.Client
	parser      *gofeed.Parser
	urlTemplate string
}

// NewFeed creates an RSS-backed horoscope source.
func NewFeed(urlTemplate string) *FeedSource {
	return &FeedSource{
		client:      &http.Client{Timeout: 30 * time.Second},
		parser:      gofeed.NewParser(),
		urlTemplate: urlTemplate,
	}
}

func (s *FeedSource) Name() string { return "feed" }

func (s *FeedSource) Daily(ctx context.Context, sign string) (string, error) {
	feedURL := fmt.Sprintf(s.urlTemplate, url.QueryEscape(strings.ToLower(sign)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("User-Agent", "notibot/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch feed %s: %w", sign, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("feed %s status %d", sign, resp.StatusCode)
	}

	parsed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse feed %s: %w", sign, err)
	}
	if len(parsed.Items) == 0 {
		return "", fmt.Errorf("feed %s is empty", sign)
	}

	// Prefer the entry that names the sign, some feeds serve all twelve.
	entry := parsed.Items[0]
	for _, item := range parsed.Items {
		if strings.Contains(strings.ToLower(item.Title), strings.ToLower(sign)) {
			entry = item
			break
		}
	}

	body := entry.Description
	if body == "" {
		body = entry.Content
	}
	text := strings.TrimSpace(html2text.HTML2Text(body))
	if text == "" {
		return "", fmt.Errorf("feed %s entry has no text", sign)
	}
	return text, nil
}
