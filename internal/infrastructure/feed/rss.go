package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsTriage/internal/domain"
	"NewsTriage/internal/scanner"
)

const (
	defaultMaxEntries = 200
	userAgent         = "NewsTriage/1.0"
)

// rssDocument decodes both RSS 2.0 and Atom payloads.
type rssDocument struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Updated     string `xml:"updated"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// publishedLayouts is the fixed chain tried when resolving entry timestamps.
var publishedLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// RSSScanner polls syndicated feed endpoints and yields raw entries with
// stripped summaries and normalized timestamps.
type RSSScanner struct {
	client *http.Client
	logger *slog.Logger
}

var _ scanner.Scanner = (*RSSScanner)(nil)

// NewRSSScanner wires an HTTP client; the default carries a 15s timeout.
func NewRSSScanner(client *http.Client, logger *slog.Logger) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RSSScanner{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Scan fetches every configured feed. A failing feed is logged and skipped
// so one broken endpoint cannot take the whole run down.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.FeedEntry, error) {
	if len(req.Feeds) == 0 {
		return nil, fmt.Errorf("no feeds configured for source %s", req.SourceName)
	}

	maxEntries := req.MaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}

	var results []domain.FeedEntry
	for _, feed := range req.Feeds {
		entries, err := s.scanFeed(ctx, feed, maxEntries)
		if err != nil {
			s.logger.Warn("feed fetch failed", "feed", feed.Name, "url", feed.URL, "error", err)
			continue
		}
		if len(entries) == 0 {
			s.logger.Warn("feed returned no entries", "feed", feed.Name, "url", feed.URL)
		}
		results = append(results, entries...)
	}

	return results, nil
}

func (s *RSSScanner) scanFeed(ctx context.Context, feed scanner.Feed, maxEntries int) ([]domain.FeedEntry, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	var doc rssDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	label := strings.TrimSpace(doc.Channel.Title)
	if label == "" {
		label = strings.TrimSpace(doc.Title)
	}
	if label == "" {
		label = feed.Name
	}

	entries := make([]domain.FeedEntry, 0, len(doc.Channel.Items)+len(doc.Entries))
	for _, item := range doc.Channel.Items {
		entries = append(entries, domain.FeedEntry{
			Title:       strings.TrimSpace(item.Title),
			Link:        strings.TrimSpace(item.Link),
			Summary:     StripHTML(item.Description),
			PublishedAt: resolvePublished(item.PubDate, item.Updated),
			Source:      label,
			Feed:        label,
		})
	}

	for _, entry := range doc.Entries {
		summary := entry.Summary
		if summary == "" {
			summary = entry.Content
		}
		entries = append(entries, domain.FeedEntry{
			Title:       strings.TrimSpace(entry.Title),
			Link:        atomEntryLink(entry),
			Summary:     StripHTML(summary),
			PublishedAt: resolvePublished(entry.Published, entry.Updated),
			Source:      label,
			Feed:        label,
		})
	}

	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}

	return entries, nil
}

func atomEntryLink(entry atomEntry) string {
	for _, l := range entry.Links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(entry.Links) > 0 {
		return strings.TrimSpace(entry.Links[0].Href)
	}
	return ""
}

// resolvePublished tries each candidate upstream field against the layout
// chain and returns the first hit as UTC RFC3339, empty when nothing parses.
func resolvePublished(candidates ...string) string {
	for _, value := range candidates {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		for _, layout := range publishedLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t.UTC().Format(time.RFC3339)
			}
		}
	}
	return ""
}

// StripHTML removes markup from a feed summary and decodes entities,
// returning trimmed plain text. Unparseable input falls through trimmed.
func StripHTML(text string) string {
	if text == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(doc.Text())
}
