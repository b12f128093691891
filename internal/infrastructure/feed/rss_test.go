package feed

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsTriage/internal/scanner"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>WSJ.com: Markets</title>
    <item>
      <title>Oil prices jump 4%</title>
      <link>https://example.com/oil</link>
      <description>&lt;p&gt;Crude rallied &amp;amp; settled higher.&lt;/p&gt;</description>
      <pubDate>Mon, 02 Jun 2025 10:30:00 -0400</pubDate>
    </item>
    <item>
      <title>No date item</title>
      <link>https://example.com/nodate</link>
      <description>plain text</description>
      <pubDate>sometime soon</pubDate>
    </item>
  </channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <entry>
    <title>Atom story</title>
    <link rel="alternate" href="https://example.com/atom"/>
    <summary>summary text</summary>
    <published>2025-06-02T08:00:00Z</published>
  </entry>
</feed>`

func TestScanRSSFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client(), slog.Default())
	entries, err := sc.Scan(context.Background(), scanner.Request{
		SourceName: "wsj",
		Feeds:      []scanner.Feed{{Name: "Markets", URL: server.URL}},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Title != "Oil prices jump 4%" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Link != "https://example.com/oil" {
		t.Fatalf("unexpected link: %q", first.Link)
	}
	if first.Summary != "Crude rallied & settled higher." {
		t.Fatalf("summary should be stripped and decoded, got %q", first.Summary)
	}
	if first.PublishedAt != "2025-06-02T14:30:00Z" {
		t.Fatalf("published should normalize to UTC RFC3339, got %q", first.PublishedAt)
	}
	if first.Source != "WSJ.com: Markets" || first.Feed != "WSJ.com: Markets" {
		t.Fatalf("source label should come from the channel title, got %q/%q", first.Source, first.Feed)
	}

	if entries[1].PublishedAt != "" {
		t.Fatalf("unresolvable date must yield empty timestamp, got %q", entries[1].PublishedAt)
	}
}

func TestScanAtomFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleAtom))
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client(), slog.Default())
	entries, err := sc.Scan(context.Background(), scanner.Request{
		SourceName: "example",
		Feeds:      []scanner.Feed{{Name: "Atom", URL: server.URL}},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Link != "https://example.com/atom" {
		t.Fatalf("unexpected link: %q", entries[0].Link)
	}
	if entries[0].Summary != "summary text" {
		t.Fatalf("unexpected summary: %q", entries[0].Summary)
	}
	if entries[0].PublishedAt != "2025-06-02T08:00:00Z" {
		t.Fatalf("unexpected published: %q", entries[0].PublishedAt)
	}
}

func TestScanToleratesFailingFeed(t *testing.T) {
	t.Parallel()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer good.Close()

	sc := NewRSSScanner(nil, slog.Default())
	entries, err := sc.Scan(context.Background(), scanner.Request{
		SourceName: "mixed",
		Feeds: []scanner.Feed{
			{Name: "bad", URL: bad.URL},
			{Name: "good", URL: good.URL},
		},
	})
	if err != nil {
		t.Fatalf("one failing feed must not fail the scan: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected entries from the healthy feed, got %d", len(entries))
	}
}

func TestScanCapsEntriesPerFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<rss version="2.0"><channel><title>Big</title>` +
			`<item><title>a</title><link>https://example.com/1</link></item>` +
			`<item><title>b</title><link>https://example.com/2</link></item>` +
			`<item><title>c</title><link>https://example.com/3</link></item>` +
			`</channel></rss>`))
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client(), slog.Default())
	entries, err := sc.Scan(context.Background(), scanner.Request{
		SourceName: "big",
		Feeds:      []scanner.Feed{{Name: "Big", URL: server.URL}},
		MaxEntries: 2,
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected cap of 2 entries, got %d", len(entries))
	}
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"Plain text", "Plain text"},
		{"A &amp; B", "A & B"},
		{"  padded  ", "padded"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := StripHTML(tc.in); got != tc.want {
			t.Fatalf("StripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
