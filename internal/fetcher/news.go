package fetcher

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trigger-alerts/internal/classifier"
)

const maxFeedBodyBytes = 4 << 20

// NewsOptions parameterise the news feed fetcher.
type NewsOptions struct {
	FeedURLs  []string
	MaxEvents int
	Timeout   time.Duration
	UserAgent string
}

// News polls RSS/Atom feeds and converts their items into raw events.
type News struct {
	opts   NewsOptions
	logger zerolog.Logger
	client *http.Client
}

// NewNews constructs a news feed fetcher.
func NewNews(opts NewsOptions, logger zerolog.Logger) *News {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if opts.MaxEvents <= 0 {
		opts.MaxEvents = 10
	}

	return &News{
		opts:   opts,
		logger: logger.With().Str("component", "news_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// FetchLatest pulls every configured feed and returns a bounded batch of
// events. A single feed failure is logged and skipped; an error is returned
// only when no feed produced anything.
func (n *News) FetchLatest(ctx context.Context) ([]classifier.RawEvent, error) {
	if len(n.opts.FeedURLs) == 0 {
		return nil, errors.New("no feed urls configured")
	}

	events := make([]classifier.RawEvent, 0, n.opts.MaxEvents)
	var lastErr error

	for _, feedURL := range n.opts.FeedURLs {
		if len(events) >= n.opts.MaxEvents {
			break
		}

		feedEvents, err := n.fetchFeed(ctx, feedURL)
		if err != nil {
			lastErr = err
			n.logger.Warn().Err(err).Str("feed", feedURL).Msg("feed fetch failed; skipping")
			continue
		}

		for _, event := range feedEvents {
			if len(events) >= n.opts.MaxEvents {
				break
			}
			events = append(events, event)
		}
	}

	if len(events) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all feeds failed: %w", lastErr)
	}
	return events, nil
}

func (n *News) fetchFeed(ctx context.Context, feedURL string) ([]classifier.RawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")
	if ua := strings.TrimSpace(n.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "trigwatcher/1.0")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodyBytes))
	if err != nil {
		return nil, err
	}

	return parseFeed(body, feedURL)
}

type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

type atomDocument struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

func parseFeed(body []byte, feedURL string) ([]classifier.RawEvent, error) {
	var rss rssDocument
	if err := xml.Unmarshal(body, &rss); err == nil && rss.Channel.Title != "" {
		return rssEvents(rss, feedURL), nil
	}

	var atom atomDocument
	if err := xml.Unmarshal(body, &atom); err == nil && atom.Title != "" {
		return atomEvents(atom, feedURL), nil
	}

	return nil, errors.New("unable to parse as RSS or Atom feed")
}

func rssEvents(rss rssDocument, feedURL string) []classifier.RawEvent {
	source := rss.Channel.Title
	if source == "" {
		source = feedURL
	}

	events := make([]classifier.RawEvent, 0, len(rss.Channel.Items))
	for _, item := range rss.Channel.Items {
		events = append(events, classifier.RawEvent{
			ID:        eventID(feedURL, item.Link, item.Title),
			Source:    source,
			Title:     strings.TrimSpace(item.Title),
			Content:   strings.TrimSpace(item.Description),
			Timestamp: parseFeedDate(item.PubDate),
		})
	}
	return events
}

func atomEvents(atom atomDocument, feedURL string) []classifier.RawEvent {
	source := atom.Title
	if source == "" {
		source = feedURL
	}

	events := make([]classifier.RawEvent, 0, len(atom.Entries))
	for _, entry := range atom.Entries {
		link := ""
		for _, l := range entry.Links {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}

		published := entry.Published
		if published == "" {
			published = entry.Updated
		}

		events = append(events, classifier.RawEvent{
			ID:        eventID(feedURL, link, entry.Title),
			Source:    source,
			Title:     strings.TrimSpace(entry.Title),
			Content:   strings.TrimSpace(entry.Summary),
			Timestamp: parseFeedDate(published),
		})
	}
	return events
}

// eventID derives a deterministic id from the feed and item identity so
// repeated polls of the same article yield the same id.
func eventID(feedURL, link, title string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(feedURL+"|"+link+"|"+title)).String()
}

var feedDateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

func parseFeedDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now().UTC()
	}
	for _, format := range feedDateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

var _ EventFetcher = (*News)(nil)
