package document

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// contentSelector matches the HTML elements considered content-bearing;
// everything else on a page (nav, scripts, footers) is ignored.
const contentSelector = "article, main, section, div, p, li, h1, h2, h3"

// Crawler fetches pages starting from seed URLs, following same-host links
// up to a maximum depth, and emits one web Document per unique
// (URL, trimmed text) pair.
type Crawler struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

func NewCrawler(logger *slog.Logger) *Crawler {
	return &Crawler{
		client:    &http.Client{Timeout: 20 * time.Second},
		userAgent: "mthotham-assistant/1.0",
		logger:    logger,
	}
}

type crawlTarget struct {
	url   string
	depth int
}

// Crawl walks the seed URLs breadth-first. Depth 1 fetches only the seeds
// themselves. Fetch and parse failures are logged and skipped; a crawl never
// fails as a whole.
func (c *Crawler) Crawl(ctx context.Context, seeds []string, maxDepth int) []Document {
	if maxDepth < 1 {
		maxDepth = 1
	}

	var docs []Document
	visited := make(map[string]bool)
	seenText := make(map[[2]string]bool)
	queue := make([]crawlTarget, 0, len(seeds))
	for _, s := range seeds {
		queue = append(queue, crawlTarget{url: s, depth: 1})
	}

	for len(queue) > 0 {
		target := queue[0]
		queue = queue[1:]

		if visited[target.url] {
			continue
		}
		visited[target.url] = true

		page, links, err := c.fetchPage(ctx, target.url, target.depth < maxDepth)
		if err != nil {
			c.logger.Warn("Failed to crawl page, skipping",
				slog.String("url", target.url),
				slog.String("error", err.Error()))
			continue
		}

		for _, text := range page {
			key := [2]string{target.url, text}
			if seenText[key] {
				continue
			}
			seenText[key] = true
			docs = append(docs, Document{
				Text:     text,
				Metadata: newMetadata(target.url, DocTypeWeb),
			})
		}

		for _, link := range links {
			if !visited[link] {
				queue = append(queue, crawlTarget{url: link, depth: target.depth + 1})
			}
		}
	}

	c.logger.Info("Crawl finished",
		slog.Int("pages_visited", len(visited)),
		slog.Int("documents", len(docs)))
	return docs
}

// fetchPage returns the trimmed text of every content-bearing element on the
// page and, when followLinks is set, the same-host links found on it.
func (c *Crawler) fetchPage(ctx context.Context, pageURL string, followLinks bool) ([]string, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	var texts []string
	doc.Find(contentSelector).Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			texts = append(texts, text)
		}
	})

	if !followLinks {
		return texts, nil, nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return texts, nil, nil
	}

	var links []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		// Stay on the seed's host; fragments point back at the same page.
		if resolved.Host != base.Host || resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		resolved.Fragment = ""
		links = append(links, resolved.String())
	})

	return texts, links, nil
}
