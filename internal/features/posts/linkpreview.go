package posts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/codeGROOVE-dev/retry"
)

var urlRegex = regexp.MustCompile(`https?://[^\s]+`)

// FirstLink returns the first http(s) URL in the text, or ""
func FirstLink(text string) string {
	return urlRegex.FindString(text)
}

// Scraper fetches link preview metadata for post URLs
type Scraper struct {
	client *http.Client
}

func NewScraper() *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchPreview fetches the page and extracts Open Graph metadata, retrying
// transient failures with backoff. Non-2xx terminal responses yield a bare
// preview carrying only the URL.
func (s *Scraper) FetchPreview(ctx context.Context, targetURL string) (*LinkPreview, error) {
	var preview *LinkPreview

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; DevLinkBot/1.0)")
			req.Header.Set("Accept", "text/html,application/xhtml+xml")

			resp, err := s.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 {
				return fmt.Errorf("HTTP %d", resp.StatusCode)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				preview = &LinkPreview{URL: targetURL}
				return nil
			}

			doc, err := goquery.NewDocumentFromReader(resp.Body)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			preview = parsePreview(doc, targetURL)
			return nil
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch preview: %w", err)
	}

	return preview, nil
}

// parsePreview extracts metadata with Open Graph tags taking priority over
// plain HTML equivalents
func parsePreview(doc *goquery.Document, baseURL string) *LinkPreview {
	preview := &LinkPreview{URL: baseURL}

	preview.Title = metaContent(doc, `meta[property="og:title"]`)
	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	preview.Description = metaContent(doc, `meta[property="og:description"]`)
	if preview.Description == "" {
		preview.Description = metaContent(doc, `meta[name="description"]`)
	}

	image := metaContent(doc, `meta[property="og:image"]`)
	if image == "" {
		image = metaContent(doc, `meta[name="twitter:image"]`)
	}
	preview.ImageURL = resolveURL(baseURL, image)

	preview.SiteName = metaContent(doc, `meta[property="og:site_name"]`)

	if href, ok := doc.Find(`link[rel~="icon"]`).First().Attr("href"); ok {
		preview.Favicon = resolveURL(baseURL, href)
	}

	return preview
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// resolveURL resolves relative URLs against the base URL
func resolveURL(baseURLStr, relativeURL string) string {
	if relativeURL == "" {
		return ""
	}

	baseURL, err := url.Parse(baseURLStr)
	if err != nil {
		return relativeURL
	}
	relURL, err := url.Parse(relativeURL)
	if err != nil {
		return relativeURL
	}

	return baseURL.ResolveReference(relURL).String()
}
