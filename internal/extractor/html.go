// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// minStructuredWords is the point below which the structured walk is
// considered to have missed the page's content and the plain-text
// fallback is used instead.
const minStructuredWords = 50

var mainContentSelectors = []string{
	"main", "article", ".content", ".main-content",
	"#content", "#main", ".post-content", ".entry-content",
}

// FetchURL retrieves a page over HTTP and returns its HTML. Only HTML and
// XML content types are accepted.
func FetchURL(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; DocIngestor/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "xml") {
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// ExtractHTML pulls readable text out of an HTML page, preserving heading
// levels as markdown # prefixes and list items as dash bullets. Falls
// back to a plain text dump when the structured walk finds too little.
func ExtractHTML(html string) (text, title string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	// Remove chrome and non-content elements before extracting
	doc.Find("script, style, noscript, nav, header, footer, aside, form, button, input, select, textarea, iframe").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	// Prefer an identifiable main-content container
	content := doc.Selection
	for _, selector := range mainContentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			content = sel
			break
		}
	}
	if content == doc.Selection {
		if body := doc.Find("body").First(); body.Length() > 0 {
			content = body
		}
	}

	var parts []string
	content.Find("h1, h2, h3, h4, h5, h6, p, li").Each(func(i int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if len(t) <= 10 {
			return
		}
		t = strings.Join(strings.Fields(t), " ")
		switch tag := goquery.NodeName(s); tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(tag[1] - '0')
			parts = append(parts, "\n"+strings.Repeat("#", level)+" "+t+"\n")
		case "li":
			parts = append(parts, "- "+t)
		default:
			parts = append(parts, t)
		}
	})

	structured := strings.Join(parts, "\n\n")
	if len(strings.Fields(structured)) >= minStructuredWords {
		return structured, title, nil
	}

	// Structured walk missed the content; dump all remaining text.
	plain := content.Text()
	var lines []string
	for _, line := range strings.Split(plain, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), title, nil
}
