// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package normalizer

import (
	"regexp"
	"strings"
)

// Options controls the heuristic thresholds used while cleaning text.
// The defaults were tuned against scanned reports and scraped pages; they
// are exposed here so they can be re-tuned per corpus without code changes.
type Options struct {
	// MinRepeatCount is the minimum number of exact-match occurrences a
	// line needs before it is considered a repeated header/footer.
	MinRepeatCount int
	// MaxRepeatRatio caps the occurrence count relative to the total line
	// count. A line repeated more often than total*ratio is treated as
	// body text, not a header.
	MaxRepeatRatio float64
	// HeadingMaxWordsAllCaps bounds rule 1 of heading detection.
	HeadingMaxWordsAllCaps int
	// HeadingMaxWordsColon bounds rule 2 of heading detection.
	HeadingMaxWordsColon int
	// HeadingMaxWordsKeyword bounds rule 3 of heading detection.
	HeadingMaxWordsKeyword int
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		MinRepeatCount:         3,
		MaxRepeatRatio:         0.1,
		HeadingMaxWordsAllCaps: 10,
		HeadingMaxWordsColon:   8,
		HeadingMaxWordsKeyword: 6,
	}
}

// Normalizer turns ragged extracted text into consistently formatted text.
// All methods are pure; a Normalizer is safe for concurrent use.
type Normalizer struct {
	opts Options
}

// New creates a normalizer with default options.
func New() *Normalizer {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a normalizer with the given options.
func NewWithOptions(opts Options) *Normalizer {
	if opts.MinRepeatCount <= 0 {
		opts.MinRepeatCount = 3
	}
	if opts.MaxRepeatRatio <= 0 {
		opts.MaxRepeatRatio = 0.1
	}
	if opts.HeadingMaxWordsAllCaps <= 0 {
		opts.HeadingMaxWordsAllCaps = 10
	}
	if opts.HeadingMaxWordsColon <= 0 {
		opts.HeadingMaxWordsColon = 8
	}
	if opts.HeadingMaxWordsKeyword <= 0 {
		opts.HeadingMaxWordsKeyword = 6
	}
	return &Normalizer{opts: opts}
}

var (
	pageMarkerRe = regexp.MustCompile(`^-{2,}\s*Page\s+\d+\s*-{2,}$`)

	headerFooterRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^page\s+\d+(\s+of\s+\d+)?$`),
		regexp.MustCompile(`^\d+\s*\|`),
		regexp.MustCompile(`\|\s*\d+$`),
		regexp.MustCompile(`(?i)copyright|\x{00A9}|\(c\)\s*\d{4}`),
		regexp.MustCompile(`^(https?://|www\.)\S+$`),
		regexp.MustCompile(`^\S+@\S+\.\S+$`),
		regexp.MustCompile(`(?i)^(confidential|internal use only|draft)$`),
	}

	socialDomainRe = regexp.MustCompile(`(?i)(facebook|twitter|instagram|linkedin|youtube|tiktok)\.com`)
	socialHandleRe = regexp.MustCompile(`(^|\s)@[A-Za-z0-9_]{2,}\b`)

	footerPhrases = []string{
		"follow us",
		"connect with us",
		"visit us at",
		"contact us",
		"privacy policy",
		"terms of service",
	}

	headingKeywords = []string{
		"introduction",
		"overview",
		"background",
		"summary",
		"conclusion",
		"recommendations",
		"references",
		"appendix",
		"executive summary",
		"table of contents",
		"abstract",
		"methodology",
		"results",
		"discussion",
		"acknowledgments",
	}

	spaceRunRe = regexp.MustCompile(`[ \t]{2,}`)
)

// CleanAndFormatText applies the full cleaning pass in fixed order:
// page-marker removal, repeated header/footer removal, per-line cleaning
// (social-link removal, bullet normalization, heading detection), then
// heading spacing. A failure in a per-line transform leaves that line
// unmodified and never fails the document.
func (n *Normalizer) CleanAndFormatText(raw string) string {
	text := n.RemovePageMarkers(raw)

	lines := strings.Split(text, "\n")
	lines = n.RemoveRepeatedHeadersFooters(lines)

	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			cleaned = append(cleaned, "")
			continue
		}
		if n.safeBool(trimmed, n.IsSocialLinkOrFooter) {
			continue
		}
		out := n.safeLine(trimmed, n.collapseSpaces)
		out = n.safeLine(out, n.NormalizeBullets)
		out = n.safeLine(out, n.DetectAndFormatHeading)
		cleaned = append(cleaned, out)
	}

	cleaned = collapseBlankRuns(cleaned)
	cleaned = n.FixHeadingSpacing(cleaned)

	return strings.TrimRight(strings.Join(cleaned, "\n"), "\n")
}

// RemovePageMarkers strips the synthetic "--- Page N ---" separators that
// the extraction step inserts between pages.
func (n *Normalizer) RemovePageMarkers(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if pageMarkerRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// RemoveRepeatedHeadersFooters drops every occurrence of lines that repeat
// across the document within the [MinRepeatCount, total*MaxRepeatRatio]
// window and look like a running header or footer. Lines occurring once
// are never touched.
func (n *Normalizer) RemoveRepeatedHeadersFooters(lines []string) []string {
	counts := make(map[string]int, len(lines))
	for _, line := range lines {
		key := strings.TrimSpace(line)
		if key != "" {
			counts[key]++
		}
	}

	limit := float64(len(lines)) * n.opts.MaxRepeatRatio

	drop := make(map[string]bool)
	for key, count := range counts {
		if count < n.opts.MinRepeatCount || float64(count) > limit {
			continue
		}
		if n.LooksLikeHeaderFooter(key) {
			drop[key] = true
		}
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if drop[strings.TrimSpace(line)] {
			continue
		}
		out = append(out, line)
	}
	return out
}

// LooksLikeHeaderFooter reports whether a line has the shape of a running
// header or footer: page numbers, copyright notices, bare URLs or emails,
// classification markers, or a short all-caps running title.
func (n *Normalizer) LooksLikeHeaderFooter(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, re := range headerFooterRes {
		if re.MatchString(trimmed) {
			return true
		}
	}
	// Short all-caps lines repeated across pages are running titles.
	if isAllCaps(trimmed) && wordCount(trimmed) <= n.opts.HeadingMaxWordsAllCaps {
		return true
	}
	return false
}

// IsSocialLinkOrFooter reports whether a line is social-media boilerplate
// or a stock footer phrase. Matching lines are dropped entirely.
func (n *Normalizer) IsSocialLinkOrFooter(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if socialDomainRe.MatchString(trimmed) {
		return true
	}
	if socialHandleRe.MatchString(trimmed) {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, phrase := range footerPhrases {
		if strings.HasPrefix(lower, phrase) {
			return true
		}
	}
	return false
}

var (
	topBulletRe    = regexp.MustCompile(`^(\s*)[\x{2022}\x{25CF}\x{25A0}]\s*`)
	nestedBulletRe = regexp.MustCompile(`^(\s*)[\x{25E6}\x{25AA}]\s*`)
	dashBulletRe   = regexp.MustCompile(`^(\s*)-\s+`)
	numParenRe     = regexp.MustCompile(`^(\s*)\(?(\d+)\)\s*`)
	alphaParenRe   = regexp.MustCompile(`^(\s*)\(?([a-z])\)\s*`)
)

// NormalizeBullets maps unicode bullet glyphs and parenthesised list
// markers to markdown conventions with exactly one space after the marker.
func (n *Normalizer) NormalizeBullets(line string) string {
	if m := topBulletRe.FindStringSubmatch(line); m != nil {
		return m[1] + "- " + line[len(m[0]):]
	}
	if m := nestedBulletRe.FindStringSubmatch(line); m != nil {
		return m[1] + "  - " + line[len(m[0]):]
	}
	if m := dashBulletRe.FindStringSubmatch(line); m != nil {
		return m[1] + "- " + line[len(m[0]):]
	}
	if m := numParenRe.FindStringSubmatch(line); m != nil {
		return m[1] + m[2] + ". " + line[len(m[0]):]
	}
	if m := alphaParenRe.FindStringSubmatch(line); m != nil {
		return m[1] + m[2] + ". " + line[len(m[0]):]
	}
	return line
}

// DetectAndFormatHeading applies three ordered heading rules, first match
// wins: a short all-caps line becomes a title-cased heading, a short line
// ending in a colon becomes a heading with the colon stripped, and a line
// matching a known section keyword becomes a heading verbatim. Lines that
// are already headings or list items pass through.
func (n *Normalizer) DetectAndFormatHeading(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || isListItem(trimmed) {
		return line
	}

	words := wordCount(trimmed)

	if isAllCaps(trimmed) && words <= n.opts.HeadingMaxWordsAllCaps {
		return "### " + titleCase(trimmed)
	}

	if strings.HasSuffix(trimmed, ":") && words <= n.opts.HeadingMaxWordsColon {
		return "### " + strings.TrimSpace(strings.TrimSuffix(trimmed, ":"))
	}

	if words <= n.opts.HeadingMaxWordsKeyword {
		lower := strings.ToLower(trimmed)
		for _, kw := range headingKeywords {
			if lower == kw || strings.HasPrefix(lower, kw+" ") {
				return "### " + trimmed
			}
		}
	}

	return line
}

// FixHeadingSpacing ensures exactly one blank line precedes every heading
// except when the heading is the first line of the document.
func (n *Normalizer) FixHeadingSpacing(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") && len(out) > 0 {
			// Strip any blank run directly above, then add one.
			for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
				out = out[:len(out)-1]
			}
			if len(out) > 0 {
				out = append(out, "")
			}
		}
		out = append(out, line)
	}
	return out
}

// collapseSpaces squeezes runs of spaces and tabs inside a line to a
// single space, leaving leading indentation alone.
func (n *Normalizer) collapseSpaces(line string) string {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	body := line[len(indent):]
	return indent + spaceRunRe.ReplaceAllString(body, " ")
}

// safeLine applies a per-line transform, passing the line through
// unmodified if the transform panics. One bad line must never fail the
// whole document.
func (n *Normalizer) safeLine(line string, fn func(string) string) (out string) {
	out = line
	defer func() {
		if r := recover(); r != nil {
			out = line
		}
	}()
	return fn(line)
}

func (n *Normalizer) safeBool(line string, fn func(string) bool) (out bool) {
	defer func() {
		if r := recover(); r != nil {
			out = false
		}
	}()
	return fn(line)
}

func collapseBlankRuns(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(out) == 0 || strings.TrimSpace(out[len(out)-1]) == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, line)
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// isAllCaps reports whether a line contains letters and none of them are
// lowercase.
func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

var listItemRe = regexp.MustCompile(`^(\d+|[a-z])\.\s`)

func isListItem(s string) bool {
	if strings.HasPrefix(s, "- ") || s == "-" {
		return true
	}
	return listItemRe.MatchString(s)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		for j, r := range runes {
			if r >= 'a' && r <= 'z' {
				runes[j] = r - 32
				break
			}
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
