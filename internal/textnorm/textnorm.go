// Package textnorm cleans program announcement markup and matches keywords
// against the cleaned text.
package textnorm

import (
	"math"
	"regexp"
	"strings"
	"sync"
)

var (
	scriptBlock = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlock  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	markupTag   = regexp.MustCompile(`<[^>]+>`)
	namedEntity = regexp.MustCompile(`(?i)&[a-z]+;`)
	whitespace  = regexp.MustCompile(`\s+`)

	shortAcronym = regexp.MustCompile(`(?i)^[a-z]{2,3}$`)

	entities = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

// boundary lists the characters that may flank a short acronym.
const boundary = `[\s,.;:()\[\]{}'"·•-]`

var boundaryPatterns sync.Map

// StripMarkup returns the plain text of an HTML fragment.
func StripMarkup(text string) string {
	if text == "" {
		return ""
	}

	// Decoded entities may form new tags, so the pass runs until it is stable.
	// Every changing pass except whitespace canonicalisation shortens the text.
	current := text
	for {
		next := stripOnce(current)
		if next == current {
			return next
		}
		current = next
	}
}

func stripOnce(text string) string {
	text = scriptBlock.ReplaceAllString(text, " ")
	text = styleBlock.ReplaceAllString(text, " ")
	text = markupTag.ReplaceAllString(text, " ")
	text = entities.Replace(text)
	text = namedEntity.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// MatchKeyword reports whether keyword occurs in text, case-insensitively.
// Two and three letter alphabetic keywords must stand on their own so that
// "IT" does not match inside "ITEMS".
func MatchKeyword(text, keyword string) bool {
	keyword = strings.TrimSpace(keyword)
	if text == "" || keyword == "" {
		return false
	}

	if shortAcronym.MatchString(keyword) {
		return acronymPattern(keyword).MatchString(text)
	}

	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}

func acronymPattern(keyword string) *regexp.Regexp {
	key := strings.ToLower(keyword)
	if cached, ok := boundaryPatterns.Load(key); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)(?:^|` + boundary + `)` + regexp.QuoteMeta(key) + `(?:` + boundary + `|$)`)
	actual, _ := boundaryPatterns.LoadOrStore(key, re)
	return actual.(*regexp.Regexp)
}

// MatchedKeywords returns the keywords found in the cleaned text, in input order.
func MatchedKeywords(text string, keywords []string) []string {
	if text == "" || len(keywords) == 0 {
		return nil
	}

	clean := StripMarkup(text)
	var matched []string
	for _, keyword := range keywords {
		if MatchKeyword(clean, keyword) {
			matched = append(matched, keyword)
		}
	}
	return matched
}

// KeywordCoverage scores how well text covers keywords. Finding 30% of the
// keywords already counts as full coverage.
func KeywordCoverage(text string, keywords []string) float64 {
	if text == "" || len(keywords) == 0 {
		return 0
	}

	matches := float64(len(MatchedKeywords(text, keywords)))
	required := math.Max(float64(len(keywords))*0.3, 1)
	return math.Min(matches/required, 1)
}

// ContainsAny reports whether text contains any of needles as a plain substring.
func ContainsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
