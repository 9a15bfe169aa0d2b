// Package report turns raw analysis text and extracted findings into display
// markup and into the downloadable PDF document.
package report

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/psychai/psychai/internal/extract"
)

// NoConfidencePlaceholder is rendered when no confidence entries were found.
const NoConfidencePlaceholder = "<p>No confidence metrics found in analysis</p>"

var (
	codeFenceRe   = regexp.MustCompile("(?s)```(?:\\w+)?\\n(.*?)```")
	fencedBlockRe = regexp.MustCompile("(?s)```.*?```")
	headingRe     = regexp.MustCompile(`#+\s(.*?)\n`)
	sectionBreak  = regexp.MustCompile(`\n#+\s`)
)

// CleanText strips fenced code-block delimiters while preserving their inner
// content.
func CleanText(text string) string {
	if text == "" {
		return "No analysis available"
	}
	return codeFenceRe.ReplaceAllString(text, "$1")
}

// NewlineToBreak converts newlines to HTML line breaks.
func NewlineToBreak(text string) string {
	return strings.ReplaceAll(text, "\n", "<br>")
}

// ConfidenceBars renders one percentage-filled bar per entry, visually
// clamped to [0,100]. An empty slice renders the placeholder message.
func ConfidenceBars(entries []extract.ConfidenceEntry) string {
	if len(entries) == 0 {
		return NoConfidencePlaceholder
	}

	var b strings.Builder
	for _, e := range entries {
		percent := e.Percent
		if percent < 0 {
			percent = 0
		} else if percent > 100 {
			percent = 100
		}
		fmt.Fprintf(&b, `
<div class="confidence-container">
    <div class="confidence-label">%s</div>
    <div class="confidence-bar">
        <div class="confidence-bar-inner" style="width: %d%%;">%d%%</div>
    </div>
</div>
`, html.EscapeString(e.Label), percent, percent)
	}
	return b.String()
}

// DiagnosisSections splits the text on heading markers and renders each
// section as a diagnosis card. Text without headings is wrapped as a single
// card rather than producing empty output.
func DiagnosisSections(text string) string {
	if text == "" {
		return "No diagnostic information available"
	}

	cleaned := fencedBlockRe.ReplaceAllString(text, "")

	var b strings.Builder
	for _, section := range splitSections(cleaned) {
		if strings.TrimSpace(section) == "" {
			continue
		}
		section = applyFirstBoldPair(section)
		section = headingRe.ReplaceAllString(section, `<div class="section-header">${1}</div>`)
		section = NewlineToBreak(section)
		fmt.Fprintf(&b, `<div class="diagnosis-item">%s</div>`, strings.TrimSpace(section))
	}

	if b.Len() == 0 {
		return fmt.Sprintf(`<div class="diagnosis-item">%s</div>`, strings.TrimSpace(cleaned))
	}
	return b.String()
}

// splitSections breaks the text before each newline-prefixed heading marker,
// keeping the marker with the section that follows it.
func splitSections(s string) []string {
	var out []string
	start := 0
	for _, loc := range sectionBreak.FindAllStringIndex(s, -1) {
		out = append(out, s[start:loc[0]])
		start = loc[0] + 1
	}
	return append(out, s[start:])
}

// applyFirstBoldPair turns the first two bold markers of a section into an
// open/close strong pair, whether or not they were authored as a pair. An odd
// marker count therefore produces visibly wrong emphasis; that is the
// documented behavior, kept narrow on purpose.
func applyFirstBoldPair(section string) string {
	first := strings.Index(section, "**")
	if first < 0 {
		return section
	}
	rest := section[first+2:]
	second := strings.Index(rest, "**")
	if second < 0 {
		return section[:first] + "<strong>" + rest
	}
	return section[:first] + "<strong>" + rest[:second] + "</strong>" + rest[second+2:]
}
