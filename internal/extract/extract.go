// Package extract pulls structured findings out of free-form model text.
//
// Every pass is a pure function over the raw string: passes never fail, they
// degrade to a sentinel or an empty collection when nothing matches. The rules
// are intentionally narrow; when the upstream prompt changes, this package is
// the only place the patterns need updating.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// NoTreatmentPlan is returned when the text contains no recognizable plan.
const NoTreatmentPlan = "No specific treatment plan found"

// ConfidenceEntry is one "<label>: ... (Confidence: <n>%)" occurrence.
type ConfidenceEntry struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

var (
	planHeadingRe = regexp.MustCompile(`(?im)^.*\b(?:Suggested|Recommended|Treatment)\b.*$`)
	bulletLineRe  = regexp.MustCompile(`^[ \t]*[-*•]`)
	numberedRe    = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]`)

	diagnosisRe  = regexp.MustCompile(`(?im)(?:Possible Diagnosis|Potential Disorder):?\s*(.*?)\s*(?:\(Confidence:|$)`)
	confidenceRe = regexp.MustCompile(`(.*?):.*?\(Confidence:\s*(\d+)%\)`)
	medsBlockRe  = regexp.MustCompile(`(?is)Medications:\s*(.*?)(?:\n[ \t]*\n|$)`)
)

// TreatmentPlan captures the bulleted block under the first heading that
// mentions Suggested, Recommended or Treatment, up to the next numbered
// section or end of text. No heading means the sentinel, never an error.
func TreatmentPlan(text string) string {
	for _, loc := range planHeadingRe.FindAllStringIndex(text, -1) {
		rest := strings.TrimLeft(text[loc[1]:], "\n")
		if !bulletLineRe.MatchString(rest) {
			continue
		}
		if m := numberedRe.FindStringIndex(rest); m != nil {
			rest = rest[:m[0]]
		}
		if plan := strings.TrimSpace(rest); plan != "" {
			return plan
		}
	}
	return NoTreatmentPlan
}

// Diagnoses collects every "Possible Diagnosis:" / "Potential Disorder:"
// mention, deduplicated by exact string. The underlying result is a set; the
// slice is sorted only so callers get deterministic output.
func Diagnoses(text string) []string {
	seen := make(map[string]struct{})
	for _, m := range diagnosisRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		seen[name] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Confidences collects (label, percent) pairs in document order. Duplicate
// labels are kept. A percent that does not parse as an integer in [0,100] is
// dropped, never defaulted.
func Confidences(text string) []ConfidenceEntry {
	var out []ConfidenceEntry
	for _, m := range confidenceRe.FindAllStringSubmatch(text, -1) {
		percent, err := strconv.Atoi(m[2])
		if err != nil || percent < 0 || percent > 100 {
			continue
		}
		out = append(out, ConfidenceEntry{
			Label:   strings.TrimSpace(m[1]),
			Percent: percent,
		})
	}
	return out
}

// MedicationsBlock returns the text following a "Medications:" label up to
// the next blank line, used to prefill the report form. Empty when absent.
func MedicationsBlock(text string) string {
	m := medsBlockRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
