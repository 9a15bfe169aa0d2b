package report

import (
	"reflect"
	"strings"
	"testing"

	"github.com/psychai/psychai/internal/extract"
)

func TestConfidenceBarsPlaceholder(t *testing.T) {
	got := ConfidenceBars(nil)
	if got != "<p>No confidence metrics found in analysis</p>" {
		t.Fatalf("unexpected placeholder: %q", got)
	}
}

func TestConfidenceBarsRendering(t *testing.T) {
	got := ConfidenceBars([]extract.ConfidenceEntry{
		{Label: "Anxiety <severe>", Percent: 73},
	})
	if !strings.Contains(got, `style="width: 73%;"`) {
		t.Fatalf("bar width missing: %s", got)
	}
	if !strings.Contains(got, "Anxiety &lt;severe&gt;") {
		t.Fatalf("label should be escaped: %s", got)
	}
}

func TestConfidenceBarsClampsWidth(t *testing.T) {
	got := ConfidenceBars([]extract.ConfidenceEntry{{Label: "A", Percent: 150}})
	if !strings.Contains(got, `width: 100%`) {
		t.Fatalf("expected clamped width: %s", got)
	}
}

func TestCleanTextPreservesFenceContent(t *testing.T) {
	got := CleanText("before\n```text\ninner content\n```\nafter")
	if !strings.Contains(got, "inner content\n") || strings.Contains(got, "```") {
		t.Fatalf("fences should be stripped, content kept: %q", got)
	}
}

func TestCleanTextEmpty(t *testing.T) {
	if got := CleanText(""); got != "No analysis available" {
		t.Fatalf("unexpected fallback: %q", got)
	}
}

func TestDiagnosisSectionsHeadings(t *testing.T) {
	text := "# Summary\nPatient presents with anxiety.\nSleep is disrupted.\n## Details\nFollow up soon.\n"
	got := DiagnosisSections(text)
	if strings.Count(got, `<div class="section-header">`) != 2 {
		t.Fatalf("expected two section headers: %s", got)
	}
	if strings.Count(got, `<div class="diagnosis-item">`) != 2 {
		t.Fatalf("expected two diagnosis cards: %s", got)
	}
	if !strings.Contains(got, "Patient presents with anxiety.<br>") {
		t.Fatalf("newlines should become breaks: %s", got)
	}
}

func TestDiagnosisSectionsNoHeadings(t *testing.T) {
	got := DiagnosisSections("plain prose, no markers")
	want := `<div class="diagnosis-item">plain prose, no markers</div>`
	if got != want {
		t.Fatalf("expected single wrapped card, got %s", got)
	}
}

func TestApplyFirstBoldPair(t *testing.T) {
	if got := applyFirstBoldPair("**Title** and **trailer**"); got != "<strong>Title</strong> and **trailer**" {
		t.Fatalf("expected first pair only, got %q", got)
	}
	// asymmetry on unbalanced markers is intentional
	if got := applyFirstBoldPair("open **only"); got != "open <strong>only" {
		t.Fatalf("unexpected unbalanced handling: %q", got)
	}
	if got := applyFirstBoldPair("no markers"); got != "no markers" {
		t.Fatalf("text without markers must pass through: %q", got)
	}
}

// Formatting is read-only on the source text: running the formatting passes
// must not change what a later extraction pass sees.
func TestFormattingDoesNotAffectExtraction(t *testing.T) {
	text := "Anxiety: likely (Confidence: 80%)\n# Plan\n**Review** in two weeks\n"
	before := extract.Confidences(text)

	_ = DiagnosisSections(text)
	_ = ConfidenceBars(before)
	_ = CleanText(text)

	after := extract.Confidences(text)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("extraction changed after formatting: %v vs %v", before, after)
	}
	if len(before) != 1 || before[0].Percent != 80 {
		t.Fatalf("unexpected extraction result: %v", before)
	}
}
