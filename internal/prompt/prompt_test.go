package prompt

import (
	"strings"
	"testing"
)

func TestBuildSubstitutesPlaceholders(t *testing.T) {
	out := Build(Intake{Age: 30, ReportedSymptoms: "insomnia, anxiety"})

	for _, want := range []string{
		"Age: 30",
		"Symptoms: insomnia, anxiety",
		"Medical History: Not specified",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}
}

func TestBuildEmptyIntake(t *testing.T) {
	out := Build(Intake{})
	if got := strings.Count(out, NotSpecified); got != 12 {
		t.Fatalf("expected 12 placeholders for an empty intake, got %d:\n%s", got, out)
	}
}

func TestBuildTrimsWhitespaceOnlyFields(t *testing.T) {
	out := Build(Intake{Gender: "   "})
	if !strings.Contains(out, "Gender: Not specified") {
		t.Fatalf("whitespace-only field should fall back to placeholder:\n%s", out)
	}
}
