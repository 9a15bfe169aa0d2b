package report

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func testReport() ClinicalReport {
	return ClinicalReport{
		PatientName:   "Jane Doe",
		Age:           34,
		Gender:        "Female",
		Diagnoses:     []string{"Generalized Anxiety Disorder"},
		TherapyType:   "Cognitive Behavioral Therapy",
		Sessions:      6,
		Medications:   "Sertraline 50mg daily\nMelatonin 3mg at bedtime",
		ClinicalNotes: "Patient responded well to initial consultation.",
		FollowUp:      time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Urgency:       "Medium",
	}
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
}

func TestGenerateWritesPDF(t *testing.T) {
	gen := NewGenerator(t.TempDir())
	gen.now = fixedClock

	doc, err := gen.Generate(testReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Filename != "Jane_Doe_20250615_1430.pdf" {
		t.Fatalf("unexpected filename: %s", doc.Filename)
	}
	if !bytes.HasPrefix(doc.Bytes, []byte("%PDF")) {
		t.Fatalf("artifact is not a PDF: % x", doc.Bytes[:8])
	}
	onDisk, err := os.ReadFile(doc.Path)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !bytes.Equal(onDisk, doc.Bytes) {
		t.Fatal("file content differs from returned bytes")
	}
}

func TestGenerateSameMinuteOverwrites(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir)
	gen.now = fixedClock

	if _, err := gen.Generate(testReport()); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if _, err := gen.Generate(testReport()); err != nil {
		t.Fatalf("second generate: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single overwritten file, found %d", len(entries))
	}
}

func TestGenerateLongClinicalNote(t *testing.T) {
	gen := NewGenerator(t.TempDir())
	gen.now = fixedClock

	rep := testReport()
	rep.ClinicalNotes = strings.Repeat("a", 1000)
	if _, err := gen.Generate(rep); err != nil {
		t.Fatalf("long note must not fail generation: %v", err)
	}
}

func TestGenerateCreatesReportsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	gen := NewGenerator(dir)
	gen.now = fixedClock

	if _, err := gen.Generate(testReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("reports dir not created: %v", err)
	}
}

func TestTruncateNotesLimit(t *testing.T) {
	got := truncate(strings.Repeat("x", 1000), maxNotesChars)
	if len(got) != 500 {
		t.Fatalf("expected exactly 500 characters, got %d", len(got))
	}
	if got := truncate("short", maxNotesChars); got != "short" {
		t.Fatalf("short input must pass through, got %q", got)
	}
}

func TestSanitizeText(t *testing.T) {
	got := sanitizeText("Renée\tDûpont\nnoted\x00")
	if got != "Ren e D pont noted" {
		t.Fatalf("unexpected sanitized text: %q", got)
	}
}

func TestCombineDiagnoses(t *testing.T) {
	got := CombineDiagnoses(
		[]string{"Anxiety", "Depression"},
		" Depression , Insomnia,,Anxiety",
	)
	want := []string{"Anxiety", "Depression", "Insomnia"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
