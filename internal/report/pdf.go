package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Per-field character limits. Truncation is silent, no ellipsis.
const (
	maxDiagnosisChars = 200
	maxMedicationLine = 150
	maxNotesChars     = 500
)

// RenderError reports a document-generation failure. The caller should check
// the input text for unusual characters or formatting.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to generate report document: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ClinicalReport is the user-confirmed report content. Diagnoses are expected
// to be combined and deduplicated already (see CombineDiagnoses).
type ClinicalReport struct {
	PatientName   string
	Age           int
	Gender        string
	Diagnoses     []string
	TherapyType   string
	Sessions      int
	Medications   string
	ClinicalNotes string
	FollowUp      time.Time
	Urgency       string
}

// GeneratedDocument is the serialized artifact, already written to disk.
type GeneratedDocument struct {
	Filename string
	Path     string
	Bytes    []byte
}

// CombineDiagnoses merges the user's selections with a comma-separated list
// of additions, deduplicated by exact string, ordered by selection sequence.
func CombineDiagnoses(selected []string, additional string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, dx := range selected {
		add(dx)
	}
	for _, dx := range strings.Split(additional, ",") {
		add(dx)
	}
	return out
}

// Generator builds clinical report PDFs under a reports directory.
type Generator struct {
	reportsDir string
	now        func() time.Time
}

func NewGenerator(reportsDir string) *Generator {
	return &Generator{reportsDir: reportsDir, now: time.Now}
}

// Generate assembles the document in one linear pass and writes it to
// {reportsDir}/{sanitized name}_{yyyyMMdd_HHmm}.pdf. A second report for the
// same patient within the same minute silently overwrites the first.
func (g *Generator) Generate(rep ClinicalReport) (*GeneratedDocument, error) {
	name := sanitizeText(rep.PatientName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, "PsychAI Clinical Report - "+name, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	pdf.SetMargins(15, 15, 15)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, fmt.Sprintf("Patient: %s, %d years (%s)", name, rep.Age, sanitizeText(rep.Gender)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 10, "Assessment Date: "+g.now().Format("2006-01-02"), "", 1, "", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Diagnoses", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	for _, dx := range rep.Diagnoses {
		pdf.MultiCell(0, 10, "- "+truncate(sanitizeText(dx), maxDiagnosisChars), "", "", false)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Treatment Plan", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 10, fmt.Sprintf("Therapy: %s (%d sessions recommended)", sanitizeText(rep.TherapyType), rep.Sessions), "", "", false)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Medications:", "", 1, "", false, 0, "")
	if rep.Medications != "" {
		pdf.SetFont("Arial", "", 10)
		for _, line := range strings.Split(rep.Medications, "\n") {
			pdf.MultiCell(0, 8, truncate(sanitizeText(line), maxMedicationLine), "", "", false)
		}
		pdf.SetFont("Arial", "", 12)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Clinical Notes", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	if rep.ClinicalNotes != "" {
		pdf.MultiCell(0, 10, truncate(sanitizeText(rep.ClinicalNotes), maxNotesChars), "", "", false)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Follow Up", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, fmt.Sprintf("Next appointment: %s (%s priority)", rep.FollowUp.Format("2006-01-02"), sanitizeText(rep.Urgency)), "", 1, "", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Err: err}
	}

	if err := os.MkdirAll(g.reportsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.pdf", strings.ReplaceAll(name, " ", "_"), g.now().Format("20060102_1504"))
	path := filepath.Join(g.reportsDir, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write report file: %w", err)
	}

	return &GeneratedDocument{Filename: filename, Path: path, Bytes: buf.Bytes()}, nil
}

// sanitizeText replaces non-printable and non-ASCII characters with spaces,
// then collapses whitespace runs. Non-Latin names come out mangled; that is a
// known limitation inherited from the document format, not silently fixed.
func sanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
