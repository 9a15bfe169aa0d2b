// Package prompt composes the clinical analysis prompt from an intake form.
// It is purely textual: no field semantics are validated here.
package prompt

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a psychiatric decision-support assistant
// and pins down the five sections the extraction rules expect.
const SystemPrompt = `You are PsychAI, a clinical decision-support assistant for psychiatric intake analysis.
Respond in a professional, clinical tone. Structure your analysis into five sections:
1. Possible Diagnoses - one per line in the form "Possible Diagnosis: <name> (Confidence: <percent>%)"
2. Suggested Treatment Plan - bulleted action items
3. Medications - with dosage where appropriate
4. Therapy Recommendations
5. Lifestyle Advice
Your suggestions are advisory and are not a substitute for clinical judgment.`

// NotSpecified is substituted for every intake field the caller left blank.
const NotSpecified = "Not specified"

// Intake is the patient form as submitted. Fields map one-to-one to the
// inbound JSON payload; all of them are optional except the name, which the
// HTTP layer enforces.
type Intake struct {
	Timestamp           string `json:"timestamp"`
	Name                string `json:"name"`
	Age                 int    `json:"age"`
	Gender              string `json:"gender"`
	CurrentMood         string `json:"current_mood"`
	BehavioralChanges   string `json:"behavioral_changes"`
	SleepPatterns       string `json:"sleep_patterns"`
	ExistingConditions  string `json:"existing_conditions"`
	Medications         string `json:"medications"`
	TherapyHistory      string `json:"therapy_history"`
	ReportedSymptoms    string `json:"reported_symptoms"`
	FamilyHistory       string `json:"family_history"`
	SocioEnvironContext string `json:"socio_environmental_context"`
}

// Build renders the intake as an itemized prompt. Missing fields become the
// NotSpecified placeholder; Build never fails.
func Build(in Intake) string {
	age := NotSpecified
	if in.Age > 0 {
		age = fmt.Sprintf("%d", in.Age)
	}

	lines := []string{
		"Analyze the following patient intake and provide your assessment.",
		"",
		"Patient Name: " + orPlaceholder(in.Name),
		"Age: " + age,
		"Gender: " + orPlaceholder(in.Gender),
		"Current Mood / Affect: " + orPlaceholder(in.CurrentMood),
		"Behavioral Changes: " + orPlaceholder(in.BehavioralChanges),
		"Sleep Patterns: " + orPlaceholder(in.SleepPatterns),
		"Medical History: " + orPlaceholder(in.ExistingConditions),
		"Medications: " + orPlaceholder(in.Medications),
		"Therapy History: " + orPlaceholder(in.TherapyHistory),
		"Symptoms: " + orPlaceholder(in.ReportedSymptoms),
		"Family History: " + orPlaceholder(in.FamilyHistory),
		"Socio-environmental Context: " + orPlaceholder(in.SocioEnvironContext),
	}

	return strings.Join(lines, "\n")
}

func orPlaceholder(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return NotSpecified
	}
	return trimmed
}
