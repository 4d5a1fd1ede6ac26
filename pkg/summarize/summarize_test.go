package summarize

import (
	"strings"
	"testing"
	"time"
)

func TestAnalyze_WordCount(t *testing.T) {
	analysis := Analyze("one two  three\nfour")
	if analysis.WordCount != 4 {
		t.Errorf("Expected word count 4, got %d", analysis.WordCount)
	}
}

func TestAnalyze_EstimatedSecondsFloor(t *testing.T) {
	analysis := Analyze("short text")
	if analysis.EstimatedSeconds != 3 {
		t.Errorf("Expected 3 second floor, got %d", analysis.EstimatedSeconds)
	}
}

func TestAnalyze_EstimatedSecondsScalesWithLength(t *testing.T) {
	long := strings.Repeat("word ", 450)
	analysis := Analyze(long)
	if analysis.EstimatedSeconds != 5 {
		t.Errorf("Expected 5 seconds for 450 words, got %d", analysis.EstimatedSeconds)
	}
}

func TestAnalyze_DetectedElements(t *testing.T) {
	text := `Meeting with the platform team.
TODO: Anna prepares the budget by the deadline on Friday.
We decided to postpone the launch.`

	analysis := Analyze(text)

	want := []string{"action items", "deadlines", "decisions", "meeting notes"}
	for _, label := range want {
		found := false
		for _, got := range analysis.DetectedElements {
			if got == label {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected element %q in %v", label, analysis.DetectedElements)
		}
	}
}

func TestAnalyze_NoElementsInPlainText(t *testing.T) {
	analysis := Analyze("just a plain note about nothing in particular")
	if len(analysis.DetectedElements) != 0 {
		t.Errorf("Expected no detected elements, got %v", analysis.DetectedElements)
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ContentType
	}{
		{"email address", "From: anna@example.com please review", ContentTypeEmail},
		{"subject line", "Subject: quarterly review\nHi team", ContentTypeEmail},
		{"meeting notes", "Meeting 2026-08-29, attendees: Anna, Ben", ContentTypeMeeting},
		{"project update", "Sprint 14 status update: two blockers remain", ContentTypeProject},
		{"email wins over meeting", "Subject: meeting follow-up", ContentTypeEmail},
		{"plain text", "some unstructured thoughts", ContentTypeAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectContentType(tt.text); got != tt.want {
				t.Errorf("DetectContentType(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestContentType_Valid(t *testing.T) {
	for _, ct := range []ContentType{ContentTypeAuto, ContentTypeMeeting, ContentTypeEmail, ContentTypeProject} {
		if !ct.Valid() {
			t.Errorf("Expected %s to be valid", ct)
		}
	}
	if ContentType("document").Valid() {
		t.Error("Expected unknown content type to be invalid")
	}
}

func TestParseResult(t *testing.T) {
	payload := `{"summary":"Team agreed on the launch plan.","keyPoints":["Launch in September"],"actionItems":["Anna: confirm venue"],"deadlines":[{"task":"confirm venue","person":"Anna","dueDate":"2026-09-05","priority":"high"}],"pendingDecisions":["Catering budget"]}`

	result, err := parseResult(payload)
	if err != nil {
		t.Fatalf("parseResult failed: %v", err)
	}
	if result.Summary != "Team agreed on the launch plan." {
		t.Errorf("Unexpected summary: %s", result.Summary)
	}
	if len(result.KeyPoints) != 1 || len(result.ActionItems) != 1 {
		t.Errorf("Unexpected points/actions: %+v", result)
	}
	if len(result.Deadlines) != 1 || result.Deadlines[0].Person != "Anna" {
		t.Errorf("Unexpected deadlines: %+v", result.Deadlines)
	}
	if result.Deadlines[0].Priority != "high" {
		t.Errorf("Expected deadline priority high, got %q", result.Deadlines[0].Priority)
	}
}

func TestParseResult_StripsCodeFence(t *testing.T) {
	payload := "```json\n{\"summary\":\"ok\",\"keyPoints\":[],\"actionItems\":[]}\n```"

	result, err := parseResult(payload)
	if err != nil {
		t.Fatalf("parseResult failed: %v", err)
	}
	if result.Summary != "ok" {
		t.Errorf("Unexpected summary: %s", result.Summary)
	}
}

func TestParseResult_Malformed(t *testing.T) {
	if _, err := parseResult("not json"); err == nil {
		t.Error("Expected error for malformed payload")
	}
	if _, err := parseResult(`{"keyPoints":[]}`); err == nil {
		t.Error("Expected error for payload without summary")
	}
}

func TestSystemPrompt_PerContentType(t *testing.T) {
	if !strings.Contains(systemPrompt(ContentTypeEmail), "responseTemplate") {
		t.Error("Expected email prompt to request a draft reply")
	}
	if !strings.Contains(systemPrompt(ContentTypeMeeting), "participants") {
		t.Error("Expected meeting prompt to mention participants")
	}
	if !strings.Contains(systemPrompt(ContentTypeProject), "blockers") {
		t.Error("Expected project prompt to mention blockers")
	}
	if systemPrompt(ContentTypeAuto) != basePrompt {
		t.Error("Expected auto prompt to be the base prompt")
	}
}

func TestNewGPTService_RequiresAPIKey(t *testing.T) {
	if _, err := NewGPTService(GPTConfig{}); err == nil {
		t.Error("Expected error for missing API key")
	}
}

func TestExportText(t *testing.T) {
	result := &Result{
		Summary:     "Team agreed on the launch plan.",
		KeyPoints:   []string{"Launch in September", "Budget approved"},
		ActionItems: []string{"Confirm venue"},
		Deadlines: []Deadline{
			{Task: "confirm venue", Person: "Anna", DueDate: "2026-09-05", Priority: "high"},
			{Task: "send invites", DueDate: "2026-09-10"},
		},
		PendingDecisions: []string{"Catering budget"},
		ResponseTemplate: "Thanks, confirming the plan.",
		ContentType:      ContentTypeMeeting,
	}
	createdAt := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)

	text := ExportText(result, createdAt)

	for _, want := range []string{
		"Created: 2026-08-29 14:30",
		"Type: Meeting notes",
		"SUMMARY:\nTeam agreed on the launch plan.",
		"1. Launch in September",
		"2. Budget approved",
		"[ ] Confirm venue",
		"2026-09-05 - confirm venue (Anna) [high]",
		"2026-09-10 - send invites",
		"? Catering budget",
		"DRAFT REPLY:\nThanks, confirming the plan.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected export to contain %q:\n%s", want, text)
		}
	}
}

func TestExportText_OmitsEmptySections(t *testing.T) {
	result := &Result{
		Summary:     "Short note.",
		KeyPoints:   []string{"One point"},
		ActionItems: []string{"One task"},
		ContentType: ContentTypeAuto,
	}

	text := ExportText(result, time.Now())

	for _, absent := range []string{"DEADLINES:", "PENDING DECISIONS:", "DRAFT REPLY:"} {
		if strings.Contains(text, absent) {
			t.Errorf("Expected export to omit %q:\n%s", absent, text)
		}
	}
	if !strings.Contains(text, "Type: General text") {
		t.Errorf("Expected auto type label, got:\n%s", text)
	}
}
