package summarize

import (
	"strings"
)

// Analysis is a cheap, local preview of the input text. It powers live
// feedback in clients before anything is sent to the model.
type Analysis struct {
	WordCount        int      `json:"wordCount"`
	EstimatedSeconds int      `json:"estimatedSeconds"`
	DetectedElements []string `json:"detectedElements"`
}

// Signals that identify recognizable structure in the input.
var elementSignals = []struct {
	label    string
	keywords []string
}{
	{"action items", []string{"todo", "action item", "tehtävä"}},
	{"deadlines", []string{"deadline", "due", "mennessä"}},
	{"decisions", []string{"decided", "agreed", "päätös", "sovittiin"}},
	{"email", []string{"@", "subject:", "lähettäjä"}},
	{"meeting notes", []string{"meeting", "attendees", "kokous", "osallistuj"}},
}

// Analyze inspects the text without calling the model. The duration estimate
// assumes roughly 100 words of processing per second, with a 3 second floor.
func Analyze(text string) Analysis {
	words := strings.Fields(text)

	seconds := (len(words) + 99) / 100
	if seconds < 3 {
		seconds = 3
	}

	lower := strings.ToLower(text)
	var detected []string
	for _, signal := range elementSignals {
		for _, kw := range signal.keywords {
			if strings.Contains(lower, kw) {
				detected = append(detected, signal.label)
				break
			}
		}
	}

	return Analysis{
		WordCount:        len(words),
		EstimatedSeconds: seconds,
		DetectedElements: detected,
	}
}

// DetectContentType guesses the content type from the same signals Analyze
// uses. Email markers win over meeting markers since meeting notes rarely
// carry addresses or subject lines.
func DetectContentType(text string) ContentType {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "@", "subject:", "lähettäjä"):
		return ContentTypeEmail
	case containsAny(lower, "meeting", "attendees", "kokous", "osallistuj"):
		return ContentTypeMeeting
	case containsAny(lower, "milestone", "sprint", "blocker", "status update"):
		return ContentTypeProject
	}
	return ContentTypeAuto
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
