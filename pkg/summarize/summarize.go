// Package summarize turns raw meeting notes, emails, and project updates
// into structured summaries. The GPT-backed implementation lives in this
// package; callers that want deterministic behavior in tests can provide
// their own Service.
package summarize

import (
	"context"
	"errors"
)

// ContentType hints the summarizer about the shape of the input text.
type ContentType string

const (
	ContentTypeAuto    ContentType = "auto"
	ContentTypeMeeting ContentType = "meeting"
	ContentTypeEmail   ContentType = "email"
	ContentTypeProject ContentType = "project"
)

// Valid reports whether the content type is one of the supported values.
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeAuto, ContentTypeMeeting, ContentTypeEmail, ContentTypeProject:
		return true
	}
	return false
}

// Deadline is a dated obligation extracted from the input text.
type Deadline struct {
	Task     string `json:"task"`
	Person   string `json:"person,omitempty"`
	DueDate  string `json:"dueDate"`
	Priority string `json:"priority,omitempty"`
}

// Result is the structured summary produced for a piece of text.
type Result struct {
	Summary          string      `json:"summary"`
	KeyPoints        []string    `json:"keyPoints"`
	ActionItems      []string    `json:"actionItems"`
	Deadlines        []Deadline  `json:"deadlines,omitempty"`
	PendingDecisions []string    `json:"pendingDecisions,omitempty"`
	ResponseTemplate string      `json:"responseTemplate,omitempty"`
	ContentType      ContentType `json:"contentType"`
}

var (
	// ErrEmptyContent is returned when there is nothing to summarize.
	ErrEmptyContent = errors.New("summarize: content is empty")
	// ErrInvalidContentType is returned for an unrecognized content type hint.
	ErrInvalidContentType = errors.New("summarize: invalid content type")
)

// Service produces structured summaries.
type Service interface {
	Summarize(ctx context.Context, text string, contentType ContentType) (*Result, error)
}
