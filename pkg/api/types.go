package api

import "github.com/summarihq/usagekit/pkg/summarize"

// UsageResponse is the client-facing view of a usage record.
type UsageResponse struct {
	Identity    string `json:"identity"`
	Count       int    `json:"count"`
	Limit       int    `json:"limit"`
	Remaining   int    `json:"remaining"` // -1 for unlimited
	IsPremium   bool   `json:"isPremium"`
	LastReset   string `json:"lastReset"`
	ActivatedAt string `json:"activatedAt,omitempty"`
}

// SummarizeRequest is the body of POST /summarize.
type SummarizeRequest struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType,omitempty"` // auto, meeting, email, project
}

// SummarizeResponse carries the summary plus the caller's updated standing.
type SummarizeResponse struct {
	Result *summarize.Result `json:"result"`
	Usage  UsageResponse     `json:"usage"`
}

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Content string `json:"content"`
}

// ActivateRequest is the body of POST /activate.
type ActivateRequest struct {
	Code string `json:"code"`
}

// ActivateResponse reports whether the activation code was accepted.
type ActivateResponse struct {
	Activated bool          `json:"activated"`
	Usage     UsageResponse `json:"usage"`
}

// CheckoutResponse carries the hosted checkout URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// GuestResponse carries a freshly minted guest identity.
type GuestResponse struct {
	Identity string `json:"identity"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string         `json:"error"`
	Usage *UsageResponse `json:"usage,omitempty"`
}
