// Package api exposes the usage tracker, summarizer, and billing provider
// over HTTP. Routes are mounted on a chi router; the handler methods are
// plain http.HandlerFuncs and can be wired into any mux.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/summarihq/usagekit/pkg/summarize"
	"github.com/summarihq/usagekit/pkg/usagekit"
)

const (
	maxIdentityLen = 255
	maxRequestBody = 1 << 20
)

// Handler provides the HTTP endpoints.
type Handler struct {
	config Config
}

// Routes returns a chi router with all endpoints mounted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/usage", h.GetUsage)
	r.Post("/summarize", h.Summarize)
	r.Post("/analyze", h.Analyze)
	r.Post("/export", h.Export)
	r.Post("/activate", h.Activate)
	r.Post("/checkout", h.Checkout)
	r.Post("/guest", h.Guest)
	if h.config.Billing != nil {
		r.Method(http.MethodPost, "/billing/webhook", h.config.Billing.WebhookHandler())
	}
	if h.config.AllowReset {
		r.Post("/reset", h.Reset)
	}

	return r
}

// GetUsage returns the caller's current usage standing.
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	rec, err := h.config.Tracker.GetUsageData(r.Context(), identity)
	if err != nil {
		h.handleError(w, r, fmt.Errorf("failed to load usage: %w", err), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, h.usageResponse(identity, rec))
}

// Summarize gates the summarization behind the daily allowance. The use is
// counted only after a successful summary, and premium identities are not
// counted at all, so a model failure never burns a free use.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	if h.config.Summarizer == nil {
		h.handleError(w, r, fmt.Errorf("summarizer not configured"), http.StatusServiceUnavailable)
		return
	}

	var req SummarizeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	contentType := summarize.ContentType(req.ContentType)
	if contentType == "" {
		contentType = summarize.ContentTypeAuto
	}
	if !contentType.Valid() {
		h.handleError(w, r, fmt.Errorf("invalid content type %q", req.ContentType), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	allowance, err := h.config.Tracker.CanUseService(ctx, identity)
	if err != nil {
		h.handleError(w, r, fmt.Errorf("failed to check allowance: %w", err), http.StatusInternalServerError)
		return
	}
	if !allowance.Allowed {
		rec, err := h.config.Tracker.GetUsageData(ctx, identity)
		if err != nil {
			h.handleError(w, r, err, http.StatusInternalServerError)
			return
		}
		usage := h.usageResponse(identity, rec)
		h.writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error: "daily limit reached",
			Usage: &usage,
		})
		return
	}

	result, err := h.config.Summarizer.Summarize(ctx, req.Content, contentType)
	if err != nil {
		switch {
		case errors.Is(err, summarize.ErrEmptyContent):
			h.handleError(w, r, err, http.StatusBadRequest)
		default:
			h.handleError(w, r, fmt.Errorf("summarization failed: %w", err), http.StatusBadGateway)
		}
		return
	}

	rec, err := h.config.Tracker.GetUsageData(ctx, identity)
	if err != nil {
		h.handleError(w, r, err, http.StatusInternalServerError)
		return
	}
	if !rec.IsPremium {
		rec, err = h.config.Tracker.IncrementUsage(ctx, identity)
		if err != nil {
			h.handleError(w, r, fmt.Errorf("failed to record use: %w", err), http.StatusInternalServerError)
			return
		}
	}

	h.writeJSON(w, http.StatusOK, SummarizeResponse{
		Result: result,
		Usage:  h.usageResponse(identity, rec),
	})
}

// Analyze runs the local text analysis. It is free and does not touch the
// caller's allowance.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	h.writeJSON(w, http.StatusOK, summarize.Analyze(req.Content))
}

// Export renders a summary as a downloadable plain-text report. Premium only.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	premium, err := h.config.Tracker.IsPremiumActive(r.Context(), identity)
	if err != nil {
		h.handleError(w, r, fmt.Errorf("failed to check entitlement: %w", err), http.StatusInternalServerError)
		return
	}
	if !premium {
		h.handleError(w, r, fmt.Errorf("export requires premium"), http.StatusForbidden)
		return
	}

	var result summarize.Result
	if !h.decodeJSON(w, r, &result) {
		return
	}

	now := time.Now()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "summary-"+now.Format("2006-01-02")+".txt"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(summarize.ExportText(&result, now)))
}

// Activate redeems an activation code for premium.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req ActivateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	activated, err := h.config.Tracker.ActivatePremium(r.Context(), identity, req.Code)
	if err != nil {
		h.handleError(w, r, fmt.Errorf("activation failed: %w", err), http.StatusInternalServerError)
		return
	}

	rec, err := h.config.Tracker.GetUsageData(r.Context(), identity)
	if err != nil {
		h.handleError(w, r, err, http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if !activated {
		status = http.StatusUnprocessableEntity
	}
	h.writeJSON(w, status, ActivateResponse{
		Activated: activated,
		Usage:     h.usageResponse(identity, rec),
	})
}

// Checkout creates a hosted checkout session for the caller.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	if h.config.Billing == nil {
		h.handleError(w, r, fmt.Errorf("billing not configured"), http.StatusServiceUnavailable)
		return
	}

	url, err := h.config.Billing.CheckoutURL(r.Context(), identity)
	if err != nil {
		h.handleError(w, r, fmt.Errorf("failed to create checkout session: %w", err), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, CheckoutResponse{URL: url})
}

// Guest mints a fresh anonymous identity for clients that have none.
func (h *Handler) Guest(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusCreated, GuestResponse{Identity: "guest-" + uuid.NewString()})
}

// Reset clears the caller's record. Only mounted when AllowReset is set.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.config.Tracker.ResetForTesting(r.Context(), identity); err != nil {
		h.handleError(w, r, fmt.Errorf("reset failed: %w", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity := h.config.GetIdentity(r)
	if identity == "" {
		h.handleError(w, r, fmt.Errorf("client identity not found"), http.StatusUnauthorized)
		return "", false
	}
	if len(identity) > maxIdentityLen {
		h.handleError(w, r, fmt.Errorf("invalid client identity"), http.StatusBadRequest)
		return "", false
	}
	return identity, true
}

func (h *Handler) usageResponse(identity string, rec *usagekit.UsageRecord) UsageResponse {
	allowance := h.config.Tracker.Allowance(rec)
	return UsageResponse{
		Identity:    identity,
		Count:       rec.Count,
		Limit:       h.config.Tracker.DailyLimit(),
		Remaining:   allowance.Remaining,
		IsPremium:   rec.IsPremium,
		LastReset:   rec.LastReset,
		ActivatedAt: rec.ActivatedAt,
	}
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.handleError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.config.Logger.Error("failed to encode response",
			usagekit.Field{Key: "error", Value: err.Error()})
	}
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if h.config.OnError != nil {
		h.config.OnError(w, r, err)
		return
	}
	if status >= http.StatusInternalServerError {
		h.config.Logger.Error("request failed",
			usagekit.Field{Key: "path", Value: r.URL.Path},
			usagekit.Field{Key: "error", Value: err.Error()})
	}
	h.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
