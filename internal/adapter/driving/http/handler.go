// Package httphandler is the HTTP driving adapter that receives GitHub webhooks.
package httphandler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/iconbot/internal/application"
	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

// maxPayloadBytes matches GitHub's webhook payload cap.
const maxPayloadBytes = 25 << 20

const pullRequestEvent = "pull_request"

// EventSubmitter accepts verified, actionable events for asynchronous processing.
type EventSubmitter interface {
	Submit(ev model.InboundEvent) (string, error)
}

// Handler is the HTTP driving adapter that serves the webhook endpoint.
type Handler struct {
	secret    []byte
	ignore    application.IgnoreSet
	submitter EventSubmitter
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	secret []byte,
	ignore application.IgnoreSet,
	submitter EventSubmitter,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		secret:    secret,
		ignore:    ignore,
		submitter: submitter,
		logger:    logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /", h.Webhook)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /", h.RejectGet)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Webhook authenticates and screens a GitHub delivery, then queues actionable
// pull request events. The response never waits for the sprite diff itself.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("POST body exceeds size limit", "limit", maxPayloadBytes)
			writeText(w, http.StatusOK, "Payload too large")
			return
		}
		h.logger.Warn("could not read POST body", "error", err)
		writeText(w, http.StatusOK, "Could not read body")
		return
	}

	if !VerifySignature(body, requestSignature(r), h.secret) {
		h.logger.Warn("POST received with wrong secret")
		writeText(w, http.StatusUnauthorized, "Secret does not match.")
		return
	}

	event := gh.WebHookType(r)
	if event != pullRequestEvent {
		h.logger.Info("POST received with unsupported event", "event", event)
		writeText(w, http.StatusNotFound, "Event not supported")
		return
	}

	ev, err := parsePullRequestEvent(body)
	if err != nil {
		h.logger.Warn("invalid pull_request payload", "error", err)
		writeText(w, http.StatusOK, "Invalid payload")
		return
	}

	switch verdict := application.Screen(ev, h.ignore); verdict {
	case application.VerdictNotActionable:
		writeText(w, http.StatusOK, "Not actionable")
		return
	case application.VerdictIgnoredAuthor:
		h.logger.Info("ignoring pull request from ignored author",
			"repo", ev.Base.FullName, "pr", ev.Number, "author", ev.Author)
		writeText(w, http.StatusOK, "Ignored author")
		return
	}

	jobID, err := h.submitter.Submit(ev)
	if err != nil {
		h.logger.Error("failed to queue event", "repo", ev.Base.FullName, "pr", ev.Number, "error", err)
		writeText(w, http.StatusServiceUnavailable, "Busy, retry later.")
		return
	}

	h.logger.Info("event queued", "job", jobID, "repo", ev.Base.FullName, "pr", ev.Number, "action", string(ev.Action))
	writeText(w, http.StatusOK, "Queued "+jobID)
}

// RejectGet answers plain GET requests on the webhook endpoint.
func (h *Handler) RejectGet(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusNotFound, "GET requests are not supported.")
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
